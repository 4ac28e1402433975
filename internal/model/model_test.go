package model

import (
	"testing"

	"github.com/jkataja/pompom/internal/bitset256"
	"github.com/jkataja/pompom/internal/cuckoo"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, order int, bootstrapKiB uint8) *Model {
	m, err := New(Config{
		Order:        order,
		MemoryMiB:    8,
		BootstrapKiB: bootstrapKiB,
		HasherKind:   cuckoo.FNVJenkins,
	})
	require.NoError(t, err)
	return m
}

// code walks the order ladder for byte c exactly the way a codec driver
// would: top order down to -1, updating the model's visit list and stopping
// at the order whose distCheck accounts for c (or falling through to -1).
func code(m *Model, c byte) {
	var dist Dist
	var exclude, check bitset256.Set
	sym := Symbol(c)
	for ord := m.Order(); ord >= -1; ord-- {
		m.Distribute(ord, &dist, &exclude, &check)
		if check.Test(c) {
			break
		}
	}
	_ = sym
	m.Update(c)
}

func TestFirstByteEscapesToFallback(t *testing.T) {
	m := newTestModel(t, 3, 0)
	var dist Dist
	var exclude, check bitset256.Set
	m.Distribute(3, &dist, &exclude, &check)
	require.False(t, check.Test('x'), "no context yet, order 3 must not claim any byte")
	require.Equal(t, uint32(1), dist[R(Escape)])
}

func TestRepeatedByteBecomesPredictableAtOrder1(t *testing.T) {
	m := newTestModel(t, 2, 0)
	for i := 0; i < 50; i++ {
		code(m, 'A')
	}

	var dist Dist
	var exclude, check bitset256.Set
	// Order 1 is below the model's top order, so Distribute does not reset
	// the exclusion mask; start it as a fresh ladder would, with nothing
	// excluded.
	exclude.SetAll()
	m.Distribute(1, &dist, &exclude, &check)
	require.True(t, check.Test('A'), "order 1 should predict 'A' after many repeats")
	require.Greater(t, dist[R(Symbol('A'))], dist[L(Symbol('A'))])
}

func TestFallbackCoversEverySymbolNotAlreadyClaimed(t *testing.T) {
	m := newTestModel(t, 1, 0)
	var dist Dist
	var exclude, check bitset256.Set
	m.Distribute(1, &dist, &exclude, &check)
	m.Distribute(0, &dist, &exclude, &check)
	m.Distribute(-1, &dist, &exclude, &check)

	require.True(t, check.Test('A'))
	require.True(t, check.Test(0))
	require.True(t, check.Test(255))
	require.Equal(t, dist[R(EOS)], dist[L(EOS)]+1)
}

func TestUpdateAdvancesWindowForFutureContexts(t *testing.T) {
	m := newTestModel(t, 2, 0)
	code(m, 'a')
	code(m, 'b')
	code(m, 'a')

	var dist Dist
	var exclude, check bitset256.Set
	exclude.SetAll()
	m.Distribute(1, &dist, &exclude, &check)
	require.True(t, check.Test('b'), "order 1 context is 'a' after feeding a,b,a, and 'b' has followed 'a'")
}

func TestSaturationTriggersResetAndModelKeepsWorking(t *testing.T) {
	m := newTestModel(t, 2, 0)
	m.table, _ = cuckoo.New(4, cuckoo.FNVJenkins)

	for i := 0; i < 5000; i++ {
		code(m, byte(i%256))
	}
	require.Greater(t, m.Saturated, 0, "a 4-slot table must saturate under sustained novel contexts")

	// The model must still accept further input after recovering.
	code(m, 'z')
}

func TestBootstrapReplayRepopulatesAfterSaturation(t *testing.T) {
	m := newTestModel(t, 2, 4)
	m.table, _ = cuckoo.New(16, cuckoo.FNVJenkins)
	for i := 0; i < 2000; i++ {
		code(m, byte('a'+i%4))
	}
	require.Greater(t, m.Saturated, 0, "sustained novel contexts against a small table should saturate")
}

// TestBootstrapReplayReachesOrderPlusOneContexts pins spec.md §4.2's
// bootstrap contract directly: replay seeds context lengths 1..order+1 (ℓ =
// 0..order), not just 1..order, since length-(order+1) keys are exactly
// what Update populates during normal operation.
func TestBootstrapReplayReachesOrderPlusOneContexts(t *testing.T) {
	order := 2
	m := newTestModel(t, order, 16)

	history := []byte("abcdefgh")
	for _, b := range history {
		code(m, b)
	}

	// Force a saturation-style reset and replay without the replay itself
	// saturating, so the table's post-replay contents are unambiguous.
	m.table.Reset()
	m.replayBootstrap()

	depth := order + 1
	want := cuckoo.ContextKey(history[len(history)-depth:], depth)
	require.True(t, m.table.Contains(want),
		"bootstrap replay must re-seed length-(order+1) contexts, not just 1..order")
}
