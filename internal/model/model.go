package model

import (
	"github.com/jkataja/pompom/internal/arith"
	"github.com/jkataja/pompom/internal/bitset256"
	"github.com/jkataja/pompom/internal/cuckoo"
)

// Model maintains the recent-text window, drives per-order distribution
// queries and the update/rescale policy over a cuckoo.Table, and replays
// the retained window into a fresh table after saturation.
//
// Cyclic-free by construction: Model uniquely owns its Table; the table
// holds no reference back.
type Model struct {
	cfg   Config
	table *cuckoo.Table
	win   *window

	// visit accumulates the context keys touched by the most recent
	// Distribute calls (one per order attempted for the symbol currently
	// being coded, except orders longer than the text window so far); the
	// next Update call consumes and clears it. There
	// is never more than one outstanding, unconsumed visit list.
	visit []cuckoo.Key

	outscale bool
	sumEsc   uint32
	lastRun  uint32
	latestRun uint32

	bootstrapDisabled bool

	// Saturated counts table saturation events seen by Update, each followed
	// by a table.Reset, for diagnostics (SPEC_FULL §7).
	Saturated int
}

// New builds a Model and its backing table from cfg.
func New(cfg Config) (*Model, error) {
	capacity := cuckoo.Capacity(cfg.MemoryMiB)
	table, err := cuckoo.New(capacity, cfg.HasherKind)
	if err != nil {
		return nil, err
	}
	return &Model{
		cfg:   cfg,
		table: table,
		win:   newWindow(cfg.windowCapacity()),
	}, nil
}

// Order returns the model's configured prediction order.
func (m *Model) Order() int {
	return m.cfg.Order
}

// Stats exposes the underlying table's occupancy for diagnostics.
func (m *Model) Stats() cuckoo.Stats {
	return m.table.Stats()
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - Distribute  - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Distribute fills dist with the cumulative-frequency distribution over the
// alphabet at order ord, honoring excludeMask (symbols already given
// non-zero frequency at a higher order are skipped) and recording which
// byte symbols received a non-zero slice at this order in distCheck (which
// is cleared on every call). It records the context key visited so the next
// Update call can credit it.
//
// ord == m.Order() must be the first call in an order ladder for a given
// symbol; it resets dist and excludeMask. Callers walk ord from m.Order()
// down to -1, stopping at the first order whose distCheck bit (or, at
// ord == -1, EOS) accounts for the symbol being coded.
func (m *Model) Distribute(ord int, dist *Dist, excludeMask, distCheck *bitset256.Set) {
	if ord == m.cfg.Order {
		*dist = Dist{}
		excludeMask.SetAll()
	}
	distCheck.ClearAll()

	if ord == -1 {
		m.distributeFallback(dist, excludeMask, distCheck)
		return
	}

	var run uint32
	defer func() {
		m.lastRun = m.latestRun
		m.latestRun = run
	}()

	if m.win.len() < ord {
		dist[R(Escape)] = 1
		dist[R(EOS)] = 1
		return
	}

	parent := cuckoo.ContextKey(m.win.tail(ord), ord)

	if !m.table.Contains(parent) {
		dist[R(Escape)] = 1
		dist[R(EOS)] = 1
		m.visit = append(m.visit, parent)
		return
	}

	follower := m.table.FollowerVec(parent)
	candidates := excludeMask.And(follower)

	nonzero := 0
	for c := 0; c < 256; c++ {
		cb := byte(c)
		if !candidates.Test(cb) {
			continue
		}
		freq := m.table.Count(parent.Child(cb))
		if freq == 0 {
			continue
		}
		sym := Symbol(c)
		dist[L(sym)] = run
		run += 2*uint32(freq) - 1
		dist[R(sym)] = run
		distCheck.Set(cb)
		excludeMask.Clear(cb)
		nonzero++
	}

	escape := run + uint32(max(1, nonzero))
	dist[L(Escape)] = run
	dist[R(Escape)] = escape
	dist[R(EOS)] = escape

	if escape > arith.Rescale {
		m.outscale = true
	}

	m.visit = append(m.visit, parent)
}

// distributeFallback implements the virtual order -1 universal backstop:
// every symbol not yet assigned a non-zero slice at a higher order gets
// frequency 1. Escape is not present at this order.
func (m *Model) distributeFallback(dist *Dist, excludeMask, distCheck *bitset256.Set) {
	var run uint32
	for c := 0; c < 256; c++ {
		cb := byte(c)
		if !excludeMask.Test(cb) {
			continue
		}
		sym := Symbol(c)
		dist[L(sym)] = run
		run++
		dist[R(sym)] = run
		distCheck.Set(cb)
	}
	dist[L(EOS)] = run
	dist[R(EOS)] = run + 1
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// - - Update  - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Update credits symbol c (a plain byte 0..255; EOS/Escape never reach
// Update — the codec driver only updates on actual plaintext bytes) in
// every context visited by the Distribute calls since the last Update,
// advances the text window, and handles rescale and table-full recovery.
func (m *Model) Update(c byte) {
	if threshold := m.cfg.adaptThreshold(); threshold > 0 {
		if m.lastRun > m.latestRun {
			m.sumEsc += m.lastRun - m.latestRun
		}
		if m.sumEsc >= threshold {
			m.outscale = true
			m.sumEsc = 0
		}
	}

	for _, key := range m.visit {
		if uint32(m.table.Count(key.Child(c)))+1 >= uint32(arith.MaxFreq) {
			m.outscale = true
		}
	}

	if m.outscale {
		m.table.Rescale()
		m.sumEsc = 0
		m.outscale = false
	}

	full := false
	for _, key := range m.visit {
		if !m.table.Seen(key.Child(c)) {
			full = true
			break
		}
	}
	m.visit = m.visit[:0]

	if full {
		m.Saturated++
		m.table.Reset()
		m.replayBootstrap()
	}

	m.win.push(c)
}
