package model

import "github.com/jkataja/pompom/internal/cuckoo"

// replayBootstrap re-ingests the retained window into the just-reset table,
// warm-starting every order's counts from the window's own history instead
// of letting the model cold-start from the root context alone.
//
// Replay walks the window oldest-to-newest, and for each position seeds
// every context length from 1 up to order+1 ending at that position — ℓ
// ranges 0..O, i.e. context length ranges 1..O+1, matching the length-(O+1)
// keys Update populates during normal operation. A replay that cannot
// complete (the table saturates again before the window is exhausted)
// permanently disables bootstrap for the rest of this Model's life:
// retrying with a smaller window is not attempted, since a table that can't
// absorb one window's worth of contexts won't absorb a second attempt
// either.
func (m *Model) replayBootstrap() {
	if m.cfg.BootstrapKiB == 0 || m.bootstrapDisabled {
		return
	}

	history := m.win.bytes()
	maxLength := m.cfg.Order + 1

	for end := 1; end <= len(history); end++ {
		for length := 1; length <= maxLength && length <= end; length++ {
			ctx := history[end-length : end]
			key := cuckoo.ContextKey(ctx, length)
			if !m.table.Seen(key) {
				m.bootstrapDisabled = true
				m.table.Reset()
				return
			}
		}
	}
}
