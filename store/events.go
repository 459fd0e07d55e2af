package store

import "rov-go/types"

// ApplyEvent mirrors a bus event into s as a shared entry. Every worker
// keeps its own Store instance; convergence between them happens entirely
// through this — an owned Insert on one worker's store becomes, via the
// bus, a shared HandleUpdateShared call on every other worker's store.
// Callers should invoke this for every event received on their handle,
// since Send already excludes the sender itself.
func ApplyEvent(s *Store, ev *types.Event) {
	switch ev.Kind {
	case types.EventStoreUpdate:
		if u, ok := ev.Update.(Update); ok {
			s.HandleUpdateShared(u)
		}
	case types.EventResetSharedStore:
		s.ResetShared()
	}
}
