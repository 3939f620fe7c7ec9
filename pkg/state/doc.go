// Package state provides the reactive state container for Gantry.
//
// A Store holds a single mutable snapshot of UI state and fans change
// notifications out to subscribers synchronously. It is the single source
// of truth the component layer binds against.
//
// # Core Types
//
// Store holds one State and notifies on every update:
//
//	store := state.NewStore(state.State{"theme": "dark"})
//	unsub := store.Subscribe(func(s state.State) {
//	    // called synchronously with the post-merge snapshot
//	})
//	store.SetState(state.State{"sidebarOpen": true})
//	unsub()
//
// # Merge Semantics
//
// SetState performs a one-level shallow merge: keys present in the partial
// win, keys absent retain their prior values, and nested values are
// replaced wholesale rather than merged recursively. Readers always see a
// complete snapshot; GetState returns a copy so callers cannot mutate the
// store through the returned map.
//
// # Re-entrancy
//
// Notification is synchronous. A subscriber that calls SetState from
// inside its own notification triggers a nested, fully recursive fan-out
// before the outer SetState returns. This is legal but unbounded for
// pathological subscriber chains; schedule follow-up updates on a separate
// goroutine if depth is a concern.
package state
