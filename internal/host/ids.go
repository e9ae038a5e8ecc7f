package host

import "github.com/google/uuid"

// newHandleID mints an opaque id for a HandleRef. §3 guarantees handles
// are opaque to the core, so any unguessable string satisfies it; a UUID
// makes that true by construction without the core ever branching on its
// shape.
func newHandleID() string {
	return uuid.NewString()
}
