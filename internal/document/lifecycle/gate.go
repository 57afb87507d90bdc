package lifecycle

import "github.com/qualikit/qualikit/backend/go-services/internal/document"

// Actor is the acting identity for a transition attempt. DocumentAdmin is
// decided outside the gate (the facade reads it from the user record) and
// only matters on the approved -> obsolete edge.
type Actor struct {
	Sub           string
	DocumentAdmin bool
}

// Authorize decides whether actor may take edge e on doc. It is a pure
// function of its arguments: it consults only the three role slots on the
// snapshot and the actor value, never a store. "Actor sub equals assigned
// sub" is the sole authorization primitive; there is no hierarchical
// override here.
func Authorize(doc *document.ControlledDocument, actor Actor, e Edge) bool {
	r, ok := transitions[e]
	if !ok {
		return false
	}
	for _, want := range r.allowed {
		switch want {
		case roleAdmin:
			if actor.DocumentAdmin {
				return true
			}
		default:
			if sub := slotFor(doc, want); sub != "" && sub == actor.Sub {
				return true
			}
		}
	}
	return false
}
