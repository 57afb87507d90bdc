// Package ticket implements the request-ticket workflow: any authenticated
// user may raise a ticket against a published document, and the designated
// owner of the target area resolves it exactly once.
package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/qualikit/qualikit/backend/go-services/internal/document"
)

var (
	// ErrDocumentNotPublic: tickets may only target approved, public documents.
	ErrDocumentNotPublic = errors.New("document is not published")
	// ErrUnauthorized: the resolver is not the designated owner of the
	// ticket's target area.
	ErrUnauthorized = errors.New("resolver not authorized for area")
	// ErrAlreadyResolved: the ticket already reached a terminal state;
	// resolution is exactly-once and never a silent success.
	ErrAlreadyResolved = errors.New("ticket already resolved")
)

// New builds an open ticket against doc. The document must currently be
// approved and public; anything else fails with ErrDocumentNotPublic.
func New(doc *document.ControlledDocument, requesterSub, targetAreaID, attachmentKey string) (*RequestTicket, error) {
	if doc.State != document.StateApproved || doc.Visibility != document.VisibilityPublic {
		return nil, fmt.Errorf("%w: %s (state=%s visibility=%s)", ErrDocumentNotPublic, doc.ID, doc.State, doc.Visibility)
	}
	if requesterSub == "" {
		return nil, errors.New("requester required")
	}
	if targetAreaID == "" {
		return nil, errors.New("target area required")
	}
	now := time.Now().UTC()
	return &RequestTicket{
		DocumentID:    doc.ID,
		RequesterSub:  requesterSub,
		TargetAreaID:  targetAreaID,
		State:         StateOpen,
		AttachmentKey: attachmentKey,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Resolve applies the single legal mutation of a ticket. ownerSub is the
// designated owner of t.TargetAreaID as decided by the area-ownership
// lookup; the machine itself never queries anything. On error the ticket is
// left untouched.
func Resolve(t *RequestTicket, resolverSub, ownerSub string, decision Decision, comment string) error {
	if !decision.Valid() {
		return fmt.Errorf("unknown decision %q", decision)
	}
	if t.State != StateOpen {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, t.ID, t.State)
	}
	if resolverSub == "" || resolverSub != ownerSub {
		return fmt.Errorf("%w: area %s", ErrUnauthorized, t.TargetAreaID)
	}
	now := time.Now().UTC()
	switch decision {
	case DecisionApprove:
		t.State = StateApproved
	case DecisionDecline:
		t.State = StateDeclined
	}
	t.ResolutionComment = comment
	t.ResolvedBy = resolverSub
	t.ResolvedAt = &now
	t.UpdatedAt = now
	return nil
}
