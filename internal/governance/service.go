// Package governance is the single entry point for every state mutation of
// controlled documents and request tickets. External callers (the HTTP
// layer) never touch the machines or the stores directly: the facade loads
// a snapshot, authorizes and computes through the machines, persists via
// compare-and-swap, and publishes an event describing what happened.
package governance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qualikit/qualikit/backend/go-services/internal/document"
	"github.com/qualikit/qualikit/backend/go-services/internal/document/lifecycle"
	docrepo "github.com/qualikit/qualikit/backend/go-services/internal/document/repository"
	"github.com/qualikit/qualikit/backend/go-services/internal/notify"
	"github.com/qualikit/qualikit/backend/go-services/internal/ticket"
	tktrepo "github.com/qualikit/qualikit/backend/go-services/internal/ticket/repository"
	"github.com/qualikit/qualikit/backend/go-services/pkg/logger"
	"github.com/qualikit/qualikit/backend/go-services/pkg/metrics"
)

// DocumentStore is the persistence contract for documents. Get returns a
// snapshot carrying its rev token; CompareAndSwap succeeds only while that
// token still matches the store.
type DocumentStore interface {
	Create(ctx context.Context, d *document.ControlledDocument) (string, error)
	Get(ctx context.Context, id string) (*document.ControlledDocument, error)
	List(ctx context.Context) ([]*document.ControlledDocument, error)
	CompareAndSwap(ctx context.Context, d *document.ControlledDocument) error
}

// TicketStore is the persistence contract for request tickets.
type TicketStore interface {
	Create(ctx context.Context, t *ticket.RequestTicket) (string, error)
	Get(ctx context.Context, id string) (*ticket.RequestTicket, error)
	ListByArea(ctx context.Context, areaID string) ([]*ticket.RequestTicket, error)
	CompareAndSwap(ctx context.Context, t *ticket.RequestTicket) error
}

// OwnerResolver answers which identity resolves tickets for an area.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, areaID string) (string, error)
}

// AdminFunc reports whether sub holds the document-admin capability. It is
// consulted only for the approved -> obsolete edge.
type AdminFunc func(ctx context.Context, sub string) (bool, error)

// Service is the governance facade.
type Service struct {
	docs    DocumentStore
	tickets TicketStore
	owners  OwnerResolver
	isAdmin AdminFunc
	sink    notify.Notifier
}

func NewService(docs DocumentStore, tickets TicketStore, owners OwnerResolver, isAdmin AdminFunc, sink notify.Notifier) *Service {
	if sink == nil {
		sink = notify.Noop{}
	}
	if isAdmin == nil {
		isAdmin = func(ctx context.Context, sub string) (bool, error) { return false, nil }
	}
	return &Service{docs: docs, tickets: tickets, owners: owners, isAdmin: isAdmin, sink: sink}
}

// CreateDocumentInput carries the fields a creator supplies on first
// submission. Exactly one of Content / FileKey may be set, matching Mode.
type CreateDocumentInput struct {
	Code        string
	Name        string
	Version     string
	Mode        document.ContentMode
	Content     string
	FileKey     string
	ReviewerSub string
	ApproverSub string
}

// CreateDocument enters a new document into the lifecycle at draft. The
// acting identity becomes the creator for the life of the document.
func (s *Service) CreateDocument(ctx context.Context, actorSub string, in CreateDocumentInput) (*document.ControlledDocument, error) {
	d, err := lifecycle.New(actorSub).Materialize(in.Code, in.Name, in.Version, in.Mode, in.Content, in.FileKey)
	if err != nil {
		return nil, err
	}
	d.ReviewerSub = in.ReviewerSub
	d.ApproverSub = in.ApproverSub
	if _, err := s.docs.Create(ctx, d); err != nil {
		return nil, err
	}
	s.publish(ctx, notify.Event{Kind: "document.created", DocumentID: d.ID, ActorSub: actorSub, ToState: string(d.State)})
	return d, nil
}

// ApplyDocumentTransition advances a document exactly one legal step. It
// never retries on a stale snapshot: the conflict is surfaced to the caller,
// who decides whether to reload and resubmit.
func (s *Service) ApplyDocumentTransition(ctx context.Context, docID, actorSub string, target document.State) (*document.ControlledDocument, error) {
	d, err := s.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	actor := lifecycle.Actor{Sub: actorSub}
	if target == document.StateObsolete {
		admin, err := s.isAdmin(ctx, actorSub)
		if err != nil {
			return nil, fmt.Errorf("admin check: %w", err)
		}
		actor.DocumentAdmin = admin
	}
	from := d.State
	if _, err := lifecycle.Transition(d, actor, target); err != nil {
		metrics.TransitionsRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}
	if err := s.docs.CompareAndSwap(ctx, d); err != nil {
		if errors.Is(err, docrepo.ErrStaleVersion) {
			metrics.TransitionsRejected.WithLabelValues("stale_version").Inc()
		}
		return nil, err
	}
	metrics.TransitionsApplied.WithLabelValues(string(from), string(target)).Inc()
	s.publish(ctx, notify.Event{Kind: "document.transition", DocumentID: d.ID, ActorSub: actorSub, FromState: string(from), ToState: string(target)})
	return d, nil
}

// DocumentPatch carries the non-lifecycle mutations a creator may make
// before approval freezes the record.
type DocumentPatch struct {
	Name         *string
	Content      *string
	Version      *string
	ReviewerSub  *string
	ApproverSub  *string
	Visibility   *document.Visibility
	NextReviewAt *string // RFC3339, empty string clears
}

// UpdateDocument applies metadata/content edits subject to the store's CAS.
// Only the creator edits a document, and content is frozen once approved.
func (s *Service) UpdateDocument(ctx context.Context, docID, actorSub string, p DocumentPatch) (*document.ControlledDocument, error) {
	d, err := s.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if d.CreatorSub != actorSub {
		return nil, fmt.Errorf("%w: only the creator edits a document", lifecycle.ErrUnauthorized)
	}
	if (p.Content != nil || p.Name != nil || p.Version != nil) && !d.Editable() {
		return nil, fmt.Errorf("%w: document is %s", lifecycle.ErrIllegalTransition, d.State)
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Content != nil {
		if d.ContentMode != document.ContentModeEditor {
			return nil, errors.New("document content is an uploaded file")
		}
		d.Content = *p.Content
	}
	if p.Version != nil {
		d.Version = *p.Version
	}
	if p.ReviewerSub != nil {
		d.ReviewerSub = *p.ReviewerSub
	}
	if p.ApproverSub != nil {
		d.ApproverSub = *p.ApproverSub
	}
	if p.Visibility != nil {
		d.Visibility = *p.Visibility
	}
	if err := applyNextReview(d, p.NextReviewAt); err != nil {
		return nil, err
	}
	if err := s.docs.CompareAndSwap(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDocument(ctx context.Context, id string) (*document.ControlledDocument, error) {
	return s.docs.Get(ctx, id)
}

func (s *Service) ListDocuments(ctx context.Context) ([]*document.ControlledDocument, error) {
	return s.docs.List(ctx)
}

// CreateTicket opens a request ticket against a published document.
func (s *Service) CreateTicket(ctx context.Context, docID, requesterSub, targetAreaID, attachmentKey string) (*ticket.RequestTicket, error) {
	d, err := s.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	t, err := ticket.New(d, requesterSub, targetAreaID, attachmentKey)
	if err != nil {
		return nil, err
	}
	if _, err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, notify.Event{Kind: "ticket.created", TicketID: t.ID, DocumentID: d.ID, ActorSub: requesterSub})
	return t, nil
}

// ResolveTicket applies the exactly-once resolution of an open ticket. A
// compare-and-swap conflict is reported as AlreadyResolved: resolution is
// the only legal mutation of an open ticket, so a stale rev means another
// resolver won the race.
func (s *Service) ResolveTicket(ctx context.Context, ticketID, resolverSub string, decision ticket.Decision, comment string) (*ticket.RequestTicket, error) {
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ownerSub, err := s.owners.OwnerOf(ctx, t.TargetAreaID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ticket.ErrUnauthorized, err)
	}
	if err := ticket.Resolve(t, resolverSub, ownerSub, decision, comment); err != nil {
		return nil, err
	}
	if err := s.tickets.CompareAndSwap(ctx, t); err != nil {
		if errors.Is(err, tktrepo.ErrStaleVersion) {
			return nil, fmt.Errorf("%w: concurrent resolution", ticket.ErrAlreadyResolved)
		}
		return nil, err
	}
	metrics.TicketsResolved.WithLabelValues(string(decision)).Inc()
	s.publish(ctx, notify.Event{Kind: "ticket.resolved", TicketID: t.ID, DocumentID: t.DocumentID, ActorSub: resolverSub, Decision: string(decision)})
	return t, nil
}

func (s *Service) GetTicket(ctx context.Context, id string) (*ticket.RequestTicket, error) {
	return s.tickets.Get(ctx, id)
}

func (s *Service) ListTicketsByArea(ctx context.Context, areaID string) ([]*ticket.RequestTicket, error) {
	return s.tickets.ListByArea(ctx, areaID)
}

// publish sends the event and logs failures; a dead sink never affects the
// transition that already committed.
func (s *Service) publish(ctx context.Context, ev notify.Event) {
	if err := s.sink.Publish(ctx, ev); err != nil {
		logger.Warnf("notify publish failed (kind=%s doc=%s ticket=%s): %v", ev.Kind, ev.DocumentID, ev.TicketID, err)
	}
}

func applyNextReview(d *document.ControlledDocument, v *string) error {
	if v == nil {
		return nil
	}
	if *v == "" {
		d.NextReviewAt = nil
		return nil
	}
	ts, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return fmt.Errorf("nextReviewAt: %w", err)
	}
	d.NextReviewAt = &ts
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, lifecycle.ErrMissingAssignee):
		return "missing_assignee"
	}
	return "other"
}
