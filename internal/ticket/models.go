package ticket

import "time"

// State of a document request ticket. Open is the only non-terminal state;
// a ticket is mutated exactly once.
type State string

const (
	StateOpen     State = "open"
	StateApproved State = "approved"
	StateDeclined State = "declined"
)

// Decision is the resolver's verdict on an open ticket.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDecline Decision = "decline"
)

func (d Decision) Valid() bool { return d == DecisionApprove || d == DecisionDecline }

// RequestTicket is a user's ask against a published controlled document,
// routed to an area whose designated owner resolves it. Rev is the
// optimistic-concurrency token, same contract as on documents.
type RequestTicket struct {
	ID            string `json:"id" bson:"_id,omitempty"`
	DocumentID    string `json:"documentId" bson:"documentId"`
	RequesterSub  string `json:"requesterSub" bson:"requesterSub"`
	TargetAreaID  string `json:"targetAreaId" bson:"targetAreaId"`
	State         State  `json:"state" bson:"state"`
	AttachmentKey string `json:"attachmentKey,omitempty" bson:"attachmentKey,omitempty"`

	ResolutionComment string     `json:"resolutionComment,omitempty" bson:"resolutionComment,omitempty"`
	ResolvedBy        string     `json:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`

	Rev       int64     `json:"rev" bson:"rev"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
