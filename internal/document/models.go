package document

import "time"

// State is the lifecycle state of a controlled document. State is only ever
// written by lifecycle.Transition; handlers and repositories treat it as
// opaque.
type State string

const (
	StateDraft           State = "draft"
	StateInReview        State = "in_review"
	StatePendingApproval State = "pending_approval"
	StateApproved        State = "approved"
	StateObsolete        State = "obsolete"
)

// Valid reports whether s is one of the known lifecycle states.
func (s State) Valid() bool {
	switch s {
	case StateDraft, StateInReview, StatePendingApproval, StateApproved, StateObsolete:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool { return s == StateObsolete }

// Visibility controls whether a document is listed for users outside its
// role-holders. Request tickets can only target public documents.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// ContentMode distinguishes editor-authored documents from uploaded files.
// The two are mutually exclusive and fixed at creation.
type ContentMode string

const (
	ContentModeEditor ContentMode = "editor"
	ContentModeUpload ContentMode = "upload"
)

// ControlledDocument is the persistent model for a quality document under
// lifecycle control. Role slots reference external identities (OIDC subs);
// the document never owns them. Rev is the optimistic-concurrency token:
// every successful write increments it, and compare-and-swap writes are
// conditioned on the value read.
type ControlledDocument struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	Code       string     `json:"code" bson:"code"`
	Name       string     `json:"name" bson:"name"`
	Version    string     `json:"version" bson:"version"`
	State      State      `json:"state" bson:"state"`
	Visibility Visibility `json:"visibility" bson:"visibility"`

	CreatorSub  string `json:"creatorSub" bson:"creatorSub"`
	ReviewerSub string `json:"reviewerSub,omitempty" bson:"reviewerSub,omitempty"`
	ApproverSub string `json:"approverSub,omitempty" bson:"approverSub,omitempty"`

	ContentMode ContentMode `json:"contentMode" bson:"contentMode"`
	Content     string      `json:"content,omitempty" bson:"content,omitempty"`
	FileKey     string      `json:"fileKey,omitempty" bson:"fileKey,omitempty"`

	NextReviewAt *time.Time `json:"nextReviewAt,omitempty" bson:"nextReviewAt,omitempty"`

	Rev       int64     `json:"rev" bson:"rev"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Editable reports whether content edits are still accepted. Approved and
// obsolete documents are frozen (store-side policy; the lifecycle machine
// does not touch content).
func (d *ControlledDocument) Editable() bool {
	return d.State != StateApproved && d.State != StateObsolete
}
