// Package lifecycle implements the document lifecycle state machine.
// Transition is the only writer of document state in the whole service; every
// API path that changes state routes through it.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/qualikit/qualikit/backend/go-services/internal/document"
)

var (
	// ErrIllegalTransition: the target state is not reachable from the
	// document's current state. Multi-step jumps are never collapsed.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrUnauthorized: the actor does not hold a role permitted on this edge.
	ErrUnauthorized = errors.New("actor not authorized for transition")
	// ErrMissingAssignee: the edge requires a role slot that is still empty.
	ErrMissingAssignee = errors.New("required role assignment missing")
)

// Edge identifies one legal transition of the machine.
type Edge struct {
	From document.State
	To   document.State
}

// role names the holder of one document role slot. roleAdmin is special: it
// is not a slot on the document but an externally granted capability carried
// on the Actor.
type role string

const (
	roleCreator  role = "creator"
	roleReviewer role = "reviewer"
	roleApprover role = "approver"
	roleAdmin    role = "admin"
)

// rule describes one edge: who may take it and which role slot must already
// be filled before it can be taken.
type rule struct {
	allowed  []role
	requires role // empty string: no slot precondition
}

// transitions is the closed transition table. Anything not listed is
// illegal. The two entries targeting draft are the reject/decline edges.
var transitions = map[Edge]rule{
	{document.StateDraft, document.StateInReview}:           {allowed: []role{roleCreator, roleReviewer}, requires: roleReviewer},
	{document.StateInReview, document.StatePendingApproval}: {allowed: []role{roleReviewer}, requires: roleApprover},
	{document.StatePendingApproval, document.StateApproved}: {allowed: []role{roleApprover}},
	{document.StateInReview, document.StateDraft}:           {allowed: []role{roleReviewer, roleApprover}},
	{document.StatePendingApproval, document.StateDraft}:    {allowed: []role{roleReviewer, roleApprover}},
	{document.StateApproved, document.StateObsolete}:        {allowed: []role{roleAdmin}},
}

// Legal reports whether the edge exists in the transition table at all,
// regardless of actor.
func Legal(from, to document.State) bool {
	_, ok := transitions[Edge{From: from, To: to}]
	return ok
}

// Transition validates and applies a single-step state change on doc.
// It mutates only doc.State and doc.UpdatedAt; persistence (including the
// compare-and-swap on doc.Rev) is the caller's concern. On error the
// document is left untouched.
func Transition(doc *document.ControlledDocument, actor Actor, target document.State) (document.State, error) {
	e := Edge{From: doc.State, To: target}
	r, ok := transitions[e]
	if !ok {
		return doc.State, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, doc.State, target)
	}
	if r.requires != "" && slotFor(doc, r.requires) == "" {
		return doc.State, fmt.Errorf("%w: %s", ErrMissingAssignee, r.requires)
	}
	if !Authorize(doc, actor, e) {
		return doc.State, fmt.Errorf("%w: %s -> %s", ErrUnauthorized, doc.State, target)
	}
	doc.State = target
	doc.UpdatedAt = time.Now().UTC()
	return target, nil
}

// New returns a document entering the lifecycle at draft with the creator
// slot fixed for the life of the document.
func New(creatorSub string) *ControlledDocumentSeed {
	return &ControlledDocumentSeed{creatorSub: creatorSub}
}

// ControlledDocumentSeed builds the initial document record. Creation is the
// only path that writes StateDraft directly; it is the machine's entry edge.
type ControlledDocumentSeed struct {
	creatorSub string
}

// Materialize produces the draft record. Exactly one of content / fileKey
// may be set; contentMode records which.
func (s *ControlledDocumentSeed) Materialize(code, name, version string, mode document.ContentMode, content, fileKey string) (*document.ControlledDocument, error) {
	if s.creatorSub == "" {
		return nil, fmt.Errorf("%w: creator", ErrMissingAssignee)
	}
	switch mode {
	case document.ContentModeEditor:
		if fileKey != "" {
			return nil, errors.New("editor mode excludes a file reference")
		}
	case document.ContentModeUpload:
		if content != "" {
			return nil, errors.New("upload mode excludes inline content")
		}
	default:
		return nil, fmt.Errorf("unknown content mode %q", mode)
	}
	now := time.Now().UTC()
	return &document.ControlledDocument{
		Code:        code,
		Name:        name,
		Version:     version,
		State:       document.StateDraft,
		Visibility:  document.VisibilityPrivate,
		CreatorSub:  s.creatorSub,
		ContentMode: mode,
		Content:     content,
		FileKey:     fileKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func slotFor(doc *document.ControlledDocument, r role) string {
	switch r {
	case roleCreator:
		return doc.CreatorSub
	case roleReviewer:
		return doc.ReviewerSub
	case roleApprover:
		return doc.ApproverSub
	}
	return ""
}
