package ticket

import (
	"testing"

	"github.com/qualikit/qualikit/backend/go-services/internal/document"
	"github.com/stretchr/testify/require"
)

func publishedDoc() *document.ControlledDocument {
	return &document.ControlledDocument{
		ID:         "qdoc_1",
		Code:       "QD-001",
		State:      document.StateApproved,
		Visibility: document.VisibilityPublic,
	}
}

func TestNewRequiresPublishedDocument(t *testing.T) {
	doc := publishedDoc()

	doc.State = document.StateDraft
	_, err := New(doc, "u5", "area-1", "")
	require.ErrorIs(t, err, ErrDocumentNotPublic)

	doc.State = document.StateApproved
	doc.Visibility = document.VisibilityPrivate
	_, err = New(doc, "u5", "area-1", "")
	require.ErrorIs(t, err, ErrDocumentNotPublic)

	doc.Visibility = document.VisibilityPublic
	tk, err := New(doc, "u5", "area-1", "attachments/a.pdf")
	require.NoError(t, err)
	require.Equal(t, StateOpen, tk.State)
	require.Equal(t, "qdoc_1", tk.DocumentID)
	require.Equal(t, "attachments/a.pdf", tk.AttachmentKey)
}

func TestNewValidatesInputs(t *testing.T) {
	doc := publishedDoc()
	_, err := New(doc, "", "area-1", "")
	require.Error(t, err)
	_, err = New(doc, "u5", "", "")
	require.Error(t, err)
}

func TestResolveRequiresAreaOwner(t *testing.T) {
	tk, err := New(publishedDoc(), "u5", "area-1", "")
	require.NoError(t, err)

	err = Resolve(tk, "u9", "owner-1", DecisionApprove, "")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, StateOpen, tk.State)

	err = Resolve(tk, "owner-1", "owner-1", DecisionApprove, "ok")
	require.NoError(t, err)
	require.Equal(t, StateApproved, tk.State)
	require.Equal(t, "owner-1", tk.ResolvedBy)
	require.NotNil(t, tk.ResolvedAt)
}

func TestResolveIsExactlyOnce(t *testing.T) {
	tk, err := New(publishedDoc(), "u5", "area-1", "")
	require.NoError(t, err)

	require.NoError(t, Resolve(tk, "owner-1", "owner-1", DecisionDecline, "no"))
	require.Equal(t, StateDeclined, tk.State)

	err = Resolve(tk, "owner-1", "owner-1", DecisionApprove, "changed my mind")
	require.ErrorIs(t, err, ErrAlreadyResolved)
	require.Equal(t, StateDeclined, tk.State)
	require.Equal(t, "no", tk.ResolutionComment)
}

func TestResolveRejectsUnknownDecision(t *testing.T) {
	tk, err := New(publishedDoc(), "u5", "area-1", "")
	require.NoError(t, err)
	require.Error(t, Resolve(tk, "owner-1", "owner-1", Decision("defer"), ""))
	require.Equal(t, StateOpen, tk.State)
}
