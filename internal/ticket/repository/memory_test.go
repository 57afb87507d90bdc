package repository

import (
	"context"
	"testing"

	"github.com/qualikit/qualikit/backend/go-services/internal/ticket"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoCreateGetListByArea(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()

	tk := &ticket.RequestTicket{DocumentID: "qdoc_1", RequesterSub: "u5", TargetAreaID: "area-1", State: ticket.StateOpen}
	id, err := r.Create(ctx, tk)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	other := &ticket.RequestTicket{DocumentID: "qdoc_2", RequesterSub: "u6", TargetAreaID: "area-2", State: ticket.StateOpen}
	_, err = r.Create(ctx, other)
	require.NoError(t, err)

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "area-1", got.TargetAreaID)

	list, err := r.ListByArea(ctx, "area-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = r.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepoCompareAndSwapDetectsRace(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	tk := &ticket.RequestTicket{DocumentID: "qdoc_1", RequesterSub: "u5", TargetAreaID: "area-1", State: ticket.StateOpen}
	id, _ := r.Create(ctx, tk)

	a, _ := r.Get(ctx, id)
	b, _ := r.Get(ctx, id)

	a.State = ticket.StateApproved
	require.NoError(t, r.CompareAndSwap(ctx, a))

	b.State = ticket.StateDeclined
	require.ErrorIs(t, r.CompareAndSwap(ctx, b), ErrStaleVersion)

	cur, _ := r.Get(ctx, id)
	require.Equal(t, ticket.StateApproved, cur.State)
}
