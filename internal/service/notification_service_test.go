package service

import (
	"context"
	"testing"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestNotificationReadState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, model.RoleAdopter, "Meera")
	other := e.user(t, model.RoleAdopter, "Kabir")

	reqA, reqB := uint64(11), uint64(12)
	e.notify.Notify(ctx, u.ID, "adoption_approved", "Approved", "", NotificationRef{AdoptionRequestID: &reqA})
	e.notify.Notify(ctx, u.ID, "chat_message", "New message", "hi", NotificationRef{AdoptionRequestID: &reqA})
	e.notify.Notify(ctx, u.ID, "adoption_declined", "Declined", "", NotificationRef{AdoptionRequestID: &reqB})
	e.notify.Notify(ctx, other.ID, "chat_message", "New message", "", NotificationRef{AdoptionRequestID: &reqA})
	// dropped: no recipient
	e.notify.Notify(ctx, 0, "chat_message", "ignored", "", NotificationRef{})

	list, unread, err := e.notify.List(ctx, u.ID, true, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, int64(3), unread)
	require.Equal(t, "adoption_declined", list[0].Type)

	require.NoError(t, e.notify.MarkByAdoptionRequest(ctx, u.ID, reqA))
	list, unread, err = e.notify.List(ctx, u.ID, true, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(1), unread)

	all, _, err := e.notify.List(ctx, u.ID, false, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, e.notify.MarkAllRead(ctx, u.ID))
	_, unread, err = e.notify.List(ctx, u.ID, true, 0)
	require.NoError(t, err)
	require.Zero(t, unread)

	_, unread, err = e.notify.List(ctx, other.ID, true, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}
