package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestChatBetweenParticipants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shelter := e.user(t, model.RoleShelter, "Haven")
	adopter := e.user(t, model.RoleAdopter, "Asha")
	outsider := e.user(t, model.RoleAdopter, "Ben")
	admin := e.user(t, model.RoleAdmin, "Root")
	pet := e.listedShelterPet(t, shelter, "Bruno", "0")
	req, err := e.adoption.CreateRequest(ctx, adopter, Target{PetID: &pet.ID}, "")
	require.NoError(t, err)

	room, err := e.chat.OpenRoom(ctx, adopter, req.ID)
	require.NoError(t, err)
	same, err := e.chat.OpenRoom(ctx, shelter, req.ID)
	require.NoError(t, err)
	require.Equal(t, room.ID, same.ID)

	_, err = e.chat.OpenRoom(ctx, outsider, req.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.chat.PostMessage(ctx, adopter, room.ID, "Is he good with kids?")
	require.NoError(t, err)
	_, err = e.chat.PostMessage(ctx, shelter, room.ID, "Very.")
	require.NoError(t, err)

	_, err = e.chat.PostMessage(ctx, adopter, room.ID, "   ")
	require.ErrorIs(t, err, ErrValidation)
	_, err = e.chat.PostMessage(ctx, adopter, room.ID, strings.Repeat("a", maxMessageRunes+1))
	require.ErrorIs(t, err, ErrValidation)
	_, err = e.chat.PostMessage(ctx, outsider, room.ID, "hi")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.chat.PostMessage(ctx, admin, room.ID, "hi")
	require.ErrorIs(t, err, ErrForbidden)

	msgs, err := e.chat.ListMessages(ctx, admin, room.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, adopter.ID, msgs[0].SenderID)
	require.Equal(t, "Very.", msgs[1].Body)

	_, err = e.chat.ListMessages(ctx, outsider, room.ID)
	require.ErrorIs(t, err, ErrNotFound)

	notes, _, err := e.notify.List(ctx, adopter.ID, true, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "chat_message", notes[0].Type)
}

func TestChatUnknownRoom(t *testing.T) {
	e := newEnv(t)
	adopter := e.user(t, model.RoleAdopter, "Asha")
	_, err := e.chat.ListMessages(context.Background(), adopter, 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.chat.OpenRoom(context.Background(), adopter, 42)
	require.ErrorIs(t, err, ErrNotFound)
}
