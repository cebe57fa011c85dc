package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestNewsPublishAndLatest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user(t, model.RoleAdmin, "Root")
	shelter := e.user(t, model.RoleShelter, "Haven")

	_, err := e.news.Publish(ctx, shelter, NewsInput{Title: "Adoption drive"})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = e.news.Publish(ctx, admin, NewsInput{Title: "   "})
	require.ErrorIs(t, err, ErrValidation)
	_, err = e.news.Publish(ctx, admin, NewsInput{Title: strings.Repeat("x", 201)})
	require.ErrorIs(t, err, ErrValidation)

	for i := 1; i <= 4; i++ {
		_, err := e.news.Publish(ctx, admin, NewsInput{Title: fmt.Sprintf("Update %d", i), Content: " body "})
		require.NoError(t, err)
	}

	list, err := e.news.Latest(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "Update 4", list[0].Title)
	require.Equal(t, "body", list[0].Content)

	list, err = e.news.Latest(ctx, 100)
	require.NoError(t, err)
	require.Len(t, list, 4)
}
