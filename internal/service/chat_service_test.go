package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capiorg/backend/internal/domain"
)

func TestCreatePrivateReturnsCompanionView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	view, err := f.chats.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "PRIVATE", view.Type)
	require.NotNil(t, view.Companion)
	assert.Equal(t, bob.ID, view.Companion.ID)
	assert.Nil(t, view.Chat)

	again, err := f.chats.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, again.ID)
}

func TestCreatePrivateUnknownCompanion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	_, err := f.chats.CreatePrivate(ctx, alice.ID, uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateGroupView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	view, err := f.chats.CreateGroup(ctx, alice.ID, "launch crew")
	require.NoError(t, err)

	assert.Equal(t, "PUBLIC", view.Type)
	assert.Nil(t, view.Companion)
	require.NotNil(t, view.Chat)
	assert.Equal(t, "launch crew", view.Chat.Title)
}

func TestListScopedToCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	_, err := f.chats.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = f.chats.CreateGroup(ctx, alice.ID, "alice's room")
	require.NoError(t, err)

	views, err := f.chats.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	carolViews, err := f.chats.List(ctx, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, carolViews)
}

func TestGetOneRequiresMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	mallory := f.user(t, "mallory")

	view, err := f.chats.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.chats.GetOne(ctx, mallory.ID, view.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")

	me, err := f.users.Me(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Login)

	updated, err := f.users.UpdateProfile(ctx, alice.ID, "Alice", "Liddell", nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)

	require.NoError(t, f.users.Delete(ctx, alice.ID))
	var u domain.User
	require.NoError(t, f.db.Where("login = ?", "alice").Take(&u).Error)
	assert.Equal(t, domain.UserStatusDeleted, u.StatusID, "delete is a status transition, not a row removal")
}
