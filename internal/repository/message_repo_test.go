package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/capiorg/backend/internal/domain"
)

func newMessageRepos(db *gorm.DB) (*MessageRepository, *ConversationRepository, *AttachmentRepository) {
	att := NewAttachmentRepository(db)
	return NewMessageRepository(db, att), NewConversationRepository(db), att
}

func TestSendSelfHealsParticipant(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, _ := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	carol := newTestUser(t, db, "carol")

	conv, err := convs.CreateGroup(ctx, alice.ID, "open floor")
	require.NoError(t, err)
	require.EqualValues(t, 1, participantCount(t, db, conv.ID))

	// carol is not a participant yet; sending links her in
	_, err = msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: carol.ID, Text: "hello"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, participantCount(t, db, conv.ID))

	// sending again must not duplicate the link
	_, err = msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: carol.ID, Text: "again"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, participantCount(t, db, conv.ID))
}

func TestSendWithAttachmentsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, att := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	conv, err := convs.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	docA := uuid.Must(uuid.NewV7())
	docB := uuid.Must(uuid.NewV7())

	msg, err := msgs.Send(ctx, SendParams{
		ConversationID: conv.ID,
		AuthorID:       alice.ID,
		Text:           "with files",
		DocumentIDs:    []uuid.UUID{docA, docB},
	})
	require.NoError(t, err)

	// linking the same document again must not fail or duplicate
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := att.Link(tx, msg.ID, []uuid.UUID{docA})
		return err
	})
	require.NoError(t, err)

	byMessage, err := att.ListForMessages(ctx, []uuid.UUID{msg.ID})
	require.NoError(t, err)
	require.Len(t, byMessage[msg.ID], 2)

	// empty input is a no-op
	err = db.Transaction(func(tx *gorm.DB) error {
		ids, err := att.Link(tx, msg.ID, nil)
		require.Empty(t, ids)
		return err
	})
	require.NoError(t, err)
}

func TestThreadCountAndIsMine(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, _ := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	conv, err := convs.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	root, err := msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: alice.ID, Text: "hi"})
	require.NoError(t, err)

	// fresh message: no replies, mine for alice, not for bob
	forAlice, err := msgs.GetOne(ctx, alice.ID, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, forAlice.ThreadCount)
	assert.True(t, forAlice.IsMine)

	forBob, err := msgs.GetOne(ctx, bob.ID, root.ID)
	require.NoError(t, err)
	assert.False(t, forBob.IsMine)

	r1, err := msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: bob.ID, Text: "reply 1", ReplyTo: &root.ID})
	require.NoError(t, err)
	_, err = msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: alice.ID, Text: "reply 2", ReplyTo: &root.ID})
	require.NoError(t, err)

	forAlice, err = msgs.GetOne(ctx, alice.ID, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, forAlice.ThreadCount)

	// deleting one reply is reflected immediately: the count is computed,
	// not maintained
	require.NoError(t, msgs.Delete(ctx, r1.ID))
	forAlice, err = msgs.GetOne(ctx, alice.ID, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, forAlice.ThreadCount)
}

func TestListThreadTopLevelAndReplies(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, _ := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	conv, err := convs.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	m1, err := msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: alice.ID, Text: "first"})
	require.NoError(t, err)
	m2, err := msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: bob.ID, Text: "second"})
	require.NoError(t, err)
	reply, err := msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: bob.ID, Text: "threaded", ReplyTo: &m1.ID})
	require.NoError(t, err)

	top, err := msgs.ListThread(ctx, ThreadQuery{ViewerID: alice.ID, ConversationID: conv.ID})
	require.NoError(t, err)
	require.Len(t, top, 2, "replies must not appear at top level")
	assert.Equal(t, m2.ID, top[0].ID, "newest first")
	assert.Equal(t, m1.ID, top[1].ID)
	assert.True(t, top[1].IsMine)
	assert.False(t, top[0].IsMine)

	thread, err := msgs.ListThread(ctx, ThreadQuery{ViewerID: alice.ID, ConversationID: conv.ID, ParentID: &m1.ID})
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, reply.ID, thread[0].ID)
}

func TestListThreadPagination(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, _ := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	conv, err := convs.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	var ids []uuid.UUID
	for i := 0; i < 25; i++ {
		m, err := msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: alice.ID, Text: "msg"})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	page, err := msgs.ListThread(ctx, ThreadQuery{ViewerID: alice.ID, ConversationID: conv.ID})
	require.NoError(t, err)
	assert.Len(t, page, DefaultThreadLimit, "default limit applies")
	assert.Equal(t, ids[24], page[0].ID)

	rest, err := msgs.ListThread(ctx, ThreadQuery{ViewerID: alice.ID, ConversationID: conv.ID, Limit: 20, Offset: 20})
	require.NoError(t, err)
	assert.Len(t, rest, 5)
	assert.Equal(t, ids[0], rest[4].ID)
}

func TestSendRejectsForeignParentAndRollsBack(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, _ := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	carol := newTestUser(t, db, "carol")

	convAB, err := convs.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	convAC, err := convs.CreatePrivate(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	parent, err := msgs.Send(ctx, SendParams{ConversationID: convAB.ID, AuthorID: alice.ID, Text: "root"})
	require.NoError(t, err)

	// carol replies into her conversation pointing at a parent from another
	// one; the whole transaction rolls back, including the self-healed
	// participant row
	before := participantCount(t, db, convAC.ID)
	_, err = msgs.Send(ctx, SendParams{
		ConversationID: convAC.ID,
		AuthorID:       bob.ID,
		Text:           "cross-thread",
		ReplyTo:        &parent.ID,
	})
	require.ErrorIs(t, err, domain.ErrForeignKey)
	assert.Equal(t, before, participantCount(t, db, convAC.ID), "rollback must undo the participant insert")

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Where("conversation_id = ?", convAC.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestUpdateText(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, _ := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	conv, err := convs.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	msg, err := msgs.Send(ctx, SendParams{ConversationID: conv.ID, AuthorID: alice.ID, Text: "typo"})
	require.NoError(t, err)

	require.NoError(t, msgs.UpdateText(ctx, msg.ID, "fixed"))
	row, err := msgs.GetOne(ctx, alice.ID, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed", row.Text)

	err = msgs.UpdateText(ctx, uuid.Must(uuid.NewV7()), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRemovesLinks(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, att := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	conv, err := convs.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	doc := uuid.Must(uuid.NewV7())
	msg, err := msgs.Send(ctx, SendParams{
		ConversationID: conv.ID,
		AuthorID:       alice.ID,
		Text:           "bye",
		DocumentIDs:    []uuid.UUID{doc},
	})
	require.NoError(t, err)

	require.NoError(t, msgs.Delete(ctx, msg.ID))

	_, err = msgs.GetOne(ctx, alice.ID, msg.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byMessage, err := att.ListForMessages(ctx, []uuid.UUID{msg.ID})
	require.NoError(t, err)
	assert.Empty(t, byMessage[msg.ID])

	assert.ErrorIs(t, msgs.Delete(ctx, msg.ID), domain.ErrNotFound)
}

func TestGetRawScopedToConversation(t *testing.T) {
	db := newTestDB(t)
	msgs, convs, _ := newMessageRepos(db)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	carol := newTestUser(t, db, "carol")

	convAB, err := convs.CreatePrivate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	convAC, err := convs.CreatePrivate(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	msg, err := msgs.Send(ctx, SendParams{ConversationID: convAB.ID, AuthorID: alice.ID, Text: "scoped"})
	require.NoError(t, err)

	got, err := msgs.GetRaw(ctx, convAB.ID, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)

	_, err = msgs.GetRaw(ctx, convAC.ID, msg.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
