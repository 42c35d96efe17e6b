package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/capiorg/backend/internal/database"
	"github.com/capiorg/backend/internal/domain"
	"github.com/capiorg/backend/internal/repository"
)

type emitted struct {
	Event     string
	Namespace string
	Payload   any
}

// fakePublisher records emissions so tests can assert that events fire only
// after a successful commit.
type fakePublisher struct {
	mu    sync.Mutex
	calls []emitted
}

func (f *fakePublisher) Emit(_ context.Context, event string, payload any, namespace string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, emitted{Event: event, Namespace: namespace, Payload: payload})
	return nil
}

func (f *fakePublisher) byEvent(event string) []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emitted
	for _, c := range f.calls {
		if c.Event == event {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	db       *gorm.DB
	pub      *fakePublisher
	chats    *ChatService
	messages *MessageService
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	convs := repository.NewConversationRepository(db)
	att := repository.NewAttachmentRepository(db)
	msgs := repository.NewMessageRepository(db, att)

	pres := &Presenter{FilesDomain: "https://files.example.com"}
	pub := &fakePublisher{}
	log := zap.NewNop().Sugar()

	return &fixture{
		db:       db,
		pub:      pub,
		chats:    NewChatService(convs, users, pres, log),
		messages: NewMessageService(msgs, convs, users, att, pub, nil, pres, log),
		users:    NewUserService(users, pres, log),
	}
}

func (f *fixture) user(t *testing.T, login string) domain.User {
	t.Helper()
	u := domain.User{
		Phone:     "+1" + login,
		Login:     login,
		FirstName: login,
		LastName:  "Test",
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}
