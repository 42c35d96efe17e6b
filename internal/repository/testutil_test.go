package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/capiorg/backend/internal/database"
	"github.com/capiorg/backend/internal/domain"
)

// newTestDB opens an isolated in-memory database with foreign keys enforced
// and the full schema applied.
func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, login string) domain.User {
	t.Helper()
	u := domain.User{
		Phone:     "+1" + login,
		Login:     login,
		FirstName: login,
		LastName:  "Test",
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func participantCount(t *testing.T, db *gorm.DB, conversationID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ?", conversationID).
		Count(&n).Error)
	return n
}
