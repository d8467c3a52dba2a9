package service

import (
	"fmt"
	"testing"
	"time"

	"bitwise74/avatar-api/db"
	"bitwise74/avatar-api/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a throwaway in-memory database, named after the test so
// parallel tests don't share state
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))

	return d
}

func seedUser(t *testing.T, d *gorm.DB, verified bool) *model.User {
	t.Helper()

	id, err := NewID()
	require.NoError(t, err)

	user := &model.User{
		ID:    id,
		Name:  "Test User",
		Email: fmt.Sprintf("%s@example.com", id),
		Role:  model.RoleUser,
	}

	if verified {
		now := time.Now()
		user.EmailVerified = &now
	}

	require.NoError(t, d.Create(user).Error)

	return user
}
