package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"takopi/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return gormDB, mock
}

func TestFollowRepository_GetByUsers_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "follows" WHERE follower_id = $1 AND following_id = $2`)).
		WithArgs("alice", "bob", 1).
		WillReturnError(errors.New("connection timeout"))

	follow, err := repo.GetByUsers(ctx, "alice", "bob")
	assert.Error(t, err)
	assert.Nil(t, follow)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_CountByFollowing_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows" WHERE following_id = $1`)).
		WithArgs("bob").
		WillReturnError(errors.New("connection reset"))

	count, err := repo.CountByFollowing(ctx, "bob")
	assert.Error(t, err)
	assert.Zero(t, count)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
