package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashToken(t *testing.T) {
	assert.Equal(t, hashToken("abc"), hashToken("abc"))
	assert.NotEqual(t, hashToken("abc"), hashToken("abd"))
	assert.Len(t, hashToken("abc"), 64)
}

func TestRefreshTokenRepository_Tables(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()
	ownerID := uuid.New()
	expires := time.Now().Add(time.Hour)

	t.Run("Passenger", func(t *testing.T) {
		repo := NewRefreshTokenRepository(db)
		mock.ExpectExec(`INSERT INTO refresh_tokens \(user_id`).
			WithArgs(ownerID, hashToken("tok"), "desktop", nil, nil, expires).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Store(ctx, ownerID, "tok", "desktop", "", "", expires))
	})

	t.Run("Admin", func(t *testing.T) {
		repo := NewAdminRefreshTokenRepository(db)
		mock.ExpectExec(`INSERT INTO admin_refresh_tokens \(admin_user_id`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Store(ctx, ownerID, "tok", "", "10.0.0.1", "curl/8", expires))
	})

	t.Run("Revoke Missing", func(t *testing.T) {
		repo := NewRefreshTokenRepository(db)
		mock.ExpectExec(`UPDATE refresh_tokens`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Revoke(ctx, "tok")
		assert.EqualError(t, err, "token not found or already revoked")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
