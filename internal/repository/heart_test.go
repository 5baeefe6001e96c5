package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestHeartRepository_Exists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHeartRepository(db)
	ctx := context.Background()

	t.Run("Hearted", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "hearts" WHERE member_id = $1 AND post_id = $2`)).
			WithArgs(1, 7).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		hearted, err := repo.Exists(ctx, 1, 7)
		assert.NoError(t, err)
		assert.True(t, hearted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Hearted", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "hearts" WHERE member_id = $1 AND post_id = $2`)).
			WithArgs(2, 7).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		hearted, err := repo.Exists(ctx, 2, 7)
		assert.NoError(t, err)
		assert.False(t, hearted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHeartRepository_Insert_OnConflictDoesNothing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHeartRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "hearts" ("member_id","post_id","created_at") VALUES ($1,$2,$3) ON CONFLICT DO NOTHING RETURNING "id"`)).
		WithArgs(1, 7, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	err := repo.Insert(ctx, 1, 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeartRepository_Remove(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHeartRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "hearts" WHERE member_id = $1 AND post_id = $2`)).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Remove(ctx, 1, 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeartRepository_CountByPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHeartRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "hearts" WHERE post_id = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountByPost(ctx, 7)
	assert.NoError(t, err)
	assert.EqualValues(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
