package repository

import (
	"context"
	"testing"
	"time"

	"banmaytinh/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresOptionGroups_AddOptionItem(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOptionGroupsRepository(db)

	mock.ExpectQuery(`INSERT INTO option_items`).
		WithArgs(int64(1), int64(201), true).
		WillReturnRows(sqlmock.NewRows([]string{"option_item_id"}).AddRow(11))

	id, err := repo.AddOptionItem(context.Background(), 1, 201, true)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOptionGroups_AddOptionItem_Duplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOptionGroupsRepository(db)

	mock.ExpectQuery(`ON CONFLICT \(option_group_id, product_id\) DO NOTHING`).
		WithArgs(int64(1), int64(201), false).
		WillReturnRows(sqlmock.NewRows([]string{"option_item_id"}))

	_, err := repo.AddOptionItem(context.Background(), 1, 201, false)
	assert.ErrorIs(t, err, domain.ErrDuplicateItem)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOptionGroups_RemoveOptionItem_NotInGroup(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOptionGroupsRepository(db)

	mock.ExpectExec(`DELETE FROM option_items WHERE option_item_id = \$1 AND option_group_id = \$2`).
		WithArgs(int64(21), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveOptionItem(context.Background(), 1, 21)
	assert.ErrorIs(t, err, domain.ErrNotInGroup)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOptionGroups_GetOptionGroup(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOptionGroupsRepository(db)

	mock.ExpectQuery(`SELECT option_group_id, name, description FROM option_groups WHERE option_group_id`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"option_group_id", "name", "description"}).AddRow(1, "CPU", "Bộ vi xử lý"))
	mock.ExpectQuery(`FROM option_items oi`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"option_item_id", "option_group_id", "product_id", "is_default", "name", "price"}).
			AddRow(11, 1, 201, true, "Core i5", 4000000.0).
			AddRow(12, 1, 202, false, "Core i7", nil))

	g, err := repo.GetOptionGroup(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "CPU", g.Name)
	require.Len(t, g.Items, 2)
	assert.True(t, g.Items[0].IsDefault)
	require.NotNil(t, g.Items[0].Price)
	assert.Equal(t, 4000000.0, *g.Items[0].Price)
	assert.Nil(t, g.Items[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOptionGroups_ListCandidateComponents(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOptionGroupsRepository(db)

	now := time.Now()
	cat := int64(3)
	mock.ExpectQuery(`WHERE p.is_pc = FALSE`).
		WithArgs(int64(1), cat).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "category_id", "brand_id", "price", "is_pc", "specs", "image", "stock", "created_at", "updated_at"}).
			AddRow(203, "Ryzen 5", 3, nil, 3500000.0, false, "", "", 5, now, now))

	got, err := repo.ListCandidateComponents(context.Background(), 1, &cat)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ryzen 5", got[0].Name)
	assert.Nil(t, got[0].BrandID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
