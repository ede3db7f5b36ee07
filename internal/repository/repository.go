package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Repositories 各领域 Repository 集合（main 中按 DB 是否可用选择实现）
type Repositories struct {
	Tags         TagsRepository
	Products     ProductsRepository
	OptionGroups OptionGroupsRepository
	Carts        CartsRepository
	Orders       OrdersRepository
	Users        UsersRepository
}

// NewPostgresRepositories PostgreSQL 实现
func NewPostgresRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Tags:         NewPostgresTagsRepository(db),
		Products:     NewPostgresProductsRepository(db),
		OptionGroups: NewPostgresOptionGroupsRepository(db),
		Carts:        NewPostgresCartsRepository(db),
		Orders:       NewPostgresOrdersRepository(db),
		Users:        NewPostgresUsersRepository(db),
	}
}

// NewMemoryRepositories 内存实现（DB 未就绪时联调，共享同一份数据）
func NewMemoryRepositories(m *MemoryStore) *Repositories {
	return &Repositories{
		Tags:         m,
		Products:     m,
		OptionGroups: m,
		Carts:        m,
		Orders:       m,
		Users:        m,
	}
}

// isUniqueViolation PostgreSQL unique_violation (23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// isForeignKeyViolation PostgreSQL foreign_key_violation (23503)
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
