package service

import (
	"context"
	"testing"
	"time"

	"banmaytinh/internal/domain"
	"banmaytinh/internal/repository"
	"banmaytinh/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testShop 内存数据 + 已注册的全部服务
type testShop struct {
	store    *repository.MemoryStore
	kv       *store.MemoryKV
	tags     *TagService
	advisor  *AdvisorService
	builder  *BuildPCService
	cart     *CartService
	orders   *OrderService
	auth     *AuthService
	catalog  *CatalogService
	accounts *AccountService
}

func newTestShop(t *testing.T) *testShop {
	t.Helper()
	m := repository.NewMemoryStore()
	kv := store.NewMemoryKV()
	logger := zap.NewNop()
	builder := NewBuildPCService(m, m, m, logger)
	return &testShop{
		store:    m,
		kv:       kv,
		tags:     NewTagService(m, m, kv, time.Minute, logger),
		advisor:  NewAdvisorService(m, m, logger),
		builder:  builder,
		cart:     NewCartService(m, m, builder, logger),
		orders:   NewOrderService(m, nil, logger),
		auth:     NewAuthService(m, kv, time.Hour, logger),
		catalog:  NewCatalogService(m, logger),
		accounts: NewAccountService(m, m, logger),
	}
}

func price(v float64) *float64 { return &v }

func (s *testShop) product(t *testing.T, name string, p float64, isPC bool, categoryID *int64) int64 {
	t.Helper()
	id, err := s.store.CreateProduct(context.Background(), &domain.Product{
		Name:       name,
		Price:      price(p),
		IsPC:       isPC,
		CategoryID: categoryID,
		Stock:      5,
	})
	require.NoError(t, err)
	return id
}

func (s *testShop) tag(t *testing.T, productID int64, name string) {
	t.Helper()
	ctx := context.Background()
	tag, err := s.store.GetTagByName(ctx, name)
	var tagID int64
	if err == nil {
		tagID = tag.TagID
	} else {
		tagID, err = s.store.CreateTag(ctx, name)
		require.NoError(t, err)
	}
	require.NoError(t, s.store.AttachTag(ctx, productID, tagID))
}

func (s *testShop) group(t *testing.T, name string, items ...int64) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := s.store.CreateOptionGroup(ctx, &domain.OptionGroup{Name: name})
	require.NoError(t, err)
	for i, pid := range items {
		_, err := s.store.AddOptionItem(ctx, id, pid, i == 0)
		require.NoError(t, err)
	}
	return id
}
