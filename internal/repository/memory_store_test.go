package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"banmaytinh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat(f float64) *float64 { return &f }

func seedProduct(t *testing.T, m *MemoryStore, name string, price float64, isPC bool) int64 {
	t.Helper()
	id, err := m.CreateProduct(context.Background(), &domain.Product{Name: name, Price: ptrFloat(price), IsPC: isPC, Stock: 10})
	require.NoError(t, err)
	return id
}

func TestMemoryStore_OptionItems(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	cpu := seedProduct(t, m, "Core i5", 4000000, false)
	groupID, err := m.CreateOptionGroup(ctx, &domain.OptionGroup{Name: "CPU"})
	require.NoError(t, err)

	itemID, err := m.AddOptionItem(ctx, groupID, cpu, true)
	require.NoError(t, err)

	_, err = m.AddOptionItem(ctx, groupID, cpu, false)
	assert.ErrorIs(t, err, domain.ErrDuplicateItem)

	g, err := m.GetOptionGroup(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, g.Items, 1)
	assert.Equal(t, "Core i5", g.Items[0].ProductName)
	assert.True(t, g.Items[0].IsDefault)

	otherID, err := m.CreateOptionGroup(ctx, &domain.OptionGroup{Name: "RAM"})
	require.NoError(t, err)
	assert.ErrorIs(t, m.RemoveOptionItem(ctx, otherID, itemID), domain.ErrNotInGroup)

	require.NoError(t, m.RemoveOptionItem(ctx, groupID, itemID))
	assert.ErrorIs(t, m.RemoveOptionItem(ctx, groupID, itemID), domain.ErrNotInGroup)
}

func TestMemoryStore_AddOptionItem_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	cpu := seedProduct(t, m, "Core i5", 4000000, false)
	groupID, err := m.CreateOptionGroup(ctx, &domain.OptionGroup{Name: "CPU"})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dupes int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AddOptionItem(ctx, groupID, cpu, false)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrDuplicateItem):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 15, dupes)
}

func TestMemoryStore_CartMergeByConfigHash(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	pc := seedProduct(t, m, "PC Gaming", 15000000, true)

	cfgA := `{"config_name":"PC Gaming (Core i5)"}`
	cfgB := `{"config_name":"PC Gaming (Core i7)"}`

	first, err := m.AddCartLine(ctx, 1, domain.CartLine{ProductID: pc, Quantity: 1, Price: 19000000, ConfigData: &cfgA, ConfigHash: "a"})
	require.NoError(t, err)
	merged, err := m.AddCartLine(ctx, 1, domain.CartLine{ProductID: pc, Quantity: 2, Price: 19000000, ConfigData: &cfgA, ConfigHash: "a"})
	require.NoError(t, err)
	assert.Equal(t, first.CartLineID, merged.CartLineID)
	assert.Equal(t, 3, merged.Quantity)

	_, err = m.AddCartLine(ctx, 1, domain.CartLine{ProductID: pc, Quantity: 1, Price: 21000000, ConfigData: &cfgB, ConfigHash: "b"})
	require.NoError(t, err)

	cart, err := m.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "PC Gaming", cart.Lines[0].ProductName)
	assert.Equal(t, 3*19000000.0+21000000.0, cart.Total())

	other, err := m.GetCart(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other.Lines)
	assert.ErrorIs(t, m.DeleteCartLine(ctx, 2, first.CartLineID), domain.ErrNotFound)
}

func TestMemoryStore_Checkout(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	pc := seedProduct(t, m, "PC Gaming", 15000000, true)
	mouse := seedProduct(t, m, "Mouse", 200000, false)
	userID, err := m.CreateUser(ctx, &domain.User{Name: "an", Email: "an@example.com", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = m.Checkout(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	cfg := `{"pc_id":1,"config_name":"PC Gaming (Core i5)","unit_price":19000000}`
	_, err = m.AddCartLine(ctx, userID, domain.CartLine{ProductID: pc, Quantity: 1, Price: 19000000, ConfigData: &cfg, ConfigHash: "a"})
	require.NoError(t, err)
	_, err = m.AddCartLine(ctx, userID, domain.CartLine{ProductID: mouse, Quantity: 2, Price: 200000})
	require.NoError(t, err)

	order, err := m.Checkout(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "an", order.UserName)
	assert.Equal(t, 19400000.0, order.TotalPrice)
	require.Len(t, order.Lines, 2)
	require.NotNil(t, order.Lines[0].ConfigData)
	assert.Equal(t, cfg, *order.Lines[0].ConfigData)
	assert.Nil(t, order.Lines[1].ConfigData)

	cart, err := m.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestMemoryStore_OrderStatistics(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	p := seedProduct(t, m, "Mouse", 100, false)

	place := func(at time.Time) int64 {
		_, err := m.AddCartLine(ctx, 1, domain.CartLine{ProductID: p, Quantity: 1, Price: 100})
		require.NoError(t, err)
		o, err := m.Checkout(ctx, 1)
		require.NoError(t, err)
		m.SetOrderCreatedAt(o.OrderID, at)
		return o.OrderID
	}
	first := place(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	place(time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC))
	place(time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, m.UpdateOrderStatus(ctx, first, domain.OrderStatusCompleted))

	stats, err := m.GetOrderStatistics(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.ByStatus[domain.OrderStatusCompleted])
	assert.Equal(t, 2, stats.ByStatus[domain.OrderStatusPending])
	assert.Equal(t, 100.0, stats.Revenue)
	assert.Equal(t, []domain.MonthlyCount{{Month: "2024-03", Count: 1}, {Month: "2024-05", Count: 1}}, stats.MonthlyOrders)
}

func TestMemoryStore_Tags(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	pc := seedProduct(t, m, "PC", 1, true)

	tagID, err := m.CreateTag(ctx, "Nhu cầu <> Gaming")
	require.NoError(t, err)
	_, err = m.CreateTag(ctx, "Nhu cầu <> Gaming")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	require.NoError(t, m.AttachTag(ctx, pc, tagID))
	assert.ErrorIs(t, m.AttachTag(ctx, pc, tagID), domain.ErrDuplicateTag)

	names, err := m.ListTagNamesByProducts(ctx, []int64{pc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nhu cầu <> Gaming"}, names[pc])

	require.NoError(t, m.DeleteTag(ctx, tagID))
	names, err = m.ListTagNamesByProducts(ctx, []int64{pc})
	require.NoError(t, err)
	assert.Empty(t, names[pc])
}

func TestMemoryStore_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	cpu := seedProduct(t, m, "Core i5", 4000000, false)
	mouse := seedProduct(t, m, "Mouse", 200000, false)
	tagID, err := m.CreateTag(ctx, "Hãng<>Intel")
	require.NoError(t, err)
	require.NoError(t, m.AttachTag(ctx, cpu, tagID))
	groupID, err := m.CreateOptionGroup(ctx, &domain.OptionGroup{Name: "CPU"})
	require.NoError(t, err)
	_, err = m.AddOptionItem(ctx, groupID, cpu, true)
	require.NoError(t, err)
	_, err = m.AddCartLine(ctx, 1, domain.CartLine{ProductID: cpu, Quantity: 1, Price: 4000000})
	require.NoError(t, err)

	require.NoError(t, m.DeleteProduct(ctx, cpu))
	_, err = m.GetProduct(ctx, cpu)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	g, err := m.GetOptionGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Empty(t, g.Items)
	tagged, err := m.ListProductsByTag(ctx, tagID)
	require.NoError(t, err)
	assert.Empty(t, tagged)
	cart, err := m.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	_, err = m.AddCartLine(ctx, 1, domain.CartLine{ProductID: mouse, Quantity: 1, Price: 200000})
	require.NoError(t, err)
	_, err = m.Checkout(ctx, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, m.DeleteProduct(ctx, mouse), domain.ErrInUse)
}

func TestMemoryStore_BrandsAndCategories(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	brandID, err := m.CreateBrand(ctx, "ASUS")
	require.NoError(t, err)
	_, err = m.CreateBrand(ctx, "ASUS")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	parent, err := m.CreateCategory(ctx, &domain.Category{Name: "Linh kiện"})
	require.NoError(t, err)
	child, err := m.CreateCategory(ctx, &domain.Category{Name: "RAM", ParentID: &parent})
	require.NoError(t, err)
	missing := int64(999)
	_, err = m.CreateCategory(ctx, &domain.Category{Name: "SSD", ParentID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = m.CreateProduct(ctx, &domain.Product{Name: "RAM 8GB", BrandID: &brandID, CategoryID: &child})
	require.NoError(t, err)
	assert.ErrorIs(t, m.DeleteBrand(ctx, brandID), domain.ErrInUse)
	assert.ErrorIs(t, m.DeleteCategory(ctx, child), domain.ErrInUse)
	assert.ErrorIs(t, m.DeleteCategory(ctx, parent), domain.ErrInUse)
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	an, err := m.CreateUser(ctx, &domain.User{Name: "an", Email: "an@example.com", Role: domain.RoleUser})
	require.NoError(t, err)
	_, err = m.CreateUser(ctx, &domain.User{Name: "binh", Email: "binh@example.com", Role: domain.RoleUser})
	require.NoError(t, err)

	err = m.UpdateUser(ctx, &domain.User{UserID: an, Role: domain.RoleUser, Name: "binh", Email: "an@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	err = m.UpdateUser(ctx, &domain.User{UserID: an, Role: domain.RoleAdmin, Name: "an", Email: "an@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, m.SoftDeleteUser(ctx, an, domain.RoleUser))
	assert.ErrorIs(t, m.SoftDeleteUser(ctx, an, domain.RoleUser), domain.ErrNotFound)
	n, err := m.CountUsers(ctx, domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = m.GetUserByLogin(ctx, "an")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
