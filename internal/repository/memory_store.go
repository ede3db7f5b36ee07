package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"banmaytinh/internal/buildconfig"
	"banmaytinh/internal/domain"
)

// MemoryStore: DB 未就绪时的联调实现，同时实现全部 Repository 接口
// - 所有数据在一把 RWMutex 下，单进程内操作之间互斥
// - 唯一约束与 schema.sql 保持一致
type MemoryStore struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	tags        map[int64]domain.Tag
	productTags map[int64]map[int64]struct{} // productID -> tagIDs
	products    map[int64]domain.Product
	brands      map[int64]domain.Brand
	categories  map[int64]domain.Category
	groups      map[int64]*domain.OptionGroup
	carts       map[int64]*domain.Cart // userID -> cart
	orders      map[int64]*domain.Order
	users       map[int64]*domain.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:         time.Now,
		tags:        map[int64]domain.Tag{},
		productTags: map[int64]map[int64]struct{}{},
		products:    map[int64]domain.Product{},
		brands:      map[int64]domain.Brand{},
		categories:  map[int64]domain.Category{},
		groups:      map[int64]*domain.OptionGroup{},
		carts:       map[int64]*domain.Cart{},
		orders:      map[int64]*domain.Order{},
		users:       map[int64]*domain.User{},
	}
}

var (
	_ TagsRepository         = (*MemoryStore)(nil)
	_ ProductsRepository     = (*MemoryStore)(nil)
	_ OptionGroupsRepository = (*MemoryStore)(nil)
	_ CartsRepository        = (*MemoryStore)(nil)
	_ OrdersRepository       = (*MemoryStore)(nil)
	_ UsersRepository        = (*MemoryStore)(nil)
)

func (m *MemoryStore) nextID() int64 {
	m.seq++
	return m.seq
}

// ---- brands / categories (dev seed) ----

func (m *MemoryStore) AddBrand(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.brands[id] = domain.Brand{BrandID: id, Name: name}
	return id
}

func (m *MemoryStore) AddCategory(name string, parentID *int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.categories[id] = domain.Category{CategoryID: id, Name: name, ParentID: parentID}
	return id
}

// ---- tags ----

func (m *MemoryStore) ListTags(_ context.Context) ([]domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagName < out[j].TagName })
	return out, nil
}

func (m *MemoryStore) GetTag(_ context.Context, tagID int64) (*domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tags[tagID]
	if !ok {
		return nil, fmt.Errorf("tag %d: %w", tagID, domain.ErrNotFound)
	}
	return &t, nil
}

func (m *MemoryStore) GetTagByName(_ context.Context, tagName string) (*domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tags {
		if t.TagName == tagName {
			t := t
			return &t, nil
		}
	}
	return nil, fmt.Errorf("tag %q: %w", tagName, domain.ErrNotFound)
}

func (m *MemoryStore) tagNameTaken(name string, exceptID int64) bool {
	for id, t := range m.tags {
		if id != exceptID && t.TagName == name {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateTag(_ context.Context, tagName string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tagNameTaken(tagName, 0) {
		return 0, fmt.Errorf("tag %q: %w", tagName, domain.ErrDuplicateName)
	}
	id := m.nextID()
	m.tags[id] = domain.Tag{TagID: id, TagName: tagName}
	return id, nil
}

func (m *MemoryStore) UpdateTagName(_ context.Context, tagID int64, tagName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[tagID]
	if !ok {
		return fmt.Errorf("tag %d: %w", tagID, domain.ErrNotFound)
	}
	if m.tagNameTaken(tagName, tagID) {
		return fmt.Errorf("tag %q: %w", tagName, domain.ErrDuplicateName)
	}
	t.TagName = tagName
	m.tags[tagID] = t
	return nil
}

func (m *MemoryStore) DeleteTag(_ context.Context, tagID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[tagID]; !ok {
		return fmt.Errorf("tag %d: %w", tagID, domain.ErrNotFound)
	}
	delete(m.tags, tagID)
	for _, set := range m.productTags {
		delete(set, tagID)
	}
	return nil
}

func (m *MemoryStore) AttachTag(_ context.Context, productID, tagID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	if _, ok := m.tags[tagID]; !ok {
		return fmt.Errorf("tag %d: %w", tagID, domain.ErrNotFound)
	}
	set := m.productTags[productID]
	if set == nil {
		set = map[int64]struct{}{}
		m.productTags[productID] = set
	}
	if _, dup := set[tagID]; dup {
		return fmt.Errorf("product %d tag %d: %w", productID, tagID, domain.ErrDuplicateTag)
	}
	set[tagID] = struct{}{}
	return nil
}

func (m *MemoryStore) DetachTag(_ context.Context, productID, tagID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.productTags[productID]
	if _, ok := set[tagID]; !ok {
		return fmt.Errorf("product %d tag %d: %w", productID, tagID, domain.ErrNotFound)
	}
	delete(set, tagID)
	return nil
}

func (m *MemoryStore) ListProductsByTag(_ context.Context, tagID int64) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Product
	for pid, set := range m.productTags {
		if _, ok := set[tagID]; ok {
			if p, ok := m.products[pid]; ok {
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ListTagsByProduct(_ context.Context, productID int64) ([]domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Tag
	for tid := range m.productTags[productID] {
		out = append(out, m.tags[tid])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagName < out[j].TagName })
	return out, nil
}

func (m *MemoryStore) ListTagNamesByProducts(_ context.Context, productIDs []int64) (map[int64][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64][]string, len(productIDs))
	for _, pid := range productIDs {
		for tid := range m.productTags[pid] {
			out[pid] = append(out[pid], m.tags[tid].TagName)
		}
	}
	return out, nil
}

// ---- products ----

func (m *MemoryStore) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	return &p, nil
}

func (m *MemoryStore) GetProductsByIDs(_ context.Context, productIDs []int64) (map[int64]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]domain.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *MemoryStore) ListProducts(_ context.Context, f ProductsFilter) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []domain.Product
	for _, p := range m.products {
		if f.IsPC != nil && p.IsPC != *f.IsPC {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.BrandID != nil && (p.BrandID == nil || *p.BrandID != *f.BrandID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if f.ExcludeID != 0 && p.ProductID == f.ExcludeID {
			continue
		}
		out = append(out, p)
	}
	sortNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func sortNewestFirst(ps []domain.Product) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ProductID > ps[j].ProductID
	})
}

func (m *MemoryStore) ListTopSelling(_ context.Context, isPC bool, limit int) ([]domain.ProductSales, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sold := map[int64]int{}
	for _, o := range m.orders {
		for _, l := range o.Lines {
			sold[l.ProductID] += l.Quantity
		}
	}
	var out []domain.ProductSales
	for pid, n := range sold {
		p, ok := m.products[pid]
		if !ok || p.IsPC != isPC {
			continue
		}
		out = append(out, domain.ProductSales{Product: p, Sold: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sold != out[j].Sold {
			return out[i].Sold > out[j].Sold
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) checkRefs(p *domain.Product) error {
	if p.CategoryID != nil {
		if _, ok := m.categories[*p.CategoryID]; !ok {
			return fmt.Errorf("category %d: %w", *p.CategoryID, domain.ErrNotFound)
		}
	}
	if p.BrandID != nil {
		if _, ok := m.brands[*p.BrandID]; !ok {
			return fmt.Errorf("brand %d: %w", *p.BrandID, domain.ErrNotFound)
		}
	}
	return nil
}

func (m *MemoryStore) CreateProduct(_ context.Context, p *domain.Product) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRefs(p); err != nil {
		return 0, err
	}
	cp := *p
	cp.ProductID = m.nextID()
	cp.CreatedAt = m.now()
	cp.UpdatedAt = cp.CreatedAt
	m.products[cp.ProductID] = cp
	return cp.ProductID, nil
}

func (m *MemoryStore) UpdateProduct(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.products[p.ProductID]
	if !ok {
		return fmt.Errorf("product %d: %w", p.ProductID, domain.ErrNotFound)
	}
	if err := m.checkRefs(p); err != nil {
		return err
	}
	cp := *p
	cp.CreatedAt = old.CreatedAt
	cp.UpdatedAt = m.now()
	m.products[p.ProductID] = cp
	return nil
}

func (m *MemoryStore) ListBrands(_ context.Context) ([]domain.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Brand, 0, len(m.brands))
	for _, b := range m.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (m *MemoryStore) DeleteProduct(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	for _, o := range m.orders {
		for _, l := range o.Lines {
			if l.ProductID == productID {
				return fmt.Errorf("product %d has orders: %w", productID, domain.ErrInUse)
			}
		}
	}
	delete(m.products, productID)
	delete(m.productTags, productID)
	for _, g := range m.groups {
		items := g.Items[:0]
		for _, it := range g.Items {
			if it.ProductID != productID {
				items = append(items, it)
			}
		}
		g.Items = items
	}
	for _, c := range m.carts {
		lines := c.Lines[:0]
		for _, l := range c.Lines {
			if l.ProductID != productID {
				lines = append(lines, l)
			}
		}
		c.Lines = lines
	}
	return nil
}

func (m *MemoryStore) brandNameTaken(name string, exceptID int64) bool {
	for _, b := range m.brands {
		if b.Name == name && b.BrandID != exceptID {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateBrand(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.brandNameTaken(name, 0) {
		return 0, fmt.Errorf("brand %q: %w", name, domain.ErrDuplicateName)
	}
	id := m.nextID()
	m.brands[id] = domain.Brand{BrandID: id, Name: name}
	return id, nil
}

func (m *MemoryStore) UpdateBrand(_ context.Context, b *domain.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[b.BrandID]; !ok {
		return fmt.Errorf("brand %d: %w", b.BrandID, domain.ErrNotFound)
	}
	if m.brandNameTaken(b.Name, b.BrandID) {
		return fmt.Errorf("brand %q: %w", b.Name, domain.ErrDuplicateName)
	}
	m.brands[b.BrandID] = *b
	return nil
}

func (m *MemoryStore) DeleteBrand(_ context.Context, brandID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[brandID]; !ok {
		return fmt.Errorf("brand %d: %w", brandID, domain.ErrNotFound)
	}
	for _, p := range m.products {
		if p.BrandID != nil && *p.BrandID == brandID {
			return fmt.Errorf("brand %d has products: %w", brandID, domain.ErrInUse)
		}
	}
	delete(m.brands, brandID)
	return nil
}

func (m *MemoryStore) checkCategory(c *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Name == c.Name && existing.CategoryID != c.CategoryID {
			return fmt.Errorf("category %q: %w", c.Name, domain.ErrDuplicateName)
		}
	}
	if c.ParentID != nil {
		if _, ok := m.categories[*c.ParentID]; !ok {
			return fmt.Errorf("parent category %d: %w", *c.ParentID, domain.ErrNotFound)
		}
	}
	return nil
}

func (m *MemoryStore) CreateCategory(_ context.Context, c *domain.Category) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkCategory(c); err != nil {
		return 0, err
	}
	cp := *c
	cp.CategoryID = m.nextID()
	m.categories[cp.CategoryID] = cp
	return cp.CategoryID, nil
}

func (m *MemoryStore) UpdateCategory(_ context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.CategoryID]; !ok {
		return fmt.Errorf("category %d: %w", c.CategoryID, domain.ErrNotFound)
	}
	if err := m.checkCategory(c); err != nil {
		return err
	}
	m.categories[c.CategoryID] = *c
	return nil
}

func (m *MemoryStore) DeleteCategory(_ context.Context, categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[categoryID]; !ok {
		return fmt.Errorf("category %d: %w", categoryID, domain.ErrNotFound)
	}
	for _, p := range m.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			return fmt.Errorf("category %d has products: %w", categoryID, domain.ErrInUse)
		}
	}
	for _, c := range m.categories {
		if c.ParentID != nil && *c.ParentID == categoryID {
			return fmt.Errorf("category %d has subcategories: %w", categoryID, domain.ErrInUse)
		}
	}
	delete(m.categories, categoryID)
	return nil
}

// ---- option groups ----

// withItemDetails 返回组副本，并补齐选项的商品名/价格
func (m *MemoryStore) withItemDetails(g *domain.OptionGroup) domain.OptionGroup {
	cp := *g
	cp.Items = make([]domain.OptionItem, len(g.Items))
	for i, it := range g.Items {
		if p, ok := m.products[it.ProductID]; ok {
			it.ProductName = p.Name
			it.Price = p.Price
		}
		cp.Items[i] = it
	}
	return cp
}

func (m *MemoryStore) ListOptionGroups(_ context.Context) ([]domain.OptionGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.OptionGroup, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, m.withItemDetails(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OptionGroupID < out[j].OptionGroupID })
	return out, nil
}

func (m *MemoryStore) GetOptionGroup(_ context.Context, groupID int64) (*domain.OptionGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("option group %d: %w", groupID, domain.ErrNotFound)
	}
	cp := m.withItemDetails(g)
	return &cp, nil
}

func (m *MemoryStore) CreateOptionGroup(_ context.Context, g *domain.OptionGroup) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.groups[id] = &domain.OptionGroup{OptionGroupID: id, Name: g.Name, Description: g.Description}
	return id, nil
}

func (m *MemoryStore) UpdateOptionGroup(_ context.Context, g *domain.OptionGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.groups[g.OptionGroupID]
	if !ok {
		return fmt.Errorf("option group %d: %w", g.OptionGroupID, domain.ErrNotFound)
	}
	cur.Name = g.Name
	cur.Description = g.Description
	return nil
}

func (m *MemoryStore) DeleteOptionGroup(_ context.Context, groupID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[groupID]; !ok {
		return fmt.Errorf("option group %d: %w", groupID, domain.ErrNotFound)
	}
	delete(m.groups, groupID)
	return nil
}

func (m *MemoryStore) AddOptionItem(_ context.Context, groupID, productID int64, isDefault bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return 0, fmt.Errorf("option group %d: %w", groupID, domain.ErrNotFound)
	}
	if _, ok := m.products[productID]; !ok {
		return 0, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	if _, err := buildconfig.AddItem(g, productID, isDefault); err != nil {
		return 0, err
	}
	id := m.nextID()
	g.Items[len(g.Items)-1].OptionItemID = id
	return id, nil
}

func (m *MemoryStore) RemoveOptionItem(_ context.Context, groupID, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return fmt.Errorf("group %d item %d: %w", groupID, itemID, domain.ErrNotInGroup)
	}
	return buildconfig.RemoveItem(g, itemID)
}

func (m *MemoryStore) ListCandidateComponents(_ context.Context, groupID int64, categoryID *int64) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g := m.groups[groupID]
	var out []domain.Product
	for _, p := range m.products {
		if p.IsPC {
			continue
		}
		if g != nil && g.HasProduct(p.ProductID) {
			continue
		}
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- carts ----

func (m *MemoryStore) cartLineView(l domain.CartLine) domain.CartLine {
	if p, ok := m.products[l.ProductID]; ok {
		l.ProductName = p.Name
		l.ImageURL = p.ImageURL
	}
	return l
}

func (m *MemoryStore) GetCart(_ context.Context, userID int64) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.carts[userID]
	if !ok {
		return &domain.Cart{UserID: userID, Lines: []domain.CartLine{}}, nil
	}
	cp := *c
	cp.Lines = make([]domain.CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		cp.Lines = append(cp.Lines, m.cartLineView(l))
	}
	return &cp, nil
}

func (m *MemoryStore) AddCartLine(_ context.Context, userID int64, line domain.CartLine) (*domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[line.ProductID]; !ok {
		return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrNotFound)
	}
	c, ok := m.carts[userID]
	if !ok {
		c = &domain.Cart{CartID: m.nextID(), UserID: userID, CreatedAt: m.now()}
		m.carts[userID] = c
	}
	for i := range c.Lines {
		l := &c.Lines[i]
		if l.ProductID == line.ProductID && l.ConfigHash == line.ConfigHash {
			l.Quantity += line.Quantity
			out := m.cartLineView(*l)
			return &out, nil
		}
	}
	line.CartLineID = m.nextID()
	line.CartID = c.CartID
	c.Lines = append(c.Lines, line)
	out := m.cartLineView(line)
	return &out, nil
}

func (m *MemoryStore) findCartLine(userID, lineID int64) (*domain.Cart, int) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, -1
	}
	for i, l := range c.Lines {
		if l.CartLineID == lineID {
			return c, i
		}
	}
	return c, -1
}

func (m *MemoryStore) GetCartLine(_ context.Context, userID, lineID int64) (*domain.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, i := m.findCartLine(userID, lineID)
	if i < 0 {
		return nil, fmt.Errorf("cart line %d: %w", lineID, domain.ErrNotFound)
	}
	out := m.cartLineView(c.Lines[i])
	return &out, nil
}

func (m *MemoryStore) SetCartLineQuantity(_ context.Context, userID, lineID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, i := m.findCartLine(userID, lineID)
	if i < 0 {
		return fmt.Errorf("cart line %d: %w", lineID, domain.ErrNotFound)
	}
	c.Lines[i].Quantity = quantity
	return nil
}

func (m *MemoryStore) DeleteCartLine(_ context.Context, userID, lineID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, i := m.findCartLine(userID, lineID)
	if i < 0 {
		return fmt.Errorf("cart line %d: %w", lineID, domain.ErrNotFound)
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

// ---- orders ----

func (m *MemoryStore) Checkout(_ context.Context, userID int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok || len(c.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order := &domain.Order{
		OrderID:   m.nextID(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		CreatedAt: m.now(),
	}
	if u, ok := m.users[userID]; ok {
		order.UserName = u.Name
	}
	for _, l := range c.Lines {
		ol := domain.OrderLine{
			OrderLineID: m.nextID(),
			OrderID:     order.OrderID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			Price:       l.Price,
			ConfigData:  l.ConfigData,
			ConfigHash:  l.ConfigHash,
		}
		order.TotalPrice += l.Subtotal()
		order.Lines = append(order.Lines, ol)
	}
	m.orders[order.OrderID] = order
	delete(m.carts, userID)

	out := m.orderView(order)
	return &out, nil
}

func (m *MemoryStore) orderView(o *domain.Order) domain.Order {
	cp := *o
	if u, ok := m.users[o.UserID]; ok {
		cp.UserName = u.Name
	}
	cp.Lines = make([]domain.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		if p, ok := m.products[l.ProductID]; ok {
			l.ProductName = p.Name
		}
		cp.Lines[i] = l
	}
	return cp
}

func (m *MemoryStore) GetOrder(_ context.Context, orderID int64) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	out := m.orderView(o)
	return &out, nil
}

func (m *MemoryStore) listOrders(keep func(*domain.Order) bool) []domain.Order {
	var out []domain.Order
	for _, o := range m.orders {
		if keep(o) {
			v := m.orderView(o)
			v.Lines = nil
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].OrderID > out[j].OrderID
	})
	return out
}

func (m *MemoryStore) ListOrdersByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listOrders(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (m *MemoryStore) ListOrders(_ context.Context, f OrdersFilter) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listOrders(func(o *domain.Order) bool {
		if u, ok := m.users[o.UserID]; ok && u.IsDeleted {
			return false
		}
		return f.Status == "" || o.Status == f.Status
	}), nil
}

func (m *MemoryStore) UpdateOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	o.Status = status
	return nil
}

func (m *MemoryStore) GetOrderStatistics(_ context.Context, since time.Time) (*domain.OrderStatistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &domain.OrderStatistics{ByStatus: map[domain.OrderStatus]int{}}
	monthly := map[string]int{}
	for _, o := range m.orders {
		stats.TotalOrders++
		stats.ByStatus[o.Status]++
		if o.Status == domain.OrderStatusCompleted {
			stats.Revenue += o.TotalPrice
		}
		if !o.CreatedAt.Before(since) {
			monthly[o.CreatedAt.Format("2006-01")]++
		}
	}
	for month, n := range monthly {
		stats.MonthlyOrders = append(stats.MonthlyOrders, domain.MonthlyCount{Month: month, Count: n})
	}
	sort.Slice(stats.MonthlyOrders, func(i, j int) bool { return stats.MonthlyOrders[i].Month < stats.MonthlyOrders[j].Month })
	return stats, nil
}

// SetOrderCreatedAt 仅用于测试/造数
func (m *MemoryStore) SetOrderCreatedAt(orderID int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.CreatedAt = at
	}
}

// ---- users ----

func (m *MemoryStore) GetUserByID(_ context.Context, userID int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) GetUserByLogin(_ context.Context, login string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if !u.IsDeleted && (u.Name == login || u.Email == login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", login, domain.ErrNotFound)
}

func (m *MemoryStore) CreateUser(_ context.Context, u *domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Name == u.Name || existing.Email == u.Email {
			return 0, fmt.Errorf("user %q: %w", u.Name, domain.ErrDuplicateName)
		}
	}
	cp := *u
	cp.UserID = m.nextID()
	cp.CreatedAt = m.now()
	m.users[cp.UserID] = &cp
	return cp.UserID, nil
}

func (m *MemoryStore) ListUsers(_ context.Context, role domain.Role) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.User{}
	for _, u := range m.users {
		if u.Role == role && !u.IsDeleted {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MemoryStore) CountUsers(_ context.Context, role domain.Role) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.users {
		if u.Role == role && !u.IsDeleted {
			n++
		}
	}
	return n, nil
}

// activeUser 调用方需持有锁
func (m *MemoryStore) activeUser(userID int64, role domain.Role) (*domain.User, error) {
	u, ok := m.users[userID]
	if !ok || u.IsDeleted || u.Role != role {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return u, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, err := m.activeUser(u.UserID, u.Role)
	if err != nil {
		return err
	}
	for _, existing := range m.users {
		if existing.UserID != u.UserID && (existing.Name == u.Name || existing.Email == u.Email) {
			return fmt.Errorf("user %q: %w", u.Name, domain.ErrDuplicateName)
		}
	}
	current.Name = u.Name
	current.Email = u.Email
	current.PasswordHash = u.PasswordHash
	return nil
}

func (m *MemoryStore) SoftDeleteUser(_ context.Context, userID int64, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.activeUser(userID, role)
	if err != nil {
		return err
	}
	u.IsDeleted = true
	return nil
}
