package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 /metrics 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// handleTree 同时注册 "/x" 与 "/x/"
func (r *Router) handleTree(pattern string, h http.HandlerFunc) {
	r.Handle(pattern, h)
	r.Handle(pattern+"/", h)
}

// RegisterPublicRoutes 无需登录
func (r *Router) RegisterPublicRoutes(catalog *CatalogHandler, build *BuildPCHandler, advisor *AdvisorHandler, auth *AuthHandler, loginLimiter *RateLimiter) {
	r.Handle("/api/v1/home", catalog.Home)
	r.Handle("/api/v1/products/", catalog.Products)
	r.Handle("/api/v1/brands", catalog.Brands)
	r.Handle("/api/v1/categories", catalog.Categories)
	r.Handle("/api/v1/pc/", build.PCDetail)

	r.Handle("/api/v1/advisor/topics", advisor.Topics)
	r.Handle("/api/v1/advisor/suggest", advisor.Suggest)

	r.Handle("/api/v1/auth/register", auth.Register)
	r.Handle("/api/v1/auth/login", loginLimiter.Limit(auth.Login))
	r.Handle("/api/v1/auth/logout", auth.Logout)
}

// RegisterUserRoutes 需登录
func (r *Router) RegisterUserRoutes(g *Guard, cart *CartHandler, orders *OrderHandler) {
	r.handleTree("/api/v1/cart", g.RequireSession(cart.ServeHTTP))
	r.Handle("/api/v1/checkout", g.RequireSession(orders.Checkout))
	r.handleTree("/api/v1/orders", g.RequireSession(orders.UserOrders))
	r.Handle("/api/v1/profile", g.RequireSession(orders.Profile))
}

// RegisterAdminRoutes 需管理员
func (r *Router) RegisterAdminRoutes(g *Guard, tags *TagsHandler, build *BuildPCHandler, catalog *CatalogHandler, orders *OrderHandler, accounts *AccountsHandler) {
	r.handleTree(tagsPrefix, g.RequireAdmin(tags.ServeHTTP))
	r.Handle("/admin/api/v1/pc/", g.RequireAdmin(tags.AttachPCTag))
	r.handleTree(optionGroupsPrefix, g.RequireAdmin(build.ServeHTTP))
	r.handleTree("/admin/api/v1/products", g.RequireAdmin(catalog.ServeAdmin))
	r.handleTree("/admin/api/v1/brands", g.RequireAdmin(catalog.AdminBrands))
	r.handleTree("/admin/api/v1/categories", g.RequireAdmin(catalog.AdminCategories))
	r.handleTree(usersPrefix, g.RequireAdmin(accounts.Users))
	r.handleTree(adminsPrefix, g.RequireAdmin(accounts.Admins))
	r.handleTree("/admin/api/v1/orders", g.RequireAdmin(orders.ServeAdmin))
}
