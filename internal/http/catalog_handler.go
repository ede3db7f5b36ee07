package httpapi

import (
	"net/http"

	"banmaytinh/internal/service"

	"go.uber.org/zap"
)

// CatalogHandler 前台商品浏览 + 后台商品维护
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

// Home GET /api/v1/home
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	home, err := h.catalogService.Home(r.Context())
	if err != nil {
		writeError(w, h.logger, "Home", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(home))
}

// Products /api/v1/products/pc, /api/v1/products/components, /api/v1/products/{id}
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	seg := pathSegments(r.URL.Path, "/api/v1/products")
	if len(seg) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch seg[0] {
	case "pc":
		h.listProducts(w, r, true)
	case "components":
		h.listProducts(w, r, false)
	default:
		productID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid product id")
			return
		}
		detail, err := h.catalogService.GetProduct(r.Context(), productID)
		if err != nil {
			writeError(w, h.logger, "GetProduct", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(detail))
	}
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request, isPC bool) {
	q := r.URL.Query()
	products, err := h.catalogService.ListProducts(r.Context(), service.ListProductsRequest{
		IsPC:       isPC,
		CategoryID: queryInt64(r, "category_id"),
		BrandID:    queryInt64(r, "brand_id"),
		Search:     q.Get("search"),
	})
	if err != nil {
		writeError(w, h.logger, "ListProducts", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(products))
}

// Brands GET /api/v1/brands
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	brands, err := h.catalogService.ListBrands(r.Context())
	if err != nil {
		writeError(w, h.logger, "ListBrands", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(brands))
}

// Categories GET /api/v1/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		writeError(w, h.logger, "ListCategories", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(categories))
}

// ServeAdmin POST /admin/api/v1/products, PUT|DELETE /admin/api/v1/products/{id}
func (h *CatalogHandler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	seg := pathSegments(r.URL.Path, "/admin/api/v1/products")
	var payload service.ProductRequest
	switch {
	case len(seg) == 0 && r.Method == http.MethodPost:
		if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
			writeBadRequest(w, "invalid body")
			return
		}
		p, err := h.catalogService.CreateProduct(r.Context(), payload)
		if err != nil {
			writeError(w, h.logger, "CreateProduct", err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(p))
	case len(seg) == 1 && r.Method == http.MethodPut:
		productID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid product id")
			return
		}
		if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
			writeBadRequest(w, "invalid body")
			return
		}
		p, err := h.catalogService.UpdateProduct(r.Context(), productID, payload)
		if err != nil {
			writeError(w, h.logger, "UpdateProduct", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(p))
	case len(seg) == 1 && r.Method == http.MethodDelete:
		productID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid product id")
			return
		}
		if err := h.catalogService.DeleteProduct(r.Context(), productID); err != nil {
			writeError(w, h.logger, "DeleteProduct", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// AdminBrands GET|POST /admin/api/v1/brands, PUT|DELETE /admin/api/v1/brands/{id}
func (h *CatalogHandler) AdminBrands(w http.ResponseWriter, r *http.Request) {
	seg := pathSegments(r.URL.Path, "/admin/api/v1/brands")
	var payload service.BrandRequest
	switch {
	case len(seg) == 0 && r.Method == http.MethodGet:
		h.Brands(w, r)
	case len(seg) == 0 && r.Method == http.MethodPost:
		if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
			writeBadRequest(w, "invalid body")
			return
		}
		b, err := h.catalogService.CreateBrand(r.Context(), payload)
		if err != nil {
			writeError(w, h.logger, "CreateBrand", err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(b))
	case len(seg) == 1 && r.Method == http.MethodPut:
		brandID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid brand id")
			return
		}
		if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
			writeBadRequest(w, "invalid body")
			return
		}
		b, err := h.catalogService.UpdateBrand(r.Context(), brandID, payload)
		if err != nil {
			writeError(w, h.logger, "UpdateBrand", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(b))
	case len(seg) == 1 && r.Method == http.MethodDelete:
		brandID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid brand id")
			return
		}
		if err := h.catalogService.DeleteBrand(r.Context(), brandID); err != nil {
			writeError(w, h.logger, "DeleteBrand", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// AdminCategories GET|POST /admin/api/v1/categories, PUT|DELETE /admin/api/v1/categories/{id}
func (h *CatalogHandler) AdminCategories(w http.ResponseWriter, r *http.Request) {
	seg := pathSegments(r.URL.Path, "/admin/api/v1/categories")
	var payload service.CategoryRequest
	switch {
	case len(seg) == 0 && r.Method == http.MethodGet:
		h.Categories(w, r)
	case len(seg) == 0 && r.Method == http.MethodPost:
		if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
			writeBadRequest(w, "invalid body")
			return
		}
		c, err := h.catalogService.CreateCategory(r.Context(), payload)
		if err != nil {
			writeError(w, h.logger, "CreateCategory", err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(c))
	case len(seg) == 1 && r.Method == http.MethodPut:
		categoryID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid category id")
			return
		}
		if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
			writeBadRequest(w, "invalid body")
			return
		}
		c, err := h.catalogService.UpdateCategory(r.Context(), categoryID, payload)
		if err != nil {
			writeError(w, h.logger, "UpdateCategory", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(c))
	case len(seg) == 1 && r.Method == http.MethodDelete:
		categoryID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid category id")
			return
		}
		if err := h.catalogService.DeleteCategory(r.Context(), categoryID); err != nil {
			writeError(w, h.logger, "DeleteCategory", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
