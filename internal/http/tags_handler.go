package httpapi

import (
	"net/http"

	"banmaytinh/internal/service"

	"go.uber.org/zap"
)

const tagsPrefix = "/admin/api/v1/tags"

// TagsHandler 标签管理 Handler
type TagsHandler struct {
	tagService *service.TagService
	logger     *zap.Logger
}

// NewTagsHandler 创建标签管理 Handler
func NewTagsHandler(tagService *service.TagService, logger *zap.Logger) *TagsHandler {
	return &TagsHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// ServeHTTP /admin/api/v1/tags[/{id}[/products]]
func (h *TagsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	seg := pathSegments(r.URL.Path, tagsPrefix)
	switch {
	case len(seg) == 0 && r.Method == http.MethodGet:
		h.ListTags(w, r)
	case len(seg) == 0 && r.Method == http.MethodPost:
		h.CreateTag(w, r)
	case len(seg) == 1 && r.Method == http.MethodPut:
		h.UpdateTag(w, r, seg[0])
	case len(seg) == 1 && r.Method == http.MethodDelete:
		h.DeleteTag(w, r, seg[0])
	case len(seg) == 2 && seg[1] == "products" && r.Method == http.MethodGet:
		h.ListProducts(w, r, seg[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListTags 查询标签列表
func (h *TagsHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	items, err := h.tagService.ListTags(r.Context())
	if err != nil {
		writeError(w, h.logger, "ListTags", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// CreateTag 创建标签
func (h *TagsHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	// 1. 参数解析和验证
	var payload service.CreateTagRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}

	// 2. 调用 Service
	item, err := h.tagService.CreateTag(r.Context(), payload)
	if err != nil {
		writeError(w, h.logger, "CreateTag", err)
		return
	}

	// 3. 返回响应
	writeJSON(w, http.StatusCreated, Ok(item))
}

// UpdateTag 重命名标签
func (h *TagsHandler) UpdateTag(w http.ResponseWriter, r *http.Request, rawID string) {
	tagID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid tag id")
		return
	}
	var payload service.CreateTagRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}
	if err := h.tagService.UpdateTag(r.Context(), tagID, payload); err != nil {
		writeError(w, h.logger, "UpdateTag", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// DeleteTag 删除标签
func (h *TagsHandler) DeleteTag(w http.ResponseWriter, r *http.Request, rawID string) {
	tagID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid tag id")
		return
	}
	if err := h.tagService.DeleteTag(r.Context(), tagID); err != nil {
		writeError(w, h.logger, "DeleteTag", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// ListProducts 含该标签的商品
func (h *TagsHandler) ListProducts(w http.ResponseWriter, r *http.Request, rawID string) {
	tagID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid tag id")
		return
	}
	products, err := h.tagService.ListProductsByTag(r.Context(), tagID)
	if err != nil {
		writeError(w, h.logger, "ListProductsByTag", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(products))
}

// AttachPCTag POST /admin/api/v1/pc/{id}/tags
func (h *TagsHandler) AttachPCTag(w http.ResponseWriter, r *http.Request) {
	seg := pathSegments(r.URL.Path, "/admin/api/v1/pc")
	if len(seg) != 2 || seg[1] != "tags" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	pcID, ok := parseID(seg[0])
	if !ok {
		writeBadRequest(w, "invalid pc id")
		return
	}
	var payload service.AttachTagRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}
	item, err := h.tagService.AttachTag(r.Context(), pcID, payload)
	if err != nil {
		writeError(w, h.logger, "AttachTag", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}
