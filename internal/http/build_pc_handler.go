package httpapi

import (
	"net/http"

	"banmaytinh/internal/service"

	"go.uber.org/zap"
)

const optionGroupsPrefix = "/admin/api/v1/option-groups"

// BuildPCHandler 配件组管理 + 整机详情
type BuildPCHandler struct {
	buildService *service.BuildPCService
	logger       *zap.Logger
}

func NewBuildPCHandler(buildService *service.BuildPCService, logger *zap.Logger) *BuildPCHandler {
	return &BuildPCHandler{buildService: buildService, logger: logger}
}

// ServeHTTP /admin/api/v1/option-groups/...
func (h *BuildPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	seg := pathSegments(r.URL.Path, optionGroupsPrefix)
	switch {
	case len(seg) == 0 && r.Method == http.MethodGet:
		h.ListGroups(w, r)
	case len(seg) == 0 && r.Method == http.MethodPost:
		h.CreateGroup(w, r)
	case len(seg) == 1 && r.Method == http.MethodPut:
		h.UpdateGroup(w, r, seg[0])
	case len(seg) == 1 && r.Method == http.MethodDelete:
		h.DeleteGroup(w, r, seg[0])
	case len(seg) == 2 && seg[1] == "items" && r.Method == http.MethodPost:
		h.AddItem(w, r, seg[0])
	case len(seg) == 3 && seg[1] == "items" && r.Method == http.MethodDelete:
		h.RemoveItem(w, r, seg[0], seg[2])
	case len(seg) == 2 && seg[1] == "candidates" && r.Method == http.MethodGet:
		h.Candidates(w, r, seg[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BuildPCHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.buildService.ListGroups(r.Context())
	if err != nil {
		writeError(w, h.logger, "ListGroups", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(groups))
}

func (h *BuildPCHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var payload service.OptionGroupRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}
	g, err := h.buildService.CreateGroup(r.Context(), payload)
	if err != nil {
		writeError(w, h.logger, "CreateGroup", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(g))
}

func (h *BuildPCHandler) UpdateGroup(w http.ResponseWriter, r *http.Request, rawID string) {
	groupID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid option group id")
		return
	}
	var payload service.OptionGroupRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}
	if err := h.buildService.UpdateGroup(r.Context(), groupID, payload); err != nil {
		writeError(w, h.logger, "UpdateGroup", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func (h *BuildPCHandler) DeleteGroup(w http.ResponseWriter, r *http.Request, rawID string) {
	groupID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid option group id")
		return
	}
	if err := h.buildService.DeleteGroup(r.Context(), groupID); err != nil {
		writeError(w, h.logger, "DeleteGroup", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// AddItem 重复添加返回 409
func (h *BuildPCHandler) AddItem(w http.ResponseWriter, r *http.Request, rawID string) {
	// 1. 参数解析和验证
	groupID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid option group id")
		return
	}
	var payload service.AddItemRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}

	// 2. 调用 Service
	item, err := h.buildService.AddItem(r.Context(), groupID, payload)
	if err != nil {
		writeError(w, h.logger, "AddItem", err)
		return
	}

	// 3. 返回响应
	writeJSON(w, http.StatusCreated, Ok(item))
}

// RemoveItem 选项不属于该组返回 404
func (h *BuildPCHandler) RemoveItem(w http.ResponseWriter, r *http.Request, rawGroupID, rawItemID string) {
	groupID, ok := parseID(rawGroupID)
	if !ok {
		writeBadRequest(w, "invalid option group id")
		return
	}
	itemID, ok := parseID(rawItemID)
	if !ok {
		writeBadRequest(w, "invalid option item id")
		return
	}
	if err := h.buildService.RemoveItem(r.Context(), groupID, itemID); err != nil {
		writeError(w, h.logger, "RemoveItem", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func (h *BuildPCHandler) Candidates(w http.ResponseWriter, r *http.Request, rawID string) {
	groupID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid option group id")
		return
	}
	products, err := h.buildService.Candidates(r.Context(), groupID)
	if err != nil {
		writeError(w, h.logger, "Candidates", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(products))
}

// PCDetail GET /api/v1/pc/{id}
func (h *BuildPCHandler) PCDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	seg := pathSegments(r.URL.Path, "/api/v1/pc")
	if len(seg) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	pcID, ok := parseID(seg[0])
	if !ok {
		writeBadRequest(w, "invalid pc id")
		return
	}
	detail, err := h.buildService.GetPCDetail(r.Context(), pcID)
	if err != nil {
		writeError(w, h.logger, "GetPCDetail", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(detail))
}
