package httpapi

import (
	"errors"
	"net/http"

	"banmaytinh/internal/domain"
	"banmaytinh/internal/service"

	"go.uber.org/zap"
)

const emptyCriteriaMessage = "Vui lòng chọn ít nhất một tiêu chí"

// AdvisorHandler 选购顾问 Handler
type AdvisorHandler struct {
	advisorService *service.AdvisorService
	tagService     *service.TagService
	logger         *zap.Logger
}

func NewAdvisorHandler(advisorService *service.AdvisorService, tagService *service.TagService, logger *zap.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		advisorService: advisorService,
		tagService:     tagService,
		logger:         logger,
	}
}

// Topics GET /api/v1/advisor/topics
func (h *AdvisorHandler) Topics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	catalog, err := h.tagService.TopicCatalog(r.Context())
	if err != nil {
		writeError(w, h.logger, "TopicCatalog", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(catalog))
}

// Suggest POST /api/v1/advisor/suggest
func (h *AdvisorHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	// 1. 参数解析和验证
	var req service.SuggestRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, AdvisorResponse{Success: false, Message: "invalid body"})
		return
	}

	// 2. 调用 Service
	res, err := h.advisorService.Suggest(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCriteria) {
			writeJSON(w, http.StatusBadRequest, AdvisorResponse{Success: false, Message: emptyCriteriaMessage})
			return
		}
		h.logger.Error("Suggest failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, AdvisorResponse{Success: false, Message: "internal server error"})
		return
	}

	// 3. 返回响应
	writeJSON(w, http.StatusOK, AdvisorResponse{Success: true, Tiers: res.Tiers, Thresholds: res.Thresholds})
}
