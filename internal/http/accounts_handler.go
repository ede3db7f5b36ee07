package httpapi

import (
	"net/http"

	"banmaytinh/internal/domain"
	"banmaytinh/internal/service"

	"go.uber.org/zap"
)

const (
	usersPrefix  = "/admin/api/v1/users"
	adminsPrefix = "/admin/api/v1/admins"
)

// AccountsHandler 后台用户 / 管理员账号维护
type AccountsHandler struct {
	accountService *service.AccountService
	logger         *zap.Logger
}

func NewAccountsHandler(accountService *service.AccountService, logger *zap.Logger) *AccountsHandler {
	return &AccountsHandler{accountService: accountService, logger: logger}
}

// Users /admin/api/v1/users/...
func (h *AccountsHandler) Users(w http.ResponseWriter, r *http.Request) {
	seg := pathSegments(r.URL.Path, usersPrefix)
	if len(seg) == 2 && seg[1] == "orders" && r.Method == http.MethodGet {
		h.userOrders(w, r, seg[0])
		return
	}
	h.serve(w, r, domain.RoleUser, seg)
}

// Admins /admin/api/v1/admins/...
func (h *AccountsHandler) Admins(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.RoleAdmin, pathSegments(r.URL.Path, adminsPrefix))
}

func (h *AccountsHandler) serve(w http.ResponseWriter, r *http.Request, role domain.Role, seg []string) {
	switch {
	case len(seg) == 0 && r.Method == http.MethodGet:
		users, err := h.accountService.ListAccounts(r.Context(), role)
		if err != nil {
			writeError(w, h.logger, "ListAccounts", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(users))
	case len(seg) == 0 && r.Method == http.MethodPost:
		var payload service.AccountRequest
		if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
			writeBadRequest(w, "invalid body")
			return
		}
		u, err := h.accountService.CreateAccount(r.Context(), role, payload)
		if err != nil {
			writeError(w, h.logger, "CreateAccount", err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(u))
	case len(seg) == 1 && r.Method == http.MethodGet:
		userID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid user id")
			return
		}
		u, err := h.accountService.GetAccount(r.Context(), role, userID)
		if err != nil {
			writeError(w, h.logger, "GetAccount", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(u))
	case len(seg) == 1 && r.Method == http.MethodPut:
		h.updateAccount(w, r, role, seg[0])
	case len(seg) == 1 && r.Method == http.MethodDelete:
		h.deleteAccount(w, r, role, seg[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AccountsHandler) updateAccount(w http.ResponseWriter, r *http.Request, role domain.Role, rawID string) {
	userID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}
	var payload service.AccountRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}
	sess, _ := SessionFromContext(r.Context())
	u, err := h.accountService.UpdateAccount(r.Context(), sess.UserID, role, userID, payload)
	if err != nil {
		writeError(w, h.logger, "UpdateAccount", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(u))
}

func (h *AccountsHandler) deleteAccount(w http.ResponseWriter, r *http.Request, role domain.Role, rawID string) {
	userID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}
	sess, _ := SessionFromContext(r.Context())
	if err := h.accountService.DeleteAccount(r.Context(), sess.UserID, role, userID); err != nil {
		writeError(w, h.logger, "DeleteAccount", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func (h *AccountsHandler) userOrders(w http.ResponseWriter, r *http.Request, rawID string) {
	userID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}
	orders, err := h.accountService.UserOrders(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, "UserOrders", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(orders))
}
