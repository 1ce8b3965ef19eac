package handlers

import (
	"net/http"
	"strconv"

	"bux-api/internal/models"
	"bux-api/internal/services"
)

type AuditLogHandler struct {
	auditLogService services.AuditLogService
}

func NewAuditLogHandler(auditLogService services.AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{auditLogService: auditLogService}
}

type auditLogPage struct {
	Logs     []models.AuditLog `json:"logs"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// List godoc
// @Summary List audit log entries
// @Description Returns administrator deletions, newest first
// @Tags audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Entries per page" default(20)
// @Success 200 {object} auditLogPage
// @Router /api/audit [get]
func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = services.DefaultAuditPageSize
	}
	if pageSize > services.MaxAuditPageSize {
		pageSize = services.MaxAuditPageSize
	}

	logs, total, err := h.auditLogService.List(r.Context(), page, pageSize)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	respondWithJSON(w, http.StatusOK, auditLogPage{
		Logs:     logs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
