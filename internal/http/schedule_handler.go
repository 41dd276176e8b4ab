package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artmatch/internal/service"
)

// ScheduleHandler agrupa el catalogo de eventos y las citas.
type ScheduleHandler struct {
	logger       *zap.Logger
	scheduleServ *service.ScheduleService
	catalog      *service.EventCatalog
}

func NewScheduleHandler(logger *zap.Logger, scheduleServ *service.ScheduleService, catalog *service.EventCatalog) *ScheduleHandler {
	return &ScheduleHandler{
		logger:       logger,
		scheduleServ: scheduleServ,
		catalog:      catalog,
	}
}

// ListEvents maneja GET /events.
func (h *ScheduleHandler) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.catalog.Events()})
}

// CreateSchedule maneja POST /schedule.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req struct {
		PartnerUserID string `json:"partner_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid schedule request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing partner_user_id"})
		return
	}

	res, err := h.scheduleServ.Schedule(c.Request.Context(), claims.UserID, req.PartnerUserID)
	if err != nil {
		writeServiceError(c, h.logger, "schedule", err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// ListSchedules maneja GET /schedule.
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	items, err := h.scheduleServ.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		writeServiceError(c, h.logger, "list schedules", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": items})
}

// GetWithPartner maneja GET /schedule/with/:partnerId.
func (h *ScheduleHandler) GetWithPartner(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	res, err := h.scheduleServ.GetWithPartner(c.Request.Context(), claims.UserID, c.Param("partnerId"))
	if err != nil {
		writeServiceError(c, h.logger, "get schedule with partner", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteSchedule maneja DELETE /schedule/:id.
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.scheduleServ.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		writeServiceError(c, h.logger, "delete schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
