package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artmatch/internal/service"
)

type MatchHandler struct {
	logger    *zap.Logger
	matchServ *service.MatchService
}

func NewMatchHandler(logger *zap.Logger, matchServ *service.MatchService) *MatchHandler {
	return &MatchHandler{logger: logger, matchServ: matchServ}
}

// ListMatches maneja GET /matches?limit=N.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	list, err := h.matchServ.Rank(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		writeServiceError(c, h.logger, "rank matches", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
