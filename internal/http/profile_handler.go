package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artmatch/internal/domain"
	"artmatch/internal/service"
)

// ProfileHandler expone el quiz y el perfil del usuario autenticado.
type ProfileHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
}

func NewProfileHandler(logger *zap.Logger, profileServ *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{logger: logger, profileServ: profileServ}
}

type quizRequest struct {
	Interests    []string              `json:"interests" binding:"omitempty,max=50,dive,max=80"`
	Genres       []string              `json:"genres" binding:"omitempty,max=50,dive,max=80"`
	Values       []string              `json:"values" binding:"omitempty,max=50,dive,max=80"`
	Availability []string              `json:"availability" binding:"omitempty,max=168,dive,slot"`
	Location     string                `json:"location" binding:"max=200"`
	Responses    []domain.QuizResponse `json:"responses" binding:"omitempty,max=50"`
}

// SubmitQuiz maneja POST /quiz.
func (h *ProfileHandler) SubmitQuiz(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid quiz request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.profileServ.SubmitQuiz(c.Request.Context(), claims.UserID, domain.QuizAnswers{
		Interests:    req.Interests,
		Genres:       req.Genres,
		Values:       req.Values,
		Availability: req.Availability,
		Location:     req.Location,
		Responses:    req.Responses,
	})
	if err != nil {
		writeServiceError(c, h.logger, "submit quiz", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Me maneja GET /me.
func (h *ProfileHandler) Me(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	view, err := h.profileServ.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		writeServiceError(c, h.logger, "load me", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
