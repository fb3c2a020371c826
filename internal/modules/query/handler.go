package query

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/machinechat/core/internal/middleware"
	"github.com/machinechat/core/internal/pkg/pagination"
	"github.com/machinechat/core/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, limitMW gin.HandlerFunc) {
	r.POST("/get-answer", limitMW, h.getAnswer)
	r.GET("/history", h.listHistory)
}

// POST /get-answer
func (h *Handler) getAnswer(c *gin.Context) {
	var dto getAnswerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Query is missing")
		return
	}
	if strings.TrimSpace(dto.Query) == "" {
		response.BadRequest(c, "Query is missing")
		return
	}

	ans, err := h.svc.Answer(c.Request.Context(), dto.Query, middleware.RequestID(c))
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			response.BadGateway(c, "answer generation is temporarily unavailable")
			return
		}
		h.log.Error("answer request failed", zap.Error(err), zap.String("request_id", middleware.RequestID(c)))
		response.InternalError(c)
		return
	}

	response.OK(c, ans)
}

// GET /history
func (h *Handler) listHistory(c *gin.Context) {
	q := pagination.FromContext(c)

	recs, meta, err := h.svc.History(c.Request.Context(), q)
	if err != nil {
		h.log.Error("history listing failed", zap.Error(err), zap.String("request_id", middleware.RequestID(c)))
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"data": recs, "pagination": meta})
}
