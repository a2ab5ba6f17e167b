package handler

import (
	"confrarias/internal/middleware"
	"confrarias/internal/model"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	svc *service.ModerationService
}

type SetStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func NewModerationHandler(svc *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

// SetStatus returns the handler for PUT /api/admin/<kind>/:id/status.
func (h *ModerationHandler) SetStatus(target model.ModerationTarget) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetStatusReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Pedido inválido.")
			return
		}
		status := model.ModerationStatus(req.Status)
		if err := h.svc.SetStatus(c.Request.Context(), middleware.CallerFrom(c), target, c.Param("id"), status); err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"id": c.Param("id"), "status": status})
	}
}

func (h *ModerationHandler) ListActions(c *gin.Context) {
	list, err := h.svc.ListActions(c.Request.Context(), middleware.CallerFrom(c),
		model.ModerationTarget(c.Query("target")), c.Query("id"), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}
