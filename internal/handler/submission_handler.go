package handler

import (
	"confrarias/internal/middleware"
	"confrarias/internal/model"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
}

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// Submit is the public confraria signup form.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req service.SubmissionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	sub, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"id": sub.ID, "status": sub.Status})
}

func (h *SubmissionHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.CallerFrom(c),
		model.ModerationStatus(c.Query("status")), queryInt(c, "offset"), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, err := h.svc.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, sub)
}
