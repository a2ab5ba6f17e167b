package handler

import (
	"confrarias/internal/middleware"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	svc *service.EventService
}

func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ListByConfraria shows upcoming events unless ?all=true.
func (h *EventHandler) ListByConfraria(c *gin.Context) {
	list, err := h.svc.ListByConfraria(c.Request.Context(), c.Param("id"), c.Query("all") != "true", queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *EventHandler) Upcoming(c *gin.Context) {
	list, err := h.svc.Upcoming(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req service.EventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	ev, err := h.svc.Create(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, ev)
}

func (h *EventHandler) Update(c *gin.Context) {
	var req service.EventUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	ev, err := h.svc.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, ev)
}

func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
