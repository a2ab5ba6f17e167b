package handler

import (
	"confrarias/internal/middleware"
	"confrarias/internal/model"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
)

type DiscoveryHandler struct {
	svc   *service.DiscoveryService
	seals *service.SealService
}

type SubmitDiscoveryReq struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Category    string             `json:"category" binding:"required"`
	Images      []service.ImageRef `json:"images"`
}

func NewDiscoveryHandler(svc *service.DiscoveryService, seals *service.SealService) *DiscoveryHandler {
	return &DiscoveryHandler{svc: svc, seals: seals}
}

// List is the public feed: approved discoveries only.
func (h *DiscoveryHandler) List(c *gin.Context) {
	h.list(c, model.StatusAprovado)
}

// AdminList takes an optional ?status= filter.
func (h *DiscoveryHandler) AdminList(c *gin.Context) {
	h.list(c, model.ModerationStatus(c.Query("status")))
}

func (h *DiscoveryHandler) list(c *gin.Context, status model.ModerationStatus) {
	page, err := h.svc.List(c.Request.Context(), middleware.CallerFrom(c), status, c.Query("cursor"), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

func (h *DiscoveryHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, d)
}

func (h *DiscoveryHandler) Submit(c *gin.Context) {
	var req SubmitDiscoveryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	d, err := h.svc.Submit(c.Request.Context(), middleware.CallerFrom(c), service.DiscoveryInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Images:      req.Images,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, d)
}

func (h *DiscoveryHandler) ToggleSeal(c *gin.Context) {
	res, err := h.seals.Toggle(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}
