package handler

import (
	"net/http"

	"confrarias/internal/middleware"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc  *service.PostService
	tags *service.TagService
}

func NewPostHandler(svc *service.PostService, tags *service.TagService) *PostHandler {
	return &PostHandler{svc: svc, tags: tags}
}

// ListByConfraria pages with ?cursor= from the previous response's nextCursor.
func (h *PostHandler) ListByConfraria(c *gin.Context) {
	page, err := h.svc.ListPosts(c.Request.Context(), c.Param("id"), c.Query("cursor"), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.svc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, post)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req service.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	post, err := h.svc.CreatePost(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	var req service.PostUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	post, err := h.svc.UpdatePost(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// SuggestTags always answers 200: a failed suggestion only carries a message.
func (h *PostHandler) SuggestTags(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	tags, msg := h.tags.SuggestTags(c.Request.Context(), req.Content)
	if msg != "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": msg, "data": gin.H{"tags": tags}})
		return
	}
	ok(c, gin.H{"tags": tags})
}
