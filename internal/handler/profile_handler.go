package handler

import (
	"confrarias/internal/middleware"
	"confrarias/internal/model"
	"confrarias/internal/repository/mysql"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	svc       *service.UserService
	maxUpload int64
}

func NewProfileHandler(svc *service.UserService, maxUpload int64) *ProfileHandler {
	return &ProfileHandler{svc: svc, maxUpload: maxUpload}
}

func (h *ProfileHandler) ListConfrarias(c *gin.Context) {
	list, err := h.svc.ListConfrarias(c.Request.Context(), queryInt(c, "offset"), queryInt(c, "limit"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.svc.GetProfile(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	ctx := c.Request.Context()
	caller := middleware.CallerFrom(c)
	if err := h.svc.UpdateProfile(ctx, caller, c.Param("id"), req); err != nil {
		fail(c, err)
		return
	}
	user, err := h.svc.GetProfile(ctx, caller, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (h *ProfileHandler) AddGalleryImage(c *gin.Context) {
	var req service.ImageRef
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	img, err := h.svc.AddGalleryImage(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, img)
}

func (h *ProfileHandler) RemoveGalleryImage(c *gin.Context) {
	err := h.svc.RemoveGalleryImage(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), c.Param("imageId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ProfileHandler) SetBanner(c *gin.Context) {
	data, valid := readImage(c, h.maxUpload)
	if !valid {
		return
	}
	url, err := h.svc.SetBanner(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), data)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"url": url})
}

func (h *ProfileHandler) SetLogo(c *gin.Context) {
	data, valid := readImage(c, h.maxUpload)
	if !valid {
		return
	}
	url, err := h.svc.SetLogo(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), data)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"url": url})
}

func (h *ProfileHandler) ListUsers(c *gin.Context) {
	list, err := h.svc.ListUsers(c.Request.Context(), middleware.CallerFrom(c), mysql.UserFilter{
		Role:   model.Role(c.Query("role")),
		Status: model.UserStatus(c.Query("status")),
		Offset: queryInt(c, "offset"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *ProfileHandler) SetUserStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Pedido inválido.")
		return
	}
	err := h.svc.SetUserStatus(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), model.UserStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id"), "status": req.Status})
}
