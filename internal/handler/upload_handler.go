package handler

import (
	"confrarias/internal/middleware"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	svc       *service.UploadService
	maxUpload int64
}

func NewUploadHandler(svc *service.UploadService, maxUpload int64) *UploadHandler {
	return &UploadHandler{svc: svc, maxUpload: maxUpload}
}

// Upload takes a multipart "file" and an optional "folder" form field.
func (h *UploadHandler) Upload(c *gin.Context) {
	data, valid := readImage(c, h.maxUpload)
	if !valid {
		return
	}
	url, err := h.svc.UploadImage(c.Request.Context(), middleware.CallerFrom(c), c.PostForm("folder"), data)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"url": url})
}
