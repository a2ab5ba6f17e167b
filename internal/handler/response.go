package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// fail maps service error kinds onto status codes. Unclassified errors are
// attached to the context for the access log and reported as 500.
func fail(c *gin.Context, err error) {
	msg := "Ocorreu um erro inesperado."
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUpstream):
		status = http.StatusBadGateway
	default:
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

// readImage reads the "file" multipart field, refusing anything over maxBytes.
func readImage(c *gin.Context, maxBytes int64) ([]byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Ficheiro em falta.")
		return nil, false
	}
	if fh.Size > maxBytes {
		badRequest(c, "O ficheiro é demasiado grande.")
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Não foi possível ler o ficheiro.")
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil || int64(len(data)) > maxBytes {
		badRequest(c, "O ficheiro é demasiado grande.")
		return nil, false
	}
	return data, true
}
