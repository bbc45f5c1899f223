package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteloft/front-door-backend/internal/projects/domain"
	"github.com/siteloft/front-door-backend/internal/projects/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) create(c *gin.Context) {
	var req service.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": ve.Reason})
		case domain.IsConflict(err):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
		default:
			log.Printf("[projects] create failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) customDomainStatus(c *gin.Context) {
	subdomain := c.Param("subdomain")

	status, err := h.svc.CustomDomainStatus(c.Request.Context(), subdomain)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		log.Printf("[projects] custom domain status for %q failed: %v", subdomain, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, status)
}
