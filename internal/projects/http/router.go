package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, createMiddleware ...gin.HandlerFunc) {
	rg.POST("", append(createMiddleware, h.create)...)
	rg.GET("/:subdomain/custom-domain-status", h.customDomainStatus)
}
