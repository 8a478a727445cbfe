package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// TenantHeader carries the caller's tenant scope on every request.
	TenantHeader = "X-TENANT-ID"

	tenantKey = "tenant_id"
)

// Tenant rejects requests without a tenant header and stores the id on the
// gin context for handlers.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(TenantHeader)
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "BAD_REQUEST",
					"message": "missing " + TenantHeader + " header",
				},
			})
			return
		}
		c.Set(tenantKey, tenantID)
		c.Next()
	}
}

// TenantID returns the tenant scope stored by the Tenant middleware.
func TenantID(c *gin.Context) string {
	return c.GetString(tenantKey)
}
