package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-borrowing/pkg/borrowing"
	"library-borrowing/pkg/models"
)

const principalKey = "principal"

// principalMiddleware resolves the X-User-Name header into a principal.
// An absent or unknown username leaves the request anonymous; whether that is
// acceptable is each handler's decision.
func principalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader("X-User-Name")
		if username == "" {
			c.Next()
			return
		}

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			c.Next()
			return
		}

		c.Set(principalKey, &borrowing.Principal{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			IsStaff:  user.IsStaff,
		})
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) *borrowing.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, ok := v.(*borrowing.Principal)
	if !ok {
		return nil
	}
	return p
}

// requireStaff gates catalog mutations: 401 for anonymous callers, 403 for
// authenticated non-staff.
func requireStaff(c *gin.Context) *borrowing.Principal {
	p := currentPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	if !p.IsStaff {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff access required"})
		return nil
	}
	return p
}
