package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CSRFToken hands the current CSRF token to clients, which must echo it in
// the X-CSRF-Token header on POST /graphql when CSRF protection is enabled.
func CSRFToken(c *gin.Context) {
	token := c.GetString("csrf_token")
	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}
