package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
)

// SessionController reports who the current session belongs to.
type SessionController struct {
	sessions *auth.SessionManager
}

func NewSessionController(sessions *auth.SessionManager) *SessionController {
	return &SessionController{sessions: sessions}
}

// Status returns the authenticated reader's identity, or just
// authenticated:false for anonymous callers.
func (s *SessionController) Status(c *gin.Context) {
	r := c.Request
	if !s.sessions.IsAuthenticated(r) {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"id_reader":     s.sessions.GetReaderID(r),
		"username":      s.sessions.GetUsername(r),
		"role":          s.sessions.GetReaderRole(r),
	})
}
