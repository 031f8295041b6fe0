package http

import (
	"github.com/gin-gonic/gin"
	graphqlgo "github.com/graphql-go/graphql"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/database"
)

// RouterConfig carries the router's dependencies, improving testability and
// reducing parameter count.
type RouterConfig struct {
	Database       *database.Database
	Schema         graphqlgo.Schema
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
		router.GET("/session", NewSessionController(cfg.SessionManager).Status)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	if len(cfg.CSRFSecret) > 0 {
		router.GET("/csrf", CSRFToken)
	}

	gql := NewGraphQLController(cfg.Schema)
	router.POST("/graphql", gql.Execute)

	return router
}
