package app

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/machinechat/core/internal/middleware"
	"github.com/machinechat/core/internal/modules/query"
	"github.com/machinechat/core/internal/pkg/response"
)

//go:embed index.html
var indexPage []byte

// registerRoutes mounts every HTTP endpoint onto the router.
func (a *App) registerRoutes(completer query.Completer) {
	root := a.router

	root.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	root.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	root.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
	})
	root.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	limitMW := middleware.RateLimit(a.rawRedis())

	svc := query.NewService(a.db, completer, a.logger)
	query.NewHandler(svc, a.logger).RegisterRoutes(root, limitMW)
}
