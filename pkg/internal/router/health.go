package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/slacksweep/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("/db", handle.HealthDB)
		healthRoutes.GET("/slack", handle.HealthSlack)
		healthRoutes.GET("/archive", handle.HealthArchive)
		healthRoutes.GET("/mq", handle.HealthMQ)
	}
}
