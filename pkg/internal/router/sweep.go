package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/slacksweep/pkg/internal/handle"
)

// RegisterSweepRoutes 注册清理相关路由.
// 触发端点同时接受 GET 与 POST，兼容原有的任意方法触发方式.
func RegisterSweepRoutes(g *gin.RouterGroup) {
	sweepRoutes := g.Group("/sweep")
	{
		sweepRoutes.GET("", handle.RunSweep)
		sweepRoutes.POST("", handle.RunSweep)

		// 清理历史
		sweepRoutes.GET("/runs", handle.ListSweepRuns)
		sweepRoutes.GET("/runs/:id", handle.GetSweepRun)
	}
}
