// Package handle 提供请求处理器的实现，用于处理HTTP请求.
package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/slacksweep/pkg/context"
	"github.com/yeisme/slacksweep/pkg/internal/service"
	"github.com/yeisme/slacksweep/pkg/queue"
)

const timeout = 2 * time.Second

// HealthDB 数据库健康检查.
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil || dbc.DB == nil { // dbc.DB 来自于嵌入的 *gorm.DB
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": "db client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "db", "status": "ok"})
}

// HealthSlack Slack Web API 可达性检查（api.test，无需令牌）.
func HealthSlack(c *gin.Context) {
	cli, err := service.SlackClient()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "slack", "status": "unhealthy", "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := cli.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "slack", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "slack", "status": "ok"})
}

// HealthArchive 归档对象存储健康检查.
func HealthArchive(c *gin.Context) {
	s3c := ctxPkg.GetArchiveClient(c.Request.Context())
	if s3c == nil || s3c.Client == nil { // s3c.Client 为底层 *minio.Client
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "archive", "status": "unhealthy", "error": "archive client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := s3c.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "archive", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "archive", "status": "ok"})
}

// HealthMQ 消息队列健康检查：发布一条心跳消息验证链路可写.
func HealthMQ(c *gin.Context) {
	mqc := ctxPkg.GetMQClient(c.Request.Context())
	if mqc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "mq", "status": "unhealthy", "error": "mq client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	msg, err := queue.NewWatermillMessage(queue.TopicHealthPing, queue.HealthPingPayload{At: time.Now().UTC()})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "mq", "status": "unhealthy", "error": err.Error()})
		return
	}

	if err := mqc.Publish(ctx, queue.TopicHealthPing, msg); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "mq", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "ok"})
}
