package handle

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/slacksweep/pkg/configs"
	"github.com/yeisme/slacksweep/pkg/internal/model"
	"github.com/yeisme/slacksweep/pkg/internal/service"
	"github.com/yeisme/slacksweep/pkg/internal/types"
	"github.com/yeisme/slacksweep/pkg/log"
	"github.com/yeisme/slacksweep/pkg/rule"
)

// RunSweep 触发一次清理运行并以 HTML 片段返回报告.
// 参数 days / count / just_a_test 支持查询串或 JSON 请求体，查询串优先.
func RunSweep(c *gin.Context) {
	l := log.Logger()

	body, err := bindSweepBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params, err := types.ResolveSweepParams(c.Request.URL.Query(), body, &configs.GetConfig().Sweep)
	if err != nil {
		var paramErr *types.ParamError
		if errors.As(err, &paramErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": paramErr.Error()})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := service.NewSweepService(c.Request.Context())
	if err != nil {
		l.Error().Err(err).Msg("sweep service init failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})

		return
	}

	result, err := svc.Run(c.Request.Context(), params, model.SweepModeManual)
	if err != nil {
		// 密钥/列举失败统一返回笼统的 500，细节只进日志
		l.Error().Err(err).Msg("sweep run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})

		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.HTML()))
}

// bindSweepBody 解析可选的 JSON 请求体.空体不视为错误.
func bindSweepBody(c *gin.Context) (*types.SweepBody, error) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, nil
	}

	var body types.SweepBody
	if err := c.ShouldBindJSON(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, err
	}

	return &body, nil
}

// ListSweepRuns 返回最近的清理运行记录.
func ListSweepRuns(c *gin.Context) {
	l := log.Logger()

	query := types.SweepRunsQuery{Limit: 50}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	if err := rule.ValidateStruct(query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewRunsService(c.Request.Context())

	rows, err := svc.Recent(c.Request.Context(), query.Limit)
	if err != nil {
		l.Error().Err(err).Msg("list sweep runs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"total": len(rows), "runs": rows})
}

// GetSweepRun 按 run_id 查询单次运行.
func GetSweepRun(c *gin.Context) {
	svc := service.NewRunsService(c.Request.Context())

	row, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, row)
}
