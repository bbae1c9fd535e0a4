// Package storage 聚合清理服务用到的存储资源：历史数据库、归档对象存储、消息队列.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	dbClient := mgr.GetDBClient()
//	archiveClient := mgr.GetArchiveClient()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/slacksweep/pkg/configs"
	dbc "github.com/yeisme/slacksweep/pkg/internal/storage/db"
	mqc "github.com/yeisme/slacksweep/pkg/internal/storage/mq"
	s3c "github.com/yeisme/slacksweep/pkg/internal/storage/s3"
	nlog "github.com/yeisme/slacksweep/pkg/log"
)

// Manager 聚合所有存储资源.
// Archive 与 MQ 由配置开关控制，未启用时保持 nil，调用方需判空.
type Manager struct {
	DB      *dbc.Client
	Archive *s3c.Client
	MQ      *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// DB 清理历史，始终开启
		if dbi, e := dbc.New(ctx, &cfg.DB); e != nil {
			err = e

			return
		} else {
			m.DB = dbi
		}

		// 归档存储，可选
		if cfg.Archive.Enabled {
			if s3i, e := s3c.New(ctx, &cfg.Archive); e != nil {
				err = e

				return
			} else {
				m.Archive = s3i
			}
		}

		// MQ 事件广播，可选
		if cfg.MQ.Enabled {
			if mqi, e := mqc.New(ctx, &cfg.MQ); e != nil {
				err = e

				return
			} else {
				m.MQ = mqi
			}
		}

		mgr = m

		nlog.Logger().Info().
			Bool("archive", m.Archive != nil).
			Bool("mq", m.MQ != nil).
			Msg("storage manager initialized")
	})

	return mgr, err
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetArchiveClient 获取归档存储客户端，未启用时返回 nil.
func (m *Manager) GetArchiveClient() *s3c.Client {
	return m.Archive
}

// GetMQClient 获取 MQ 客户端，未启用时返回 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 依次关闭持有的资源.
func (m *Manager) Close() error {
	var err error

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	if m.Archive != nil {
		if e := m.Archive.Close(); e != nil {
			err = e
		}
	}

	if m.DB != nil {
		if sqlDB, e := m.DB.DB.DB(); e == nil {
			if e := sqlDB.Close(); e != nil {
				err = e
			}
		}
	}

	return err
}
