package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	mxcfg "mockx/internal/config"
	"mockx/internal/gateway"
	"mockx/internal/logger"
	"mockx/internal/replay"
	paperhttp "mockx/internal/transport/http/paper"
)

// App 负责应用级编排：加载配置→构建回放引擎与 gateway→启动 HTTP 服务。
type App struct {
	cfg    *mxcfg.Config
	engine *replay.Engine
	gw     *gateway.Gateway
	server *paperhttp.Server
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *mxcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildApp(cfg)
}

// Gateway exposes the constructed facade (for tests and embedding).
func (a *App) Gateway() *gateway.Gateway {
	if a == nil {
		return nil
	}
	return a.gw
}

// Engine exposes the replay engine when one was built (nil in prod mode).
func (a *App) Engine() *replay.Engine {
	if a == nil {
		return nil
	}
	return a.engine
}

// Run 启动 HTTP 服务，阻塞直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.server != nil {
		group.Go(func() error {
			logger.Infof("paper HTTP 服务启动于 %s", a.cfg.App.HTTPAddr)
			if err := a.server.Start(ctx); err != nil {
				return fmt.Errorf("paper http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		if a.gw != nil {
			return a.gw.Close()
		}
		return nil
	})

	return group.Wait()
}
