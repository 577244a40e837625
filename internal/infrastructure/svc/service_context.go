package svc

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	appcontainer "astrox/internal/application/container"
	"astrox/internal/application/port"
	"astrox/internal/application/service"
	"astrox/internal/application/usecase/report"
	"astrox/internal/domain/model"
	"astrox/internal/infrastructure/config"
	infracontainer "astrox/internal/infrastructure/container"
	"astrox/internal/interfaces/console"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// 基础设施层（第一层初始化）
	infra *infracontainer.Container

	// 输出端口
	Sink port.Sink

	// 应用业务组件（依赖基础设施）
	app    *appcontainer.Container
	report *report.Service
}

// New 创建并初始化 ServiceContext
// 这是应用启动的唯一入口点，所有依赖初始化都在这里完成
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	infra, err := infracontainer.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("infrastructure initialization failed: %w", err)
	}

	sc := &ServiceContext{
		Ctx:    ctx,
		Config: cfg,
		infra:  infra,
		Sink:   console.NewSink(),
	}

	var repo port.ChartRepository
	if store := infra.Repository(); store != nil {
		repo = store
	}
	sc.app = appcontainer.New(infra.Ephemeris(), repo, appcontainer.Options{
		ActivePoints:   cfg.Points(),
		Aspects:        cfg.Aspects,
		AxisOrb:        cfg.Chart.AxisOrb,
		TransitWorkers: cfg.Transit.Workers,
	})

	sc.report = report.NewService(report.ServiceDeps{
		Charts:    sc.app.ChartService(),
		Aspects:   sc.app.AspectService(),
		Composite: sc.app.CompositeService(),
		Transit:   sc.app.TransitService(),
		Archive:   sc.app.ArchiveService(),
		Sink:      sc.Sink,
	})

	log.Info().
		Str("mode", cfg.App.Mode).
		Str("ephemeris", cfg.Ephemeris.Driver).
		Bool("storage", repo != nil).
		Msg("✓ All components initialized")
	return sc, nil
}

// Report 获取报告用例
func (sc *ServiceContext) Report() *report.Service {
	return sc.report
}

// Subjects 将配置中的对象转换为排盘请求
func (sc *ServiceContext) Subjects() []service.ChartRequest {
	cc := sc.Config.ChartContext()
	out := make([]service.ChartRequest, 0, len(sc.Config.Subjects))
	for _, s := range sc.Config.Subjects {
		out = append(out, service.ChartRequest{
			Name:     s.Name,
			Instant:  s.Instant,
			Location: s.Location(),
			Context:  cc,
		})
	}
	return out
}

// Window 返回行运区间
func (sc *ServiceContext) Window() report.Window {
	return report.Window{
		Start: sc.Config.Transit.Start,
		End:   sc.Config.Transit.End,
		Step:  sc.Config.TransitStep(),
	}
}

// Run 按配置的模式输出报告
func (sc *ServiceContext) Run(mode string) error {
	if mode == "" {
		mode = sc.Config.App.Mode
	}
	if err := sc.Config.CheckMode(mode); err != nil {
		return err
	}
	return sc.report.Run(sc.Ctx, mode, sc.Subjects(), sc.Window())
}

// ChartContext 返回配置的排盘上下文
func (sc *ServiceContext) ChartContext() model.ChartContext {
	return sc.Config.ChartContext()
}

// Close 关闭 ServiceContext 中的所有资源
// 包括存储连接、网络连接等
// 应该在应用退出时调用
func (sc *ServiceContext) Close() error {
	return sc.infra.Close()
}
