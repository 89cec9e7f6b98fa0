package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kasuganosora/daqnet/pkg/config"
	"github.com/kasuganosora/daqnet/pkg/loader"
	"github.com/kasuganosora/daqnet/pkg/logging"
	"github.com/kasuganosora/daqnet/pkg/monitor"
	"github.com/kasuganosora/daqnet/pkg/optimizer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("daqnet", flag.ContinueOnError)
	configPath := fs.String("config", "", "配置文件路径 (json/yaml)，为空时按默认位置查找")
	facilityPath := fs.String("facility", "", "厂区描述文档 (json/yaml)")
	catalogPath := fs.String("catalog", "", "设备目录 (xlsx/json/yaml)，覆盖文档中的目录")
	seed := fs.Int64("seed", 0, "随机种子，0 表示使用配置或当前时间")
	metricsAddr := fs.String("metrics-addr", "", "Prometheus 指标监听地址，覆盖配置")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *facilityPath == "" {
		fmt.Fprintln(os.Stderr, "daqnet: -facility is required")
		fs.Usage()
		return 2
	}

	// 加载配置
	cfg := config.LoadConfigOrDefault()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "daqnet: %v\n", err)
			return 1
		}
	}
	if *seed != 0 {
		cfg.Optimizer.Seed = *seed
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = *metricsAddr
	}

	logger := logging.New(cfg.Log)
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer z.Sync()
	}

	p, err := loader.Load(*facilityPath, *catalogPath, cfg.Routing)
	if err != nil {
		logger.Error("加载厂区失败: %v", err)
		return 1
	}
	logger.Info("加载厂区: %dx%d, %d 个区域, %d 个测控区", p.Width, p.Height, len(p.Regions), p.ZoneCount())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []optimizer.Option{optimizer.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		metrics := monitor.NewMetricsCollector(cfg.Metrics.Namespace)
		opts = append(opts, optimizer.WithMetrics(metrics))

		srv := &http.Server{Addr: cfg.Metrics.Address, Handler: newRouter(metrics), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("指标服务退出: %v", err)
			}
		}()
		defer srv.Close()
		logger.Info("指标服务: %s/metrics", cfg.Metrics.Address)
	}

	res, err := optimizer.New(cfg, opts...).Run(ctx, p)
	if err != nil {
		logger.Error("规划失败: %v", err)
		return 1
	}

	if err := writeReport(os.Stdout, res); err != nil {
		logger.Error("输出结果失败: %v", err)
		return 1
	}
	if !res.Feasible() {
		return 3
	}
	return 0
}
