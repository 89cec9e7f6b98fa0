package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kasuganosora/daqnet/pkg/routing"
	"github.com/kasuganosora/daqnet/pkg/workerpool"
)

// EnvConfigPath 指定配置文件路径的环境变量
const EnvConfigPath = "DAQNET_CONFIG"

// Config 应用程序配置
type Config struct {
	Log       LogConfig            `json:"log" yaml:"log"`
	Optimizer OptimizerConfig      `json:"optimizer" yaml:"optimizer"`
	Pool      PoolConfig           `json:"pool" yaml:"pool"`
	Cache     CacheConfig          `json:"cache" yaml:"cache"`
	Routing   routing.Coefficients `json:"routing" yaml:"routing"`
	Metrics   MetricsConfig        `json:"metrics" yaml:"metrics"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // json or text
	// File 为空时输出到标准输出
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// OptimizerConfig 遗传算法配置
type OptimizerConfig struct {
	PopulationSize       int           `json:"population_size" yaml:"population_size"`
	MaxGenerations       int           `json:"max_generations" yaml:"max_generations"`
	CrossoverRate        float64       `json:"crossover_rate" yaml:"crossover_rate"`
	MutationRate         float64       `json:"mutation_rate" yaml:"mutation_rate"`
	ElitismCount         int           `json:"elitism_count" yaml:"elitism_count"`
	Selection            string        `json:"selection" yaml:"selection"` // tournament or roulette
	TournamentSize       int           `json:"tournament_size" yaml:"tournament_size"`
	ConvergenceWindow    int           `json:"convergence_window" yaml:"convergence_window"`
	ConvergenceThreshold float64       `json:"convergence_threshold" yaml:"convergence_threshold"`
	Adaptive             bool          `json:"adaptive" yaml:"adaptive"`
	Seed                 int64         `json:"seed" yaml:"seed"` // 0 表示使用当前时间
	Timeout              time.Duration `json:"timeout" yaml:"timeout"`
	// PenalizeDecodeErrors 解码失败的染色体记为 -Unacceptable 而不是 0
	PenalizeDecodeErrors bool `json:"penalize_decode_errors" yaml:"penalize_decode_errors"`
}

// PoolConfig 评估协程池配置
type PoolConfig struct {
	Workers   int `json:"workers" yaml:"workers"`
	QueueSize int `json:"queue_size" yaml:"queue_size"`
}

// CacheConfig 适应度缓存配置
type CacheConfig struct {
	Enabled    bool  `json:"enabled" yaml:"enabled"`
	MaxEntries int64 `json:"max_entries" yaml:"max_entries"`
}

// MetricsConfig 监控指标配置
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Address   string `json:"address" yaml:"address"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	pool := workerpool.DefaultConfig()
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Optimizer: OptimizerConfig{
			PopulationSize:       50,
			MaxGenerations:       100,
			CrossoverRate:        0.8,
			MutationRate:         0.1,
			ElitismCount:         2,
			Selection:            "tournament",
			TournamentSize:       3,
			ConvergenceWindow:    15,
			ConvergenceThreshold: 0.001,
			Adaptive:             true,
			Timeout:              5 * time.Minute,
		},
		Pool: PoolConfig{
			Workers:   pool.Size,
			QueueSize: pool.QueueSize,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 10000,
		},
		Routing: routing.DefaultCoefficients(),
		Metrics: MetricsConfig{
			Address:   ":9090",
			Namespace: "daqnet",
		},
	}
}

// LoadConfig 从文件加载配置，.yaml/.yml 按 YAML 解析，其余按 JSON 解析
func LoadConfig(configPath string) (*Config, error) {
	// 如果没有指定配置文件，使用默认配置
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigOrDefault 尝试从环境变量与常见位置加载配置文件
func LoadConfigOrDefault() *Config {
	possiblePaths := []string{
		"config.json",
		"./config/config.json",
		"/etc/daqnet/config.json",
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if config, err := LoadConfig(envPath); err == nil {
			return config
		}
	}

	for _, path := range possiblePaths {
		if absPath, err := filepath.Abs(path); err == nil {
			if config, err := LoadConfig(absPath); err == nil {
				return config
			}
		}
	}

	return DefaultConfig()
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	opt := config.Optimizer
	if opt.PopulationSize < 2 {
		return fmt.Errorf("种群大小必须不小于2")
	}
	if opt.MaxGenerations < 1 {
		return fmt.Errorf("最大代数必须大于0")
	}
	if opt.CrossoverRate < 0 || opt.CrossoverRate > 1 {
		return fmt.Errorf("交叉率必须在 [0,1] 之间: %g", opt.CrossoverRate)
	}
	if opt.MutationRate < 0 || opt.MutationRate > 1 {
		return fmt.Errorf("变异率必须在 [0,1] 之间: %g", opt.MutationRate)
	}
	if opt.ElitismCount < 0 || opt.ElitismCount >= opt.PopulationSize {
		return fmt.Errorf("精英数量必须在 [0,%d) 之间", opt.PopulationSize)
	}
	switch opt.Selection {
	case "tournament", "roulette":
	default:
		return fmt.Errorf("未知的选择策略: %s", opt.Selection)
	}
	if opt.Selection == "tournament" && opt.TournamentSize < 1 {
		return fmt.Errorf("锦标赛规模必须大于0")
	}
	if opt.ConvergenceWindow < 0 || opt.ConvergenceThreshold < 0 {
		return fmt.Errorf("收敛窗口与阈值不能为负数")
	}
	if opt.Timeout < 0 {
		return fmt.Errorf("超时时间不能为负数")
	}

	if config.Pool.Workers < 1 {
		return fmt.Errorf("评估协程数必须大于0")
	}
	if config.Pool.QueueSize < 1 {
		return fmt.Errorf("评估队列大小必须大于0")
	}
	if config.Cache.Enabled && config.Cache.MaxEntries < 1 {
		return fmt.Errorf("缓存条目上限必须大于0")
	}
	if err := config.Routing.Validate(); err != nil {
		return err
	}
	if config.Metrics.Enabled && config.Metrics.Address == "" {
		return fmt.Errorf("启用监控时必须指定监听地址")
	}

	switch strings.ToLower(config.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("未知的日志格式: %s", config.Log.Format)
	}
	return nil
}
