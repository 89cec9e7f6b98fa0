package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kasuganosora/daqnet/pkg/config"
	"github.com/kasuganosora/daqnet/pkg/encoding"
	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/fitness"
	"github.com/kasuganosora/daqnet/pkg/logging"
	"github.com/kasuganosora/daqnet/pkg/monitor"
	"github.com/kasuganosora/daqnet/pkg/optimizer/genetic"
	"github.com/kasuganosora/daqnet/pkg/project"
	"github.com/kasuganosora/daqnet/pkg/workerpool"
)

// Result 一次规划的结果
type Result struct {
	RunID       string
	Seed        int64
	Best        *encoding.Chromosome
	Network     *encoding.Network
	Breakdown   *fitness.Breakdown
	Fitness     float64
	Generations int
	Converged   bool
	Canceled    bool
	Duration    time.Duration
	// Evaluations 经协程池完成的评估次数
	Evaluations int64
	// CostHistory 每代最优成本
	CostHistory []float64
	// ConvergenceHistory 每代最优与平均适应度的相对差异
	ConvergenceHistory []float64
}

// Feasible 最优网络是否可行
func (r *Result) Feasible() bool {
	return r.Breakdown != nil && r.Breakdown.Feasible()
}

// Optimizer 按配置组装评估器、协程池与遗传算法
type Optimizer struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics *monitor.MetricsCollector
}

// Option 选项
type Option func(*Optimizer)

// WithLogger 设置日志
func WithLogger(l logging.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// WithMetrics 设置监控指标
func WithMetrics(m *monitor.MetricsCollector) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// New 创建优化器，cfg 为 nil 时使用默认配置
func New(cfg *config.Config, opts ...Option) *Optimizer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := &Optimizer{
		cfg:    cfg,
		logger: logging.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// geneticConfig 把运行配置映射到遗传算法配置
func geneticConfig(oc config.OptimizerConfig) *genetic.GeneticAlgorithmConfig {
	return &genetic.GeneticAlgorithmConfig{
		PopulationSize:       oc.PopulationSize,
		MaxGenerations:       oc.MaxGenerations,
		MutationRate:         oc.MutationRate,
		CrossoverRate:        oc.CrossoverRate,
		ElitismCount:         oc.ElitismCount,
		SectionSize:          encoding.GenesPerSection,
		AdaptiveEnabled:      oc.Adaptive,
		SelectionStrategy:    oc.Selection,
		TournamentSize:       oc.TournamentSize,
		ConvergenceWindow:    oc.ConvergenceWindow,
		ConvergenceThreshold: oc.ConvergenceThreshold,
		PanicFitness:         -equipment.Unacceptable,
	}
}

// Run 为项目搜索成本最低的采集网络
func (o *Optimizer) Run(ctx context.Context, p *project.Project) (*Result, error) {
	start := time.Now()
	oc := o.cfg.Optimizer

	if oc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, oc.Timeout)
		defer cancel()
	}

	seed := oc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	evalOpts := []fitness.Option{
		fitness.WithLogger(o.logger),
		fitness.WithMetrics(o.metrics),
		fitness.WithDecodePenalty(oc.PenalizeDecodeErrors),
	}
	if o.cfg.Cache.Enabled {
		cache, err := fitness.NewCache(o.cfg.Cache.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("optimizer: fitness cache: %w", err)
		}
		defer cache.Close()
		evalOpts = append(evalOpts, fitness.WithCache(cache))
	}
	evaluator := fitness.NewEvaluator(p, evalOpts...)

	pool, err := workerpool.New(workerpool.Config{Size: o.cfg.Pool.Workers, QueueSize: o.cfg.Pool.QueueSize})
	if err != nil {
		return nil, fmt.Errorf("optimizer: worker pool: %w", err)
	}
	if err := pool.Start(); err != nil {
		return nil, fmt.Errorf("optimizer: worker pool: %w", err)
	}
	defer pool.Close()

	ga, err := genetic.NewGeneticAlgorithm[*encoding.Chromosome](geneticConfig(oc), evaluator,
		genetic.WithPool[*encoding.Chromosome](pool),
		genetic.WithLogger[*encoding.Chromosome](o.logger),
		genetic.WithMetrics[*encoding.Chromosome](o.metrics),
		genetic.WithRand[*encoding.Chromosome](rng),
	)
	if err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}

	runID := uuid.NewString()
	o.logger.Info("optimizer: run %s started: %d zones, %d genes, seed %d",
		runID, p.ZoneCount(), p.ZoneCount()*encoding.GenesPerSection, seed)

	evolved, err := ga.Run(ctx, encoding.New(p, rng))
	if err != nil {
		return nil, fmt.Errorf("optimizer: run %s: %w", runID, err)
	}

	best := evolved.Best.Chromosome
	network, err := best.Decode()
	if err != nil {
		return nil, fmt.Errorf("optimizer: run %s: best chromosome %s: %w", runID, best, err)
	}

	result := &Result{
		RunID:       runID,
		Seed:        seed,
		Best:        best,
		Network:     network,
		Breakdown:   evaluator.Breakdown(network),
		Fitness:     evolved.Best.Fitness,
		Generations: evolved.Generations,
		Converged:   evolved.Converged,
		Canceled:    evolved.Canceled,
		Duration:    time.Since(start),
		Evaluations: pool.Stats().TasksExecuted,

		ConvergenceHistory: evolved.ConvergenceHistory,
	}
	for _, f := range evolved.BestFitnessHistory {
		result.CostHistory = append(result.CostHistory, -f)
	}

	o.metrics.RecordRun()
	o.logger.Debug("optimizer: run %s scored %d candidates on %d workers", runID, result.Evaluations, o.cfg.Pool.Workers)
	if result.Feasible() {
		o.logger.Info("optimizer: run %s finished after %d generations in %v, best cost %.2f",
			runID, result.Generations, result.Duration, result.Breakdown.Total)
	} else {
		o.logger.Warn("optimizer: run %s found no feasible network after %d generations", runID, result.Generations)
	}
	return result, nil
}
