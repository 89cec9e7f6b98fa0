package genetic

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/kasuganosora/daqnet/pkg/logging"
	"github.com/kasuganosora/daqnet/pkg/monitor"
	"github.com/kasuganosora/daqnet/pkg/workerpool"
)

// GeneticAlgorithm 遗传算法引擎
// 随机数只在调用 Run 的协程中使用，评估通过协程池并行执行
type GeneticAlgorithm[C Chromosome[C]] struct {
	config    *GeneticAlgorithmConfig
	evaluator Evaluator[C]

	// 算子
	selector  SelectionOperator[C]
	crossover CrossoverOperator[C]
	mutator   MutationOperator[C]

	pool    *workerpool.Pool
	logger  logging.Logger
	metrics *monitor.MetricsCollector
	rng     *rand.Rand

	// 当前（可能经自适应调整的）算子概率
	mutationRate  float64
	crossoverRate float64

	// 收敛状态跟踪
	convergenceHistory []float64 // 历史收敛指标
	bestFitnessHistory []float64 // 历史最优适应度
	avgFitnessHistory  []float64 // 历史平均适应度
	windowSize         int       // 变化率滑动窗口大小
}

// Option 引擎选项
type Option[C Chromosome[C]] func(*GeneticAlgorithm[C])

// WithPool 通过协程池并行评估
func WithPool[C Chromosome[C]](p *workerpool.Pool) Option[C] {
	return func(ga *GeneticAlgorithm[C]) { ga.pool = p }
}

// WithLogger 设置日志
func WithLogger[C Chromosome[C]](l logging.Logger) Option[C] {
	return func(ga *GeneticAlgorithm[C]) { ga.logger = l }
}

// WithMetrics 设置监控指标
func WithMetrics[C Chromosome[C]](m *monitor.MetricsCollector) Option[C] {
	return func(ga *GeneticAlgorithm[C]) { ga.metrics = m }
}

// WithRand 指定随机数源
func WithRand[C Chromosome[C]](rng *rand.Rand) Option[C] {
	return func(ga *GeneticAlgorithm[C]) { ga.rng = rng }
}

// NewGeneticAlgorithm 创建遗传算法实例
func NewGeneticAlgorithm[C Chromosome[C]](config *GeneticAlgorithmConfig, evaluator Evaluator[C], opts ...Option[C]) (*GeneticAlgorithm[C], error) {
	if config == nil {
		config = DefaultGeneticAlgorithmConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ga := &GeneticAlgorithm[C]{
		config:        config,
		evaluator:     evaluator,
		logger:        logging.NewNoOpLogger(),
		mutationRate:  config.MutationRate,
		crossoverRate: config.CrossoverRate,
		windowSize:    5,
	}
	for _, opt := range opts {
		opt(ga)
	}
	if ga.rng == nil {
		ga.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	ga.selector = NewDefaultSelectionOperator[C](config.PopulationSize, config.SelectionStrategy, config.TournamentSize, ga.rng)
	ga.crossover = NewSectionCrossoverOperator[C](config.SectionSize, ga.rng)
	ga.mutator = NewRegenerationMutationOperator[C](ga.rng)
	return ga, nil
}

// Rates 当前变异率与交叉率
func (ga *GeneticAlgorithm[C]) Rates() (mutation, crossover float64) {
	return ga.mutationRate, ga.crossoverRate
}

// InitializePopulation 由模板生成随机种群并评估
func (ga *GeneticAlgorithm[C]) InitializePopulation(ctx context.Context, template C) (*Population[C], error) {
	pop := &Population[C]{
		Individuals: make([]*Individual[C], 0, ga.config.PopulationSize),
	}
	for i := 0; i < ga.config.PopulationSize; i++ {
		pop.Individuals = append(pop.Individuals, &Individual[C]{Chromosome: template.CreateNew()})
	}

	if err := ga.evaluate(ctx, pop.Individuals); err != nil {
		return nil, err
	}
	return pop, nil
}

// evaluate 并行计算个体适应度，等待全部完成
func (ga *GeneticAlgorithm[C]) evaluate(ctx context.Context, inds []*Individual[C]) error {
	score := func(ctx context.Context, i int) error {
		inds[i].Fitness = ga.score(inds[i].Chromosome)
		return nil
	}

	if ga.pool == nil {
		for i := range inds {
			if err := ctx.Err(); err != nil {
				return err
			}
			_ = score(ctx, i)
		}
		return nil
	}

	if err := ga.pool.ForEach(ctx, len(inds), score); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// score 评估单个染色体，panic 记为 PanicFitness
func (ga *GeneticAlgorithm[C]) score(c C) (fitness float64) {
	defer func() {
		if r := recover(); r != nil {
			ga.logger.Error("genetic: evaluation panicked: %v", r)
			fitness = ga.config.PanicFitness
		}
	}()
	return ga.evaluator.Evaluate(c)
}

// spread (best - avg) / |best|
func spread(best, avg float64) float64 {
	if best == 0 {
		if avg == 0 {
			return 0
		}
		return math.Abs(avg)
	}
	return (best - avg) / math.Abs(best)
}

// Stagnated 最优适应度在收敛窗口内的相对提升不超过阈值
func (ga *GeneticAlgorithm[C]) Stagnated() bool {
	window := ga.config.ConvergenceWindow
	h := ga.bestFitnessHistory
	if window <= 0 || len(h) <= window {
		return false
	}
	last := h[len(h)-1]
	gain := last - h[len(h)-1-window]
	return gain <= ga.config.ConvergenceThreshold*math.Max(math.Abs(last), 1)
}

// CalculateConvergenceMetrics 计算收敛指标（使用滑动窗口）
// 返回收敛指标、平均适应度变化率和最优适应度
func (ga *GeneticAlgorithm[C]) CalculateConvergenceMetrics(pop *Population[C]) (float64, float64, float64) {
	if len(pop.Individuals) == 0 {
		return 0, 0, 0
	}

	bestFitness := pop.GetBest().Fitness
	avgFitness := pop.GetAverageFitness()

	ga.bestFitnessHistory = append(ga.bestFitnessHistory, bestFitness)
	ga.avgFitnessHistory = append(ga.avgFitnessHistory, avgFitness)

	windowSize := min(ga.windowSize, len(ga.avgFitnessHistory))

	var avgChangeRate float64
	if windowSize >= 2 {
		changes := 0.0
		for i := windowSize - 1; i > 0; i-- {
			curr := ga.avgFitnessHistory[len(ga.avgFitnessHistory)-i]
			prev := ga.avgFitnessHistory[len(ga.avgFitnessHistory)-i-1]
			if prev != 0 {
				changes += (curr - prev) / math.Abs(prev)
			}
		}
		avgChangeRate = changes / float64(windowSize-1)
	}

	convergenceMetric := spread(bestFitness, avgFitness)
	ga.convergenceHistory = append(ga.convergenceHistory, convergenceMetric)

	return convergenceMetric, avgChangeRate, bestFitness
}

// AdaptParameters 根据收敛状态自适应调整参数
func (ga *GeneticAlgorithm[C]) AdaptParameters(convergenceMetric, changeRate float64) {
	if !ga.config.AdaptiveEnabled {
		return
	}

	baseMutation, baseCrossover := ga.config.MutationRate, ga.config.CrossoverRate
	switch {
	case convergenceMetric < 0.01 && changeRate < 0.001:
		// 种群已收敛且停滞：提高变异率、降低交叉率，增加探索
		ga.mutationRate = math.Min(baseMutation*2, 1)
		ga.crossoverRate = math.Max(baseCrossover-0.1, 0)
	case convergenceMetric > 0.1:
		// 多样性很大：加速收敛
		ga.mutationRate = baseMutation / 2
		ga.crossoverRate = math.Min(baseCrossover+0.1, 1)
	default:
		ga.mutationRate = baseMutation
		ga.crossoverRate = baseCrossover
	}
}

// reset 清空上一次运行的状态
func (ga *GeneticAlgorithm[C]) reset() {
	ga.mutationRate = ga.config.MutationRate
	ga.crossoverRate = ga.config.CrossoverRate
	ga.convergenceHistory = nil
	ga.bestFitnessHistory = nil
	ga.avgFitnessHistory = nil
}

// breed 由当前种群繁殖下一代，精英原样保留
func (ga *GeneticAlgorithm[C]) breed(pop *Population[C]) (next []*Individual[C], children []*Individual[C]) {
	eliteCount := ga.config.ElitismCount
	selected := ga.selector.Select(pop, eliteCount)

	next = make([]*Individual[C], 0, ga.config.PopulationSize)
	next = append(next, selected.Individuals[:eliteCount]...)

	for len(next) < ga.config.PopulationSize {
		parent1 := selected.Individuals[ga.rng.Intn(len(selected.Individuals))]
		parent2 := selected.Individuals[ga.rng.Intn(len(selected.Individuals))]

		c1, c2 := ga.crossover.Crossover(parent1.Chromosome, parent2.Chromosome, ga.crossoverRate)
		for _, c := range []C{c1, c2} {
			if len(next) == ga.config.PopulationSize {
				break
			}
			child := &Individual[C]{Chromosome: ga.mutator.Mutate(c, ga.mutationRate)}
			next = append(next, child)
			children = append(children, child)
		}
	}
	return next, children
}

// Run 运行遗传算法
// context 取消时返回已完成代中的最优个体，Canceled 置为 true
func (ga *GeneticAlgorithm[C]) Run(ctx context.Context, template C) (*Result[C], error) {
	ga.reset()

	pop, err := ga.InitializePopulation(ctx, template)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	result := &Result[C]{}
	for generation := 0; generation < ga.config.MaxGenerations; generation++ {
		// 检查上下文取消
		if ctx.Err() != nil {
			ga.logger.Info("genetic: canceled at generation %d", generation)
			result.Canceled = true
			break
		}

		convergenceMetric, changeRate, best := ga.CalculateConvergenceMetrics(pop)
		ga.metrics.RecordGeneration(generation, -best)

		if generation >= ga.windowSize {
			ga.AdaptParameters(convergenceMetric, changeRate)
		}

		if ga.Stagnated() {
			ga.logger.Info("genetic: converged at generation %d (best %.4f, metric %.4f)", generation, best, convergenceMetric)
			result.Converged = true
			break
		}

		if generation%10 == 0 {
			ga.debugf("genetic: generation %d, best %.4f, mutation %.3f, crossover %.3f",
				generation, best, ga.mutationRate, ga.crossoverRate)
		}

		next, children := ga.breed(pop)
		if err := ga.evaluate(ctx, children); err != nil {
			if ctx.Err() == nil {
				return nil, err
			}
			ga.logger.Info("genetic: canceled while scoring generation %d", generation+1)
			result.Canceled = true
			break
		}
		pop = &Population[C]{Individuals: next}
		result.Generations++
	}

	// 最后一代的统计
	if len(ga.bestFitnessHistory) < result.Generations+1 {
		_, _, best := ga.CalculateConvergenceMetrics(pop)
		ga.metrics.RecordGeneration(result.Generations, -best)
	}

	result.Best = pop.GetBest()
	result.BestFitnessHistory = ga.bestFitnessHistory
	result.AvgFitnessHistory = ga.avgFitnessHistory
	result.ConvergenceHistory = ga.convergenceHistory
	return result, nil
}
