package genetic

import "sort"

// Chromosome 引擎操作的染色体
// GenerateGene 返回第 i 个基因的一个合法随机取值，CreateNew 生成同一问题的新随机染色体
type Chromosome[C any] interface {
	Len() int
	Gene(i int) int
	SetGene(i, v int)
	GenerateGene(i int) int
	CreateNew() C
	Clone() C
}

// Repairer 可选接口：基因 i 变化后重新生成与之不兼容的依赖基因
type Repairer interface {
	Repair(i int)
}

// Evaluator 适应度函数，越大越好
type Evaluator[C any] interface {
	Evaluate(c C) float64
}

// EvaluatorFunc 函数形式的适应度
type EvaluatorFunc[C any] func(c C) float64

// Evaluate 实现 Evaluator
func (f EvaluatorFunc[C]) Evaluate(c C) float64 { return f(c) }

// Individual 个体（候选解）
type Individual[C Chromosome[C]] struct {
	Chromosome C
	Fitness    float64
}

// Clone 克隆个体
func (ind *Individual[C]) Clone() *Individual[C] {
	return &Individual[C]{
		Chromosome: ind.Chromosome.Clone(),
		Fitness:    ind.Fitness,
	}
}

// Population 种群
type Population[C Chromosome[C]] struct {
	Individuals []*Individual[C]
}

// Size 返回种群大小
func (p *Population[C]) Size() int {
	return len(p.Individuals)
}

// GetBest 获取最优个体，适应度相同时取靠前的
func (p *Population[C]) GetBest() *Individual[C] {
	if len(p.Individuals) == 0 {
		return nil
	}
	best := p.Individuals[0]
	for _, ind := range p.Individuals {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

// GetAverageFitness 获取平均适应度
func (p *Population[C]) GetAverageFitness() float64 {
	if len(p.Individuals) == 0 {
		return 0
	}
	total := 0.0
	for _, ind := range p.Individuals {
		total += ind.Fitness
	}
	return total / float64(len(p.Individuals))
}

// sorted 按适应度降序返回个体切片的副本
func (p *Population[C]) sorted() []*Individual[C] {
	out := make([]*Individual[C], len(p.Individuals))
	copy(out, p.Individuals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fitness > out[j].Fitness })
	return out
}

// Result 一次进化的结果
type Result[C Chromosome[C]] struct {
	Best        *Individual[C]
	Generations int  // 完成繁殖的代数
	Converged   bool // 因收敛提前结束
	Canceled    bool // 因 context 取消提前结束

	BestFitnessHistory []float64
	AvgFitnessHistory  []float64
	// ConvergenceHistory 每代 (best-avg)/|best|，越小种群越集中
	ConvergenceHistory []float64
}
