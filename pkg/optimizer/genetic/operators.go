package genetic

import (
	"math/rand"
)

// SelectionOperator 选择算子接口
// 返回的新种群以精英开头，其后为被选中的个体
type SelectionOperator[C Chromosome[C]] interface {
	Select(population *Population[C], eliteCount int) *Population[C]
}

// CrossoverOperator 交叉算子接口，不修改父代
type CrossoverOperator[C Chromosome[C]] interface {
	Crossover(parent1, parent2 C, rate float64) (C, C)
}

// MutationOperator 变异算子接口，原地修改并返回染色体
type MutationOperator[C Chromosome[C]] interface {
	Mutate(c C, rate float64) C
}

// DefaultSelectionOperator 默认选择算子实现
type DefaultSelectionOperator[C Chromosome[C]] struct {
	populationSize    int
	selectionStrategy string
	tournamentSize    int
	rng               *rand.Rand
}

// NewDefaultSelectionOperator 创建默认选择算子
func NewDefaultSelectionOperator[C Chromosome[C]](populationSize int, selectionStrategy string, tournamentSize int, rng *rand.Rand) *DefaultSelectionOperator[C] {
	return &DefaultSelectionOperator[C]{
		populationSize:    populationSize,
		selectionStrategy: selectionStrategy,
		tournamentSize:    tournamentSize,
		rng:               rng,
	}
}

// Select 执行选择操作
func (s *DefaultSelectionOperator[C]) Select(pop *Population[C], eliteCount int) *Population[C] {
	sorted := pop.sorted()

	newPop := &Population[C]{
		Individuals: make([]*Individual[C], 0, s.populationSize),
	}

	// 保留精英
	for i := 0; i < eliteCount && i < len(sorted); i++ {
		newPop.Individuals = append(newPop.Individuals, sorted[i])
	}

	if len(sorted) == 0 {
		return newPop
	}

	for i := len(newPop.Individuals); i < s.populationSize; i++ {
		var selected *Individual[C]
		if s.selectionStrategy == SelectionRoulette {
			selected = s.rouletteSelect(sorted)
		} else {
			selected = s.tournamentSelect(sorted)
		}
		newPop.Individuals = append(newPop.Individuals, selected)
	}

	return newPop
}

// rouletteSelect 轮盘赌选择
// 适应度可能为负，按 (fitness - 最小适应度) 加权
func (s *DefaultSelectionOperator[C]) rouletteSelect(sorted []*Individual[C]) *Individual[C] {
	minFitness := sorted[len(sorted)-1].Fitness

	total := 0.0
	for _, ind := range sorted {
		total += ind.Fitness - minFitness
	}

	if total <= 0 {
		// 适应度全部相同，随机选择
		return sorted[s.rng.Intn(len(sorted))]
	}

	r := s.rng.Float64() * total
	accumulate := 0.0
	for _, ind := range sorted {
		accumulate += ind.Fitness - minFitness
		if accumulate >= r {
			return ind
		}
	}

	return sorted[len(sorted)-1]
}

// tournamentSelect 锦标赛选择
func (s *DefaultSelectionOperator[C]) tournamentSelect(pop []*Individual[C]) *Individual[C] {
	tournamentSize := min(s.tournamentSize, len(pop))

	best := pop[s.rng.Intn(len(pop))]
	for i := 1; i < tournamentSize; i++ {
		competitor := pop[s.rng.Intn(len(pop))]
		if competitor.Fitness > best.Fitness {
			best = competitor
		}
	}

	return best
}

// SectionCrossoverOperator 区段对齐的单点交叉
// 交叉点只取区段边界，子代的每个区段都完整来自某一个父代
type SectionCrossoverOperator[C Chromosome[C]] struct {
	sectionSize int
	rng         *rand.Rand
}

// NewSectionCrossoverOperator 创建区段交叉算子
func NewSectionCrossoverOperator[C Chromosome[C]](sectionSize int, rng *rand.Rand) *SectionCrossoverOperator[C] {
	return &SectionCrossoverOperator[C]{
		sectionSize: max(sectionSize, 1),
		rng:         rng,
	}
}

// Crossover 执行交叉操作
func (x *SectionCrossoverOperator[C]) Crossover(parent1, parent2 C, rate float64) (C, C) {
	child1, child2 := parent1.Clone(), parent2.Clone()

	n := parent1.Len()
	sections := n / x.sectionSize
	if n != parent2.Len() || sections < 2 || x.rng.Float64() >= rate {
		return child1, child2
	}

	point := (1 + x.rng.Intn(sections-1)) * x.sectionSize
	for i := point; i < n; i++ {
		child1.SetGene(i, parent2.Gene(i))
		child2.SetGene(i, parent1.Gene(i))
	}
	return child1, child2
}

// RegenerationMutationOperator 逐基因重新生成的变异
// 染色体实现 Repairer 时，变异后修复同一区段内的依赖基因
type RegenerationMutationOperator[C Chromosome[C]] struct {
	rng *rand.Rand
}

// NewRegenerationMutationOperator 创建变异算子
func NewRegenerationMutationOperator[C Chromosome[C]](rng *rand.Rand) *RegenerationMutationOperator[C] {
	return &RegenerationMutationOperator[C]{rng: rng}
}

// Mutate 执行变异操作
func (m *RegenerationMutationOperator[C]) Mutate(c C, rate float64) C {
	repairer, canRepair := any(c).(Repairer)
	for i := 0; i < c.Len(); i++ {
		if m.rng.Float64() >= rate {
			continue
		}
		c.SetGene(i, c.GenerateGene(i))
		if canRepair {
			repairer.Repair(i)
		}
	}
	return c
}
