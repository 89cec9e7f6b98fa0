package genetic

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig 遗传算法配置不合法
var ErrInvalidConfig = errors.New("genetic: invalid config")

// 选择策略
const (
	SelectionTournament = "tournament"
	SelectionRoulette   = "roulette"
)

// GeneticAlgorithmConfig 遗传算法配置
type GeneticAlgorithmConfig struct {
	PopulationSize    int
	MaxGenerations    int
	MutationRate      float64
	CrossoverRate     float64
	ElitismCount      int
	SectionSize       int    // 交叉点只落在区段边界上
	AdaptiveEnabled   bool   // 是否启用自适应参数
	SelectionStrategy string // 选择策略: "roulette" or "tournament"
	TournamentSize    int    // 锦标赛选择的大小

	// ConvergenceWindow 代内最优适应度在该窗口内几乎不变时停止，0 表示不做收敛判断
	ConvergenceWindow    int
	ConvergenceThreshold float64

	// PanicFitness 评估 panic 时记录的适应度
	PanicFitness float64
}

// DefaultGeneticAlgorithmConfig 返回默认配置
func DefaultGeneticAlgorithmConfig() *GeneticAlgorithmConfig {
	return &GeneticAlgorithmConfig{
		PopulationSize:       50,
		MaxGenerations:       100,
		MutationRate:         0.1,
		CrossoverRate:        0.8,
		ElitismCount:         2,
		SectionSize:          1,
		AdaptiveEnabled:      true,
		SelectionStrategy:    SelectionTournament,
		TournamentSize:       3,
		ConvergenceWindow:    15,
		ConvergenceThreshold: 0.001,
		PanicFitness:         -1e15,
	}
}

// Validate 校验配置
func (c *GeneticAlgorithmConfig) Validate() error {
	switch {
	case c.PopulationSize < 2:
		return fmt.Errorf("%w: population size %d < 2", ErrInvalidConfig, c.PopulationSize)
	case c.MaxGenerations < 0:
		return fmt.Errorf("%w: negative max generations %d", ErrInvalidConfig, c.MaxGenerations)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("%w: mutation rate %v out of [0,1]", ErrInvalidConfig, c.MutationRate)
	case c.CrossoverRate < 0 || c.CrossoverRate > 1:
		return fmt.Errorf("%w: crossover rate %v out of [0,1]", ErrInvalidConfig, c.CrossoverRate)
	case c.ElitismCount < 0 || c.ElitismCount >= c.PopulationSize:
		return fmt.Errorf("%w: elitism count %d with population %d", ErrInvalidConfig, c.ElitismCount, c.PopulationSize)
	case c.SectionSize < 1:
		return fmt.Errorf("%w: section size %d < 1", ErrInvalidConfig, c.SectionSize)
	case c.ConvergenceWindow < 0 || c.ConvergenceThreshold < 0:
		return fmt.Errorf("%w: negative convergence window or threshold", ErrInvalidConfig)
	}

	switch c.SelectionStrategy {
	case SelectionTournament:
		if c.TournamentSize < 1 {
			return fmt.Errorf("%w: tournament size %d < 1", ErrInvalidConfig, c.TournamentSize)
		}
	case SelectionRoulette:
	default:
		return fmt.Errorf("%w: unknown selection strategy %q", ErrInvalidConfig, c.SelectionStrategy)
	}
	return nil
}
