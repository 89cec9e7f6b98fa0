package genetic

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/kasuganosora/daqnet/pkg/workerpool"
)

// intChromosome 每个基因取 [0, limit) 的测试染色体
type intChromosome struct {
	genes    []int
	limit    int
	rng      *rand.Rand
	repaired []int
}

func newIntChromosome(n, limit int, rng *rand.Rand) *intChromosome {
	c := &intChromosome{genes: make([]int, n), limit: limit, rng: rng}
	for i := range c.genes {
		c.genes[i] = c.GenerateGene(i)
	}
	return c
}

func (c *intChromosome) Len() int { return len(c.genes) }
func (c *intChromosome) Gene(i int) int { return c.genes[i] }
func (c *intChromosome) SetGene(i, v int) { c.genes[i] = v }
func (c *intChromosome) GenerateGene(i int) int { return c.rng.Intn(c.limit) }
func (c *intChromosome) CreateNew() *intChromosome { return newIntChromosome(len(c.genes), c.limit, c.rng) }
func (c *intChromosome) Repair(i int) { c.repaired = append(c.repaired, i) }

func (c *intChromosome) Clone() *intChromosome {
	return &intChromosome{genes: append([]int(nil), c.genes...), limit: c.limit, rng: c.rng}
}

func sumFitness(c *intChromosome) float64 {
	total := 0
	for _, g := range c.genes {
		total += g
	}
	return float64(total)
}

func testConfig() *GeneticAlgorithmConfig {
	config := DefaultGeneticAlgorithmConfig()
	config.PopulationSize = 20
	config.MaxGenerations = 40
	config.SectionSize = 2
	config.ConvergenceWindow = 0
	return config
}

func newTestGA(t *testing.T, config *GeneticAlgorithmConfig, eval Evaluator[*intChromosome], opts ...Option[*intChromosome]) *GeneticAlgorithm[*intChromosome] {
	t.Helper()
	opts = append([]Option[*intChromosome]{WithRand[*intChromosome](rand.New(rand.NewSource(1)))}, opts...)
	ga, err := NewGeneticAlgorithm(config, eval, opts...)
	if err != nil {
		t.Fatalf("NewGeneticAlgorithm() error = %v", err)
	}
	return ga
}

func TestDefaultGeneticAlgorithmConfig(t *testing.T) {
	config := DefaultGeneticAlgorithmConfig()

	if config.PopulationSize != 50 {
		t.Errorf("Expected PopulationSize 50, got %d", config.PopulationSize)
	}
	if config.MaxGenerations != 100 {
		t.Errorf("Expected MaxGenerations 100, got %d", config.MaxGenerations)
	}
	if config.MutationRate != 0.1 {
		t.Errorf("Expected MutationRate 0.1, got %f", config.MutationRate)
	}
	if config.CrossoverRate != 0.8 {
		t.Errorf("Expected CrossoverRate 0.8, got %f", config.CrossoverRate)
	}
	if config.SelectionStrategy != SelectionTournament {
		t.Errorf("Expected tournament selection, got %q", config.SelectionStrategy)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *GeneticAlgorithmConfig)
	}{
		{"tiny population", func(c *GeneticAlgorithmConfig) { c.PopulationSize = 1 }},
		{"negative generations", func(c *GeneticAlgorithmConfig) { c.MaxGenerations = -1 }},
		{"mutation rate above one", func(c *GeneticAlgorithmConfig) { c.MutationRate = 1.5 }},
		{"negative crossover rate", func(c *GeneticAlgorithmConfig) { c.CrossoverRate = -0.1 }},
		{"elitism fills population", func(c *GeneticAlgorithmConfig) { c.ElitismCount = c.PopulationSize }},
		{"zero section size", func(c *GeneticAlgorithmConfig) { c.SectionSize = 0 }},
		{"negative window", func(c *GeneticAlgorithmConfig) { c.ConvergenceWindow = -1 }},
		{"unknown selection", func(c *GeneticAlgorithmConfig) { c.SelectionStrategy = "rank" }},
		{"empty tournament", func(c *GeneticAlgorithmConfig) { c.TournamentSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGeneticAlgorithmConfig()
			tt.modify(config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidConfig)
			}
			if _, err := NewGeneticAlgorithm[*intChromosome](config, EvaluatorFunc[*intChromosome](sumFitness)); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewGeneticAlgorithm() error = %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}

func TestIndividual_Clone(t *testing.T) {
	original := &Individual[*intChromosome]{
		Chromosome: &intChromosome{genes: []int{1, 2, 3}, limit: 5},
		Fitness:    10.5,
	}

	cloned := original.Clone()
	if cloned == original || cloned.Chromosome == original.Chromosome {
		t.Fatal("Clone should return new instances")
	}
	if cloned.Fitness != original.Fitness {
		t.Errorf("Cloned fitness mismatch: expected %f, got %f", original.Fitness, cloned.Fitness)
	}

	cloned.Chromosome.SetGene(0, 4)
	if original.Chromosome.Gene(0) != 1 {
		t.Error("Modifying cloned genes affected original")
	}
}

func population(fitness ...float64) *Population[*intChromosome] {
	pop := &Population[*intChromosome]{}
	for i, f := range fitness {
		pop.Individuals = append(pop.Individuals, &Individual[*intChromosome]{
			Chromosome: &intChromosome{genes: []int{i}, limit: len(fitness)},
			Fitness:    f,
		})
	}
	return pop
}

func TestPopulation(t *testing.T) {
	pop := population(1, 3, 2, 3)

	if pop.Size() != 4 {
		t.Errorf("Expected size 4, got %d", pop.Size())
	}
	if best := pop.GetBest(); best.Chromosome.Gene(0) != 1 {
		t.Errorf("GetBest should return the first of equal bests, got individual %d", best.Chromosome.Gene(0))
	}
	if avg := pop.GetAverageFitness(); avg != 2.25 {
		t.Errorf("Expected average fitness 2.25, got %f", avg)
	}

	sorted := pop.sorted()
	want := []int{1, 3, 2, 0}
	for i, ind := range sorted {
		if ind.Chromosome.Gene(0) != want[i] {
			t.Errorf("sorted[%d] = individual %d, want %d", i, ind.Chromosome.Gene(0), want[i])
		}
	}
	if pop.Individuals[0].Fitness != 1 {
		t.Error("sorted must not reorder the population")
	}

	empty := &Population[*intChromosome]{}
	if empty.GetBest() != nil || empty.GetAverageFitness() != 0 {
		t.Error("empty population should have no best and zero average")
	}
}

func TestSelectKeepsElites(t *testing.T) {
	for _, strategy := range []string{SelectionTournament, SelectionRoulette} {
		t.Run(strategy, func(t *testing.T) {
			rng := rand.New(rand.NewSource(3))
			sel := NewDefaultSelectionOperator[*intChromosome](6, strategy, 3, rng)
			pop := population(-5, 10, 0, 7, -1e15, 3)

			got := sel.Select(pop, 2)
			if got.Size() != 6 {
				t.Fatalf("Select() size = %d, want 6", got.Size())
			}
			if got.Individuals[0].Fitness != 10 || got.Individuals[1].Fitness != 7 {
				t.Errorf("elites = %v, %v, want 10, 7", got.Individuals[0].Fitness, got.Individuals[1].Fitness)
			}
		})
	}
}

func TestRouletteSelectNegativeFitness(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	sel := NewDefaultSelectionOperator[*intChromosome](3, SelectionRoulette, 0, rng)
	sorted := population(-5, -10, -1e15).sorted()

	for i := 0; i < 1000; i++ {
		if got := sel.rouletteSelect(sorted); got.Fitness == -1e15 {
			t.Fatal("the worst individual has zero weight and must never be drawn")
		}
	}

	same := population(-3, -3, -3).sorted()
	for i := 0; i < 10; i++ {
		if sel.rouletteSelect(same) == nil {
			t.Fatal("equal fitness should fall back to uniform choice")
		}
	}
}

func TestTournamentSelect(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	sel := NewDefaultSelectionOperator[*intChromosome](4, SelectionTournament, 1, rng)
	sorted := population(4, 3, 2, 1).sorted()

	seen := make(map[float64]bool)
	for i := 0; i < 200; i++ {
		seen[sel.tournamentSelect(sorted).Fitness] = true
	}
	if len(seen) != 4 {
		t.Errorf("tournament of size 1 should draw uniformly, saw %v", seen)
	}
}

func TestSectionCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	x := NewSectionCrossoverOperator[*intChromosome](2, rng)

	p1 := &intChromosome{genes: []int{0, 0, 0, 0, 0, 0}, limit: 2}
	p2 := &intChromosome{genes: []int{1, 1, 1, 1, 1, 1}, limit: 2}

	for trial := 0; trial < 50; trial++ {
		c1, c2 := x.Crossover(p1, p2, 1)

		point := 0
		for point < c1.Len() && c1.Gene(point) == 0 {
			point++
		}
		if point == 0 || point == c1.Len() || point%2 != 0 {
			t.Fatalf("crossover point %d is not an inner section boundary", point)
		}
		for i := 0; i < c1.Len(); i++ {
			wantC1, wantC2 := 0, 1
			if i >= point {
				wantC1, wantC2 = 1, 0
			}
			if c1.Gene(i) != wantC1 || c2.Gene(i) != wantC2 {
				t.Fatalf("gene %d: children %d/%d, want %d/%d", i, c1.Gene(i), c2.Gene(i), wantC1, wantC2)
			}
		}
	}

	for i := 0; i < p1.Len(); i++ {
		if p1.Gene(i) != 0 || p2.Gene(i) != 1 {
			t.Fatal("crossover modified a parent")
		}
	}
}

func TestSectionCrossoverSkips(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	p1 := &intChromosome{genes: []int{0, 0, 0, 0}, limit: 2}
	p2 := &intChromosome{genes: []int{1, 1, 1, 1}, limit: 2}

	tests := []struct {
		name        string
		sectionSize int
		rate        float64
	}{
		{"zero rate", 2, 0},
		{"single section", 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewSectionCrossoverOperator[*intChromosome](tt.sectionSize, rng)
			c1, c2 := x.Crossover(p1, p2, tt.rate)
			if c1 == p1 || c2 == p2 {
				t.Fatal("children must be clones")
			}
			for i := 0; i < 4; i++ {
				if c1.Gene(i) != 0 || c2.Gene(i) != 1 {
					t.Fatalf("gene %d crossed over", i)
				}
			}
		})
	}
}

func TestMutationRegeneratesAndRepairs(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := NewRegenerationMutationOperator[*intChromosome](rng)

	c := &intChromosome{genes: []int{5, 5, 5}, limit: 1, rng: rng}
	if got := m.Mutate(c, 0); got.repaired != nil || got.Gene(0) != 5 {
		t.Error("zero rate must not touch the chromosome")
	}

	got := m.Mutate(c, 1)
	for i := 0; i < got.Len(); i++ {
		if got.Gene(i) != 0 {
			t.Errorf("gene %d = %d, want regenerated 0", i, got.Gene(i))
		}
	}
	if len(got.repaired) != 3 || got.repaired[0] != 0 || got.repaired[2] != 2 {
		t.Errorf("repaired = %v, want [0 1 2]", got.repaired)
	}
}

func TestAdaptParameters(t *testing.T) {
	ga := newTestGA(t, testConfig(), EvaluatorFunc[*intChromosome](sumFitness))

	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

	ga.AdaptParameters(0, 0)
	if m, x := ga.Rates(); !near(m, 0.2) || !near(x, 0.7) {
		t.Errorf("stagnant population: rates %v/%v, want 0.2/0.7", m, x)
	}

	ga.AdaptParameters(0.5, 0.1)
	if m, x := ga.Rates(); !near(m, 0.05) || !near(x, 0.9) {
		t.Errorf("diverse population: rates %v/%v, want 0.05/0.9", m, x)
	}

	ga.AdaptParameters(0.05, 0.1)
	if m, x := ga.Rates(); !near(m, 0.1) || !near(x, 0.8) {
		t.Errorf("balanced population: rates %v/%v, want 0.1/0.8", m, x)
	}

	config := testConfig()
	config.AdaptiveEnabled = false
	fixed := newTestGA(t, config, EvaluatorFunc[*intChromosome](sumFitness))
	fixed.AdaptParameters(0, 0)
	if m, x := fixed.Rates(); m != 0.1 || x != 0.8 {
		t.Errorf("disabled adaptation changed rates to %v/%v", m, x)
	}
}

func TestRunImprovesAndKeepsElites(t *testing.T) {
	ga := newTestGA(t, testConfig(), EvaluatorFunc[*intChromosome](sumFitness))
	template := newIntChromosome(8, 10, rand.New(rand.NewSource(4)))

	result, err := ga.Run(context.Background(), template)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Best == nil {
		t.Fatal("Run() returned no best individual")
	}
	if result.Generations != 40 || result.Converged || result.Canceled {
		t.Errorf("result = %+v, want 40 full generations", result)
	}
	if got := len(result.BestFitnessHistory); got != 41 {
		t.Errorf("history length = %d, want 41", got)
	}
	if got := len(result.ConvergenceHistory); got != 41 {
		t.Errorf("convergence history length = %d, want 41", got)
	}
	for i, m := range result.ConvergenceHistory {
		if m < 0 {
			t.Errorf("convergence metric %v at generation %d is negative", m, i)
		}
	}

	history := result.BestFitnessHistory
	for i := 1; i < len(history); i++ {
		if history[i] < history[i-1] {
			t.Fatalf("best fitness dropped from %v to %v at generation %d", history[i-1], history[i], i)
		}
	}
	if result.Best.Fitness != history[len(history)-1] {
		t.Errorf("best fitness %v does not match the last history entry %v", result.Best.Fitness, history[len(history)-1])
	}
	if result.Best.Fitness <= result.AvgFitnessHistory[0] {
		t.Errorf("best %v did not beat the initial average %v", result.Best.Fitness, result.AvgFitnessHistory[0])
	}
}

func TestRunWithPool(t *testing.T) {
	pool, err := workerpool.New(workerpool.Config{Size: 4, QueueSize: 16})
	if err != nil {
		t.Fatalf("workerpool.New() error = %v", err)
	}
	if err := pool.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer pool.Close()

	var calls atomic.Int64
	eval := EvaluatorFunc[*intChromosome](func(c *intChromosome) float64 {
		calls.Add(1)
		return sumFitness(c)
	})

	config := testConfig()
	config.MaxGenerations = 5
	ga := newTestGA(t, config, eval, WithPool[*intChromosome](pool))

	result, err := ga.Run(context.Background(), newIntChromosome(6, 4, rand.New(rand.NewSource(8))))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 初始种群全部评估，之后每代只评估非精英
	want := int64(config.PopulationSize + 5*(config.PopulationSize-config.ElitismCount))
	if calls.Load() != want {
		t.Errorf("evaluations = %d, want %d", calls.Load(), want)
	}
	if result.Generations != 5 {
		t.Errorf("Generations = %d, want 5", result.Generations)
	}
}

func TestRunRecoversEvaluationPanics(t *testing.T) {
	eval := EvaluatorFunc[*intChromosome](func(c *intChromosome) float64 {
		if c.Gene(0) == 0 {
			panic("bad chromosome")
		}
		return sumFitness(c)
	})

	config := testConfig()
	config.MaxGenerations = 3
	ga := newTestGA(t, config, eval)

	result, err := ga.Run(context.Background(), newIntChromosome(4, 3, rand.New(rand.NewSource(6))))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Best.Chromosome.Gene(0) == 0 {
		t.Error("a panicking chromosome should never be the best")
	}
}

func TestRunConverges(t *testing.T) {
	config := testConfig()
	config.ConvergenceWindow = 3
	ga := newTestGA(t, config, EvaluatorFunc[*intChromosome](func(*intChromosome) float64 { return -42 }))

	result, err := ga.Run(context.Background(), newIntChromosome(4, 3, rand.New(rand.NewSource(6))))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Converged {
		t.Fatal("flat fitness should converge")
	}
	if result.Generations != 3 {
		t.Errorf("Generations = %d, want 3", result.Generations)
	}
	if len(result.BestFitnessHistory) != 4 {
		t.Errorf("history length = %d, want 4", len(result.BestFitnessHistory))
	}
}

func TestRunZeroGenerations(t *testing.T) {
	config := testConfig()
	config.MaxGenerations = 0
	ga := newTestGA(t, config, EvaluatorFunc[*intChromosome](sumFitness))

	result, err := ga.Run(context.Background(), newIntChromosome(4, 3, rand.New(rand.NewSource(6))))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Generations != 0 || len(result.BestFitnessHistory) != 1 || result.Best == nil {
		t.Errorf("result = %+v, want the scored initial population only", result)
	}
}

func TestRunCanceled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ga := newTestGA(t, testConfig(), EvaluatorFunc[*intChromosome](sumFitness))
		if _, err := ga.Run(ctx, newIntChromosome(4, 3, rand.New(rand.NewSource(6)))); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want %v", err, context.Canceled)
		}
	})

	t.Run("during evolution", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		config := testConfig()
		var calls atomic.Int64
		eval := EvaluatorFunc[*intChromosome](func(c *intChromosome) float64 {
			if calls.Add(1) == int64(config.PopulationSize+5) {
				cancel()
			}
			return sumFitness(c)
		})

		ga := newTestGA(t, config, eval)
		result, err := ga.Run(ctx, newIntChromosome(4, 3, rand.New(rand.NewSource(6))))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !result.Canceled {
			t.Error("result should report cancellation")
		}
		if result.Best == nil || result.Generations != 0 {
			t.Errorf("result = %+v, want the initial population's best", result)
		}
	})
}

func TestSetDebug(t *testing.T) {
	defer SetDebug(false)

	SetDebug(true)
	if !IsDebugEnabled() {
		t.Error("debug should be enabled")
	}
	SetDebug(false)
	if IsDebugEnabled() {
		t.Error("debug should be disabled")
	}
}
