package optimizer

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/daqnet/pkg/config"
	"github.com/kasuganosora/daqnet/pkg/encoding"
	"github.com/kasuganosora/daqnet/pkg/monitor"
	"github.com/kasuganosora/daqnet/pkg/testutils"
)

func testConfig(seed int64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Optimizer.PopulationSize = 30
	cfg.Optimizer.MaxGenerations = 40
	cfg.Optimizer.ConvergenceWindow = 0
	cfg.Optimizer.Seed = seed
	cfg.Pool.Workers = 3
	cfg.Pool.QueueSize = 16
	return cfg
}

func TestRunScenario(t *testing.T) {
	p := testutils.NewScenarioProject(t)
	m := monitor.NewMetricsCollector("daqnet")

	res, err := New(testConfig(1), WithMetrics(m)).Run(context.Background(), p)
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.Seed)
	assert.Equal(t, 40, res.Generations)
	assert.False(t, res.Canceled)
	// 初始种群加每代子代
	assert.GreaterOrEqual(t, res.Evaluations, int64(30))

	// 采集设备放在测控点上时没有布线成本
	require.True(t, res.Feasible())
	assert.Equal(t, -1000.0, res.Fitness)
	assert.Equal(t, 1000.0, res.Breakdown.Total)
	assert.Equal(t, []int{0, 0, 0, 4, 0}, res.Best.Genes())
	require.Len(t, res.Network.Groups, 1)
	assert.Equal(t, 4, res.Network.Groups[0].Vertex.Index)

	require.Len(t, res.CostHistory, 41)
	for i := 1; i < len(res.CostHistory); i++ {
		assert.LessOrEqual(t, res.CostHistory[i], res.CostHistory[i-1], "best cost never grows with elitism")
	}
	require.Len(t, res.ConvergenceHistory, len(res.CostHistory))
	for _, m := range res.ConvergenceHistory {
		assert.GreaterOrEqual(t, m, 0.0)
	}

	expected := `
# HELP daqnet_runs_total Completed optimization runs.
# TYPE daqnet_runs_total counter
daqnet_runs_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "daqnet_runs_total"))
}

func TestRunPlant(t *testing.T) {
	p := testutils.NewPlantProject(t)

	res, err := New(testConfig(3)).Run(context.Background(), p)
	require.NoError(t, err)
	require.True(t, res.Feasible())

	assert.Equal(t, 3*encoding.GenesPerSection, res.Best.Len())
	assert.Equal(t, 3, res.Network.DeviceCount())
	assert.InDelta(t, -res.Fitness, res.Breakdown.Total, 1e-6)

	// 每个区段都满足可行性表
	for z := 0; z < res.Best.Sections(); z++ {
		s := res.Best.Section(z)
		assert.Contains(t, p.DeviceCandidates(z), s[encoding.GeneDevice])
		assert.Contains(t, p.AcquisitionCandidates(s[encoding.GeneDevice]), s[encoding.GeneAcquisition])
		assert.Contains(t, p.ChannelCandidates(s[encoding.GeneDevice], s[encoding.GeneAcquisition]), s[encoding.GeneChannel])
	}
}

func TestRunIsReproducible(t *testing.T) {
	p := testutils.NewPlantProject(t)

	first, err := New(testConfig(7)).Run(context.Background(), p)
	require.NoError(t, err)
	second, err := New(testConfig(7)).Run(context.Background(), p)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Best.Genes(), second.Best.Genes())
	assert.Equal(t, first.Fitness, second.Fitness)
	assert.Equal(t, first.CostHistory, second.CostHistory)
}

func TestRunWithoutCache(t *testing.T) {
	p := testutils.NewScenarioProject(t)
	cfg := testConfig(2)
	cfg.Cache.Enabled = false
	cfg.Optimizer.MaxGenerations = 2

	res, err := New(cfg).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Generations)
	assert.NotNil(t, res.Best)
}

func TestRunCanceled(t *testing.T) {
	p := testutils.NewScenarioProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(1)).Run(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunInvalidConfig(t *testing.T) {
	p := testutils.NewScenarioProject(t)

	cfg := testConfig(1)
	cfg.Optimizer.Selection = "rank"
	_, err := New(cfg).Run(context.Background(), p)
	assert.Error(t, err)

	cfg = testConfig(1)
	cfg.Pool.Workers = 0
	_, err = New(cfg).Run(context.Background(), p)
	assert.Error(t, err)
}
