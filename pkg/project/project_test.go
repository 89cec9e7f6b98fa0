package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/facility"
	"github.com/kasuganosora/daqnet/pkg/project"
	"github.com/kasuganosora/daqnet/pkg/routing"
	"github.com/kasuganosora/daqnet/pkg/testutils"
)

func TestNewScenario(t *testing.T) {
	p := testutils.NewScenarioProject(t)

	assert.Equal(t, 1, p.ZoneCount())
	assert.Equal(t, 9, p.Graph.VertexCount())
	// 中心点 (1,1) 的行优先下标为 4
	assert.Equal(t, []int{4}, p.ZoneVertices(0))
	assert.Equal(t, []int{0}, p.DeviceCandidates(0))
	assert.Equal(t, []int{0}, p.AcquisitionCandidates(0))
	assert.Equal(t, []int{0}, p.ChannelCandidates(0, 0))
	assert.InDelta(t, 600, p.ServerCost(), 1e-9)
}

func TestFeasibilityTables(t *testing.T) {
	p := testutils.NewPlantProject(t)

	// boiler 需要温度：thermo / actuator / multi
	assert.Equal(t, []int{0, 2, 3}, p.DeviceCandidates(0))
	// feeder 需要电能：power meter / multi
	assert.Equal(t, []int{1, 3}, p.DeviceCandidates(1))
	// valve 需要阀门控制：actuator / multi
	assert.Equal(t, []int{2, 3}, p.DeviceCandidates(2))

	// power meter 同时支持 ZigBee 与 RS485
	assert.Equal(t, []int{0, 1}, p.AcquisitionCandidates(1))
	assert.Equal(t, []int{0, 3}, p.ChannelCandidates(1, 0))
	assert.Equal(t, []int{1}, p.ChannelCandidates(1, 1))
	assert.Empty(t, p.ChannelCandidates(0, 1))

	assert.Len(t, p.ZoneVertices(0), 2)
	assert.Nil(t, p.ZoneVertices(7))
	assert.Nil(t, p.DeviceCandidates(-1))
	assert.Nil(t, p.AcquisitionCandidates(99))
}

func TestServerCost(t *testing.T) {
	s := testutils.PlantFixture()
	s.Settings.UseLocalServer = false
	p := s.Build(t)
	assert.InDelta(t, 35*12, p.ServerCost(), 1e-9)

	s = testutils.PlantFixture()
	s.Settings.Goal = equipment.GoalTime
	assert.Equal(t, 0.0, s.Build(t).ServerCost())
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *testutils.Scenario)
		wantErr error
	}{
		{
			name:    "bad grid",
			mutate:  func(s *testutils.Scenario) { s.Settings.Width = 0 },
			wantErr: project.ErrInvalidSettings,
		},
		{
			name:    "negative budget",
			mutate:  func(s *testutils.Scenario) { s.Settings.Budget = -1 },
			wantErr: project.ErrInvalidSettings,
		},
		{
			name:    "empty catalog",
			mutate:  func(s *testutils.Scenario) { s.Catalog.Channels = nil },
			wantErr: equipment.ErrEmptyCatalog,
		},
		{
			name:    "regions do not tile",
			mutate:  func(s *testutils.Scenario) { s.Regions[0].Width = 2 },
			wantErr: routing.ErrRegionLayout,
		},
		{
			name:    "no zones",
			mutate:  func(s *testutils.Scenario) { s.Zones = nil },
			wantErr: project.ErrInvalidZone,
		},
		{
			name: "duplicate zone",
			mutate: func(s *testutils.Scenario) {
				s.Zones = append(s.Zones, &facility.Zone{ID: 1, Locations: []facility.Point{{X: 0, Y: 0}}})
			},
			wantErr: project.ErrInvalidZone,
		},
		{
			name:    "location outside grid",
			mutate:  func(s *testutils.Scenario) { s.Zones[0].Locations = []facility.Point{{X: 3, Y: 0}} },
			wantErr: project.ErrInvalidZone,
		},
		{
			name:    "zone without locations",
			mutate:  func(s *testutils.Scenario) { s.Zones[0].Locations = nil },
			wantErr: project.ErrInvalidZone,
		},
		{
			name: "no device covers the zone",
			mutate: func(s *testutils.Scenario) {
				s.Zones[0].RequiredControls = []facility.Control{facility.Dimming}
			},
			wantErr: project.ErrInfeasibleZone,
		},
		{
			name: "no channel links device and gateway",
			mutate: func(s *testutils.Scenario) {
				s.Catalog.Channels[0].Standard = equipment.LoRaWAN
			},
			wantErr: project.ErrInfeasibleZone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutils.ScenarioFixture()
			tt.mutate(s)
			p, err := project.New(s.Settings, s.Regions, s.Zones, s.Catalog, routing.DefaultCoefficients())
			assert.Nil(t, p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestZoneWithoutRequirementsAcceptsAnyDevice(t *testing.T) {
	s := testutils.PlantFixture()
	s.Zones[1].RequiredMeasurements = nil
	p := s.Build(t)
	assert.Equal(t, []int{0, 1, 2, 3}, p.DeviceCandidates(1))
}
