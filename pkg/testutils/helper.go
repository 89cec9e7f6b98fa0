package testutils

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/facility"
	"github.com/kasuganosora/daqnet/pkg/project"
	"github.com/kasuganosora/daqnet/pkg/routing"
)

// UniformRegion 创建所有评估取统一值的区域
func UniformRegion(id, x, y, w, h int, v float64) *facility.Region {
	return &facility.Region{
		ID:                    id,
		Name:                  fmt.Sprintf("region-%d", id),
		X:                     x,
		Y:                     y,
		Width:                 w,
		Height:                h,
		Aggressiveness:        facility.Uniform(v),
		Unavailability:        facility.Uniform(v),
		Laboriousness:         facility.Uniform(v),
		BadRadioTransmittance: facility.Uniform(v),
		BadWiredTransmittance: facility.Uniform(v),
	}
}

// Meter 创建测控设备
func Meter(id int, price float64, ms []facility.Measurement, cs []facility.Control, stds ...equipment.Standard) *equipment.MeasurementDevice {
	return &equipment.MeasurementDevice{
		Device: equipment.Device{
			ID:            id,
			Name:          fmt.Sprintf("device-%d", id),
			PurchasePrice: price,
			InstallPrice:  price / 5,
			InstallTime:   1,
			Standards:     stds,
		},
		Measurements: ms,
		Controls:     cs,
	}
}

// Gateway 创建采集设备
func Gateway(id int, price float64, receivers map[equipment.Standard]int, uplinks ...equipment.ConnectionType) *equipment.AcquisitionDevice {
	stds := make([]equipment.Standard, 0, len(receivers))
	for s := range receivers {
		stds = append(stds, s)
	}
	return &equipment.AcquisitionDevice{
		Device: equipment.Device{
			ID:            id,
			Name:          fmt.Sprintf("gateway-%d", id),
			PurchasePrice: price,
			InstallPrice:  price / 5,
			InstallTime:   2,
			PowerRequired: true,
			Standards:     stds,
		},
		Receivers: receivers,
		Uplinks:   uplinks,
	}
}

// Scenario 3x3 单区域、单测控区的最小场景
// 中心点需要电能计量，目录中只有一套兼容的设备/采集设备/通道
// 使用本地员工与本地服务器，总成本 = 100 + 300 + 50*12
type Scenario struct {
	Settings project.Settings
	Regions  []*facility.Region
	Zones    []*facility.Zone
	Catalog  *equipment.Catalog
}

// ScenarioFixture 返回最小场景的输入
func ScenarioFixture() *Scenario {
	region := UniformRegion(1, 0, 0, 3, 3, 1)
	region.HasWiredLAN = true
	region.HasPower = true

	return &Scenario{
		Settings: project.Settings{
			Width:               3,
			Height:              3,
			LocalServerPayment:  50,
			RemoteServerPayment: 80,
			Params: equipment.Params{
				Goal:             equipment.GoalMoney,
				UsageMonths:      12,
				UseLocalServer:   true,
				UseLocalEmployee: true,
			},
		},
		Regions: []*facility.Region{region},
		Zones: []*facility.Zone{{
			ID:                   1,
			Name:                 "switchboard",
			RequiredMeasurements: []facility.Measurement{facility.ElectricityConsumption},
			Locations:            []facility.Point{{X: 1, Y: 1}},
		}},
		Catalog: &equipment.Catalog{
			Devices: []*equipment.MeasurementDevice{
				Meter(1, 100, []facility.Measurement{facility.ElectricityConsumption}, nil, equipment.ZigBee),
			},
			Acquisitions: []*equipment.AcquisitionDevice{
				Gateway(1, 300, map[equipment.Standard]int{equipment.ZigBee: 8}, equipment.UplinkEthernet),
			},
			Channels: []*equipment.Channel{
				{ID: 1, Name: "zigbee", Standard: equipment.ZigBee, Wireless: true, Topology: equipment.Star},
			},
		},
	}
}

// Build 由场景输入构建项目
func (s *Scenario) Build(t testing.TB) *project.Project {
	t.Helper()
	p, err := project.New(s.Settings, s.Regions, s.Zones, s.Catalog, routing.DefaultCoefficients())
	require.NoError(t, err, "Failed to build project")
	return p
}

// NewScenarioProject 构建最小场景项目
func NewScenarioProject(t testing.TB) *project.Project {
	return ScenarioFixture().Build(t)
}

// PlantFixture 6x4 两区域、三个测控区的厂房场景
// 三种通道拓扑都会出现，用于编码、评估与优化测试
func PlantFixture() *Scenario {
	west := UniformRegion(1, 0, 0, 3, 4, 1)
	west.HasPower = true
	east := UniformRegion(2, 3, 0, 3, 4, 2)
	east.HasWiredLAN = true
	east.BadMobileSignal = 5

	return &Scenario{
		Settings: project.Settings{
			Width:               6,
			Height:              4,
			LocalServerPayment:  20,
			RemoteServerPayment: 35,
			Params: equipment.Params{
				Goal:           equipment.GoalMoney,
				UsageMonths:    12,
				UseLocalServer: true,
				CostPerHour:    10,
				MobilePlans: []equipment.MobilePlan{
					{Type: equipment.UplinkLTE, MonthlyPayment: 10, ModemPrice: 50},
				},
			},
		},
		Regions: []*facility.Region{west, east},
		Zones: []*facility.Zone{
			{
				ID:                   1,
				Name:                 "boiler",
				RequiredMeasurements: []facility.Measurement{facility.Temperature},
				Locations:            []facility.Point{{X: 1, Y: 1}, {X: 0, Y: 2}},
			},
			{
				ID:                   2,
				Name:                 "feeder",
				RequiredMeasurements: []facility.Measurement{facility.ElectricityConsumption},
				Locations:            []facility.Point{{X: 4, Y: 1}},
			},
			{
				ID:               3,
				Name:             "valve",
				RequiredControls: []facility.Control{facility.ValveControl},
				Locations:        []facility.Point{{X: 5, Y: 3}, {X: 4, Y: 3}},
			},
		},
		Catalog: &equipment.Catalog{
			Devices: []*equipment.MeasurementDevice{
				Meter(1, 40, []facility.Measurement{facility.Temperature, facility.Humidity}, nil, equipment.ZigBee),
				Meter(2, 80, []facility.Measurement{facility.ElectricityConsumption}, nil, equipment.ZigBee, equipment.RS485),
				Meter(3, 120, []facility.Measurement{facility.Temperature}, []facility.Control{facility.ValveControl}, equipment.RS485),
				Meter(4, 300,
					[]facility.Measurement{facility.Temperature, facility.ElectricityConsumption},
					[]facility.Control{facility.ValveControl},
					equipment.LoRaWAN),
			},
			Acquisitions: []*equipment.AcquisitionDevice{
				Gateway(1, 200, map[equipment.Standard]int{equipment.ZigBee: 8}, equipment.UplinkEthernet),
				Gateway(2, 150, map[equipment.Standard]int{equipment.RS485: 4}, equipment.UplinkEthernet, equipment.UplinkLTE),
				Gateway(3, 400, map[equipment.Standard]int{equipment.LoRaWAN: 0}, equipment.UplinkLTE),
			},
			Channels: []*equipment.Channel{
				{ID: 1, Name: "zigbee mesh", Standard: equipment.ZigBee, Wireless: true, Topology: equipment.Mesh},
				{ID: 2, Name: "rs485 bus", Standard: equipment.RS485, Topology: equipment.Bus, PurchasePrice: 15},
				{ID: 3, Name: "lora star", Standard: equipment.LoRaWAN, Wireless: true, Topology: equipment.Star},
				{ID: 4, Name: "zigbee star", Standard: equipment.ZigBee, Wireless: true, Topology: equipment.Star, PurchasePrice: 5},
			},
		},
	}
}

// NewPlantProject 构建厂房场景项目
func NewPlantProject(t testing.TB) *project.Project {
	return PlantFixture().Build(t)
}

// NewRand 固定种子的随机数源
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
