package facility

import "fmt"

// Measurement 测量类型
type Measurement string

const (
	Temperature            Measurement = "Temperature"
	Humidity               Measurement = "Humidity"
	Pressure               Measurement = "Pressure"
	ElectricityConsumption Measurement = "ElectricityConsumption"
	WaterConsumption       Measurement = "WaterConsumption"
	GasConsumption         Measurement = "GasConsumption"
	HeatConsumption        Measurement = "HeatConsumption"
	Vibration              Measurement = "Vibration"
	Illuminance            Measurement = "Illuminance"
	Motion                 Measurement = "Motion"
)

// Control 控制动作类型
type Control string

const (
	PowerSwitch  Control = "PowerSwitch"
	ValveControl Control = "ValveControl"
	Dimming      Control = "Dimming"
	Thermostat   Control = "Thermostat"
)

// Zone 测控区（MCZ）
type Zone struct {
	ID                   int           `json:"id" yaml:"id"`
	Name                 string        `json:"name" yaml:"name"`
	Priority             int           `json:"priority" yaml:"priority"`
	RequiredMeasurements []Measurement `json:"required_measurements" yaml:"required_measurements"`
	RequiredControls     []Control     `json:"required_controls" yaml:"required_controls"`
	ReplacementAllowed   bool          `json:"replacement_allowed" yaml:"replacement_allowed"`
	// Locations 候选安装位置（全局网格坐标）
	Locations []Point `json:"locations" yaml:"locations"`
}

// HasRequirements 区域是否有测控需求
func (z *Zone) HasRequirements() bool {
	return len(z.RequiredMeasurements) > 0 || len(z.RequiredControls) > 0
}

// Validate 校验测控区
func (z *Zone) Validate() error {
	if len(z.Locations) == 0 {
		return fmt.Errorf("facility: zone %d (%s) has no candidate locations", z.ID, z.Name)
	}
	return nil
}

// ContainsAll 判断 have 是否为 want 的超集
func ContainsAll[T comparable](have, want []T) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[T]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
