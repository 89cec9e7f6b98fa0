package facility

import (
	"errors"
	"fmt"
)

// Position 区域边界位置，同时作为专家评估数组的下标
type Position int

const (
	Top Position = iota
	Right
	Bottom
	Left
	Inside
)

// borderOrder 边界位置的固定枚举顺序
var borderOrder = [4]Position{Top, Right, Bottom, Left}

// String 返回位置名称
func (p Position) String() string {
	switch p {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Inside:
		return "inside"
	default:
		return "unknown"
	}
}

// Opposite 返回相对的边界位置
func (p Position) Opposite() Position {
	switch p {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	case Right:
		return Left
	default:
		return p
	}
}

// ErrInvalidEstimate 评估数组长度或取值不合法
var ErrInvalidEstimate = errors.New("facility: invalid estimate array")

// Estimate 专家评估数组
// 长度为 5 时按 {top, right, bottom, left, inside} 取值，长度为 1 时各位置统一取值
type Estimate []float64

// Uniform 构造统一取值的评估
func Uniform(v float64) Estimate {
	return Estimate{v}
}

// At 返回指定位置的评估值
func (e Estimate) At(p Position) float64 {
	switch len(e) {
	case 1:
		return e[0]
	case 5:
		if p < Top || p > Inside {
			return 0
		}
		return e[p]
	default:
		return 0
	}
}

// Validate 校验评估数组
func (e Estimate) Validate() error {
	if len(e) != 1 && len(e) != 5 {
		return fmt.Errorf("%w: length %d, want 1 or 5", ErrInvalidEstimate, len(e))
	}
	for i, v := range e {
		if v < 0 {
			return fmt.Errorf("%w: negative value %g at %d", ErrInvalidEstimate, v, i)
		}
	}
	return nil
}

// Region 厂区矩形区域
type Region struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`

	// 区域设施
	HasWiredLAN bool `json:"has_wired_lan" yaml:"has_wired_lan"`
	HasWiFi     bool `json:"has_wifi" yaml:"has_wifi"`
	HasPower    bool `json:"has_power" yaml:"has_power"`

	BadMobileSignal float64 `json:"bad_mobile_signal" yaml:"bad_mobile_signal"`

	// 专家评估
	Aggressiveness        Estimate `json:"aggressiveness" yaml:"aggressiveness"`
	Unavailability        Estimate `json:"unavailability" yaml:"unavailability"`
	Laboriousness         Estimate `json:"laboriousness" yaml:"laboriousness"`
	BadRadioTransmittance Estimate `json:"bad_radio_transmittance" yaml:"bad_radio_transmittance"`
	BadWiredTransmittance Estimate `json:"bad_wired_transmittance" yaml:"bad_wired_transmittance"`
}

// Validate 校验区域尺寸与评估数组
func (r *Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("facility: region %d (%s) has non-positive size %dx%d", r.ID, r.Name, r.Width, r.Height)
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("facility: region %d (%s) has negative origin (%d,%d)", r.ID, r.Name, r.X, r.Y)
	}
	if r.BadMobileSignal < 0 {
		return fmt.Errorf("facility: region %d (%s) has negative bad_mobile_signal", r.ID, r.Name)
	}

	estimates := []struct {
		name string
		e    Estimate
	}{
		{"aggressiveness", r.Aggressiveness},
		{"unavailability", r.Unavailability},
		{"laboriousness", r.Laboriousness},
		{"bad_radio_transmittance", r.BadRadioTransmittance},
		{"bad_wired_transmittance", r.BadWiredTransmittance},
	}
	for _, est := range estimates {
		if err := est.e.Validate(); err != nil {
			return fmt.Errorf("region %d (%s) %s: %w", r.ID, r.Name, est.name, err)
		}
	}
	return nil
}

// Contains 判断全局坐标是否落在区域内
func (r *Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Borders 返回局部坐标所在的边界集合（按 top, right, bottom, left 排序）
func (r *Region) Borders(localX, localY int) []Position {
	var out []Position
	for _, p := range borderOrder {
		if r.onBorder(p, localX, localY) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Region) onBorder(p Position, localX, localY int) bool {
	switch p {
	case Top:
		return localY == 0
	case Right:
		return localX == r.Width-1
	case Bottom:
		return localY == r.Height-1
	case Left:
		return localX == 0
	}
	return false
}
