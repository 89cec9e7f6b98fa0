package routing

import (
	"fmt"

	"github.com/kasuganosora/daqnet/pkg/facility"
)

// EdgeKind 边相对区域边界的分类
type EdgeKind int

const (
	// AcrossBorder 端点属于不同区域
	AcrossBorder EdgeKind = iota
	// AlongBorder 同一区域，至少一个端点位于边界
	AlongBorder
	// InsideRegion 同一区域内部
	InsideRegion
)

// String 返回分类名称
func (k EdgeKind) String() string {
	switch k {
	case AcrossBorder:
		return "across"
	case AlongBorder:
		return "along"
	case InsideRegion:
		return "inside"
	default:
		return "unknown"
	}
}

// Coefficients 局部有线权重系数
// 局部有线权重 = Unavailability*不可达性 + Laboriousness*施工难度 + Aggressiveness*环境侵蚀性
type Coefficients struct {
	Unavailability float64 `json:"unavailability" yaml:"unavailability"`
	Laboriousness  float64 `json:"laboriousness" yaml:"laboriousness"`
	Aggressiveness float64 `json:"aggressiveness" yaml:"aggressiveness"`
}

// DefaultCoefficients 返回默认系数 0.4/0.3/0.3
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Unavailability: 0.4,
		Laboriousness:  0.3,
		Aggressiveness: 0.3,
	}
}

// Validate 校验系数
func (c Coefficients) Validate() error {
	if c.Unavailability < 0 || c.Laboriousness < 0 || c.Aggressiveness < 0 {
		return fmt.Errorf("routing: negative wired weight coefficient %+v", c)
	}
	return nil
}

// LocalWired 计算区域在指定位置的局部有线权重
func (c Coefficients) LocalWired(r *facility.Region, p facility.Position) float64 {
	return c.Unavailability*r.Unavailability.At(p) +
		c.Laboriousness*r.Laboriousness.At(p) +
		c.Aggressiveness*r.Aggressiveness.At(p)
}

// weigh 计算相邻顶点之间的边分类与权重，结果与端点顺序无关
func (c Coefficients) weigh(a, b *facility.Vertex) (kind EdgeKind, wired, wireless float64) {
	if !a.SameRegion(b) {
		pa := facing(a, b)
		pb := pa.Opposite()
		ra, rb := a.Region, b.Region

		wireless = (ra.BadRadioTransmittance.At(pa) + rb.BadRadioTransmittance.At(pb)) / 2
		wired = ((ra.BadWiredTransmittance.At(pa) + c.LocalWired(ra, pa)) +
			(rb.BadWiredTransmittance.At(pb) + c.LocalWired(rb, pb))) / 2
		return AcrossBorder, wired, wireless
	}

	pos, along := edgePosition(a, b)
	kind = InsideRegion
	if along {
		kind = AlongBorder
	}
	wireless = a.Region.BadRadioTransmittance.At(facility.Inside)
	wired = c.LocalWired(a.Region, pos)
	return kind, wired, wireless
}

// facing 返回 a 朝向 b 的边界位置（跨区域边只有横纵方向）
func facing(a, b *facility.Vertex) facility.Position {
	dx := b.GlobalX() - a.GlobalX()
	dy := b.GlobalY() - a.GlobalY()
	switch {
	case dx > 0:
		return facility.Right
	case dx < 0:
		return facility.Left
	case dy > 0:
		return facility.Bottom
	default:
		return facility.Top
	}
}

// edgePosition 同区域边的相关位置
// 优先取两端共有的第一个边界，否则取并集中的第一个边界；两端都在内部时为 Inside
func edgePosition(a, b *facility.Vertex) (facility.Position, bool) {
	ba, bb := a.Borders(), b.Borders()
	if len(ba) == 0 && len(bb) == 0 {
		return facility.Inside, false
	}
	for _, p := range ba {
		for _, q := range bb {
			if p == q {
				return p, true
			}
		}
	}
	first := facility.Inside
	for _, p := range append(ba, bb...) {
		if p < first {
			first = p
		}
	}
	return first, true
}
