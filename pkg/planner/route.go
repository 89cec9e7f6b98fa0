package planner

import (
	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/routing"
)

// Leg 点到点的一段最短路
type Leg struct {
	From     int
	To       int
	Vertices []int // 含两端，From == To 时只有一个顶点
	Edges    []*routing.Edge
	Cost     float64
}

// Hops 段内边数
func (l *Leg) Hops() int { return len(l.Edges) }

// Route 一个（采集点, 通道）分组的布线结果
type Route struct {
	Topology equipment.Topology
	Wireless bool
	Legs     []Leg
}

// Cost 全部分段成本之和
func (r *Route) Cost() float64 {
	if r == nil {
		return 0
	}
	total := 0.0
	for i := range r.Legs {
		total += r.Legs[i].Cost
	}
	return total
}

// MaxHops 最长分段的边数
func (r *Route) MaxHops() int {
	if r == nil {
		return 0
	}
	longest := 0
	for i := range r.Legs {
		longest = max(longest, r.Legs[i].Hops())
	}
	return longest
}

// EdgeSet 路由用到的边（去重，按首次出现顺序）
func (r *Route) EdgeSet() []*routing.Edge {
	if r == nil {
		return nil
	}
	seen := make(map[int]bool)
	var out []*routing.Edge
	for i := range r.Legs {
		for _, e := range r.Legs[i].Edges {
			if seen[e.Index] {
				continue
			}
			seen[e.Index] = true
			out = append(out, e)
		}
	}
	return out
}
