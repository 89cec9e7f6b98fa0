package planner

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"

	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/routing"
)

var (
	// ErrUnreachable 目标与源点不连通
	ErrUnreachable = errors.New("planner: target unreachable")
	// ErrInvalidVertex 顶点下标越界
	ErrInvalidVertex = errors.New("planner: invalid vertex")
	// ErrUnknownTopology 未知拓扑
	ErrUnknownTopology = errors.New("planner: unknown topology")
)

// Planner 拓扑布线策略
type Planner interface {
	// Plan 从 source 出发连接全部 targets
	// 每个目标恰好产生一段，段的顺序即连接顺序
	Plan(g *routing.Graph, source int, targets []int, wireless bool) (*Route, error)
}

// ForTopology 返回拓扑对应的布线策略
func ForTopology(t equipment.Topology) (Planner, error) {
	switch t {
	case equipment.Star:
		return Star{}, nil
	case equipment.Bus:
		return Bus{}, nil
	case equipment.Mesh:
		return Mesh{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTopology, t)
}

// Plan 按通道的拓扑与介质为一组设备布线
func Plan(g *routing.Graph, source int, targets []int, ch *equipment.Channel) (*Route, error) {
	if ch == nil {
		return nil, fmt.Errorf("%w: nil channel", ErrUnknownTopology)
	}
	p, err := ForTopology(ch.Topology)
	if err != nil {
		return nil, err
	}
	route, err := p.Plan(g, source, targets, ch.Wireless)
	if err != nil {
		return nil, err
	}
	route.Topology = ch.Topology
	return route, nil
}

func checkVertices(g *routing.Graph, source int, targets []int) error {
	if g.Vertex(source) == nil {
		return fmt.Errorf("%w: source %d", ErrInvalidVertex, source)
	}
	for _, t := range targets {
		if g.Vertex(t) == nil {
			return fmt.Errorf("%w: target %d", ErrInvalidVertex, t)
		}
	}
	return nil
}

// searcher 单次规划内的最短路树缓存
// 每次调用独享，不与其他评估共享状态
type searcher struct {
	view  *routing.View
	trees map[int]path.Shortest
}

func newSearcher(g *routing.Graph, wireless bool) *searcher {
	return &searcher{
		view:  g.View(wireless),
		trees: make(map[int]path.Shortest),
	}
}

func (s *searcher) tree(from int) path.Shortest {
	t, ok := s.trees[from]
	if !ok {
		t = path.DijkstraFrom(s.view.Node(int64(from)), s.view)
		s.trees[from] = t
	}
	return t
}

// distance 最短路长度，不连通时为 +Inf
func (s *searcher) distance(from, to int) float64 {
	if from == to {
		return 0
	}
	return s.tree(from).WeightTo(int64(to))
}

// leg 生成一段最短路
func (s *searcher) leg(from, to int) (Leg, error) {
	if from == to {
		return Leg{From: from, To: to, Vertices: []int{from}}, nil
	}

	nodes, w := s.tree(from).To(int64(to))
	if len(nodes) == 0 || math.IsInf(w, 1) {
		return Leg{}, fmt.Errorf("%w: %d -> %d", ErrUnreachable, from, to)
	}

	g := s.view.Graph()
	l := Leg{
		From:     from,
		To:       to,
		Vertices: make([]int, len(nodes)),
		Edges:    make([]*routing.Edge, 0, len(nodes)-1),
		Cost:     w,
	}
	for i, n := range nodes {
		l.Vertices[i] = int(n.ID())
		if i > 0 {
			l.Edges = append(l.Edges, g.EdgeBetween(l.Vertices[i-1], l.Vertices[i]))
		}
	}
	return l, nil
}

// Star 星型：源点到每个目标独立取最短路
type Star struct{}

// Plan 实现 Planner
func (Star) Plan(g *routing.Graph, source int, targets []int, wireless bool) (*Route, error) {
	if err := checkVertices(g, source, targets); err != nil {
		return nil, err
	}
	s := newSearcher(g, wireless)
	r := &Route{Topology: equipment.Star, Wireless: wireless, Legs: make([]Leg, 0, len(targets))}
	for _, t := range targets {
		l, err := s.leg(source, t)
		if err != nil {
			return nil, err
		}
		r.Legs = append(r.Legs, l)
	}
	return r, nil
}

// Bus 总线型：从链尾贪心连接最近的剩余目标
type Bus struct{}

// Plan 实现 Planner
func (Bus) Plan(g *routing.Graph, source int, targets []int, wireless bool) (*Route, error) {
	if err := checkVertices(g, source, targets); err != nil {
		return nil, err
	}
	s := newSearcher(g, wireless)
	r := &Route{Topology: equipment.Bus, Wireless: wireless, Legs: make([]Leg, 0, len(targets))}

	remaining := append([]int(nil), targets...)
	tail := source
	for len(remaining) > 0 {
		best, bestDist := -1, math.Inf(1)
		for i, t := range remaining {
			// 严格小于：等价时保留先遇到的目标
			if d := s.distance(tail, t); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("%w: %d -> %v", ErrUnreachable, tail, remaining)
		}

		l, err := s.leg(tail, remaining[best])
		if err != nil {
			return nil, err
		}
		r.Legs = append(r.Legs, l)
		tail = remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return r, nil
}

// Mesh 网状：从已连接点集合中反复选择全局最近的（源, 目标）对
type Mesh struct{}

// Plan 实现 Planner
func (Mesh) Plan(g *routing.Graph, source int, targets []int, wireless bool) (*Route, error) {
	if err := checkVertices(g, source, targets); err != nil {
		return nil, err
	}
	s := newSearcher(g, wireless)
	r := &Route{Topology: equipment.Mesh, Wireless: wireless, Legs: make([]Leg, 0, len(targets))}

	sources := []int{source}
	remaining := append([]int(nil), targets...)
	for len(remaining) > 0 {
		bestSrc, bestTgt, bestDist := -1, -1, math.Inf(1)
		for _, from := range sources {
			for i, t := range remaining {
				if d := s.distance(from, t); d < bestDist {
					bestSrc, bestTgt, bestDist = from, i, d
				}
			}
		}
		if bestTgt < 0 {
			return nil, fmt.Errorf("%w: %v -> %v", ErrUnreachable, sources, remaining)
		}

		to := remaining[bestTgt]
		l, err := s.leg(bestSrc, to)
		if err != nil {
			return nil, err
		}
		r.Legs = append(r.Legs, l)
		sources = append(sources, to)
		remaining = append(remaining[:bestTgt], remaining[bestTgt+1:]...)
	}
	return r, nil
}
