package routing

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

var _ graph.WeightedUndirected = (*View)(nil)

// View 路由图在某一介质（有线/无线）下的 gonum 加权无向视图
// 邻居按边插入顺序迭代，保证最短路搜索结果可复现
type View struct {
	g         *Graph
	wireless  bool
	nodes     []graph.Node
	neighbors [][]graph.Node
}

func newView(g *Graph, wireless bool) *View {
	v := &View{
		g:         g,
		wireless:  wireless,
		nodes:     make([]graph.Node, len(g.vertices)),
		neighbors: make([][]graph.Node, len(g.vertices)),
	}
	for i := range g.vertices {
		v.nodes[i] = simple.Node(i)
		ns := make([]graph.Node, 0, len(g.adj[i]))
		for _, ei := range g.adj[i] {
			ns = append(ns, simple.Node(g.edges[ei].Other(g.vertices[i]).Index))
		}
		v.neighbors[i] = ns
	}
	return v
}

// Wireless 视图是否使用无线权重
func (v *View) Wireless() bool { return v.wireless }

// Graph 返回底层路由图
func (v *View) Graph() *Graph { return v.g }

func (v *View) valid(id int64) bool {
	return id >= 0 && id < int64(len(v.nodes))
}

// Node 实现 graph.Graph
func (v *View) Node(id int64) graph.Node {
	if !v.valid(id) {
		return nil
	}
	return v.nodes[id]
}

// Nodes 实现 graph.Graph
func (v *View) Nodes() graph.Nodes {
	return iterator.NewOrderedNodes(v.nodes)
}

// From 实现 graph.Graph
func (v *View) From(id int64) graph.Nodes {
	if !v.valid(id) || len(v.neighbors[id]) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedNodes(v.neighbors[id])
}

// HasEdgeBetween 实现 graph.Graph
func (v *View) HasEdgeBetween(xid, yid int64) bool {
	if !v.valid(xid) || !v.valid(yid) {
		return false
	}
	return v.g.EdgeBetween(int(xid), int(yid)) != nil
}

// Edge 实现 graph.Graph
func (v *View) Edge(uid, vid int64) graph.Edge {
	e := v.WeightedEdge(uid, vid)
	if e == nil {
		return nil
	}
	return e
}

// EdgeBetween 实现 graph.Undirected
func (v *View) EdgeBetween(xid, yid int64) graph.Edge {
	return v.Edge(xid, yid)
}

// WeightedEdge 实现 graph.Weighted
func (v *View) WeightedEdge(uid, vid int64) graph.WeightedEdge {
	if !v.valid(uid) || !v.valid(vid) {
		return nil
	}
	e := v.g.EdgeBetween(int(uid), int(vid))
	if e == nil {
		return nil
	}
	return simple.WeightedEdge{F: simple.Node(uid), T: simple.Node(vid), W: e.Weight(v.wireless)}
}

// WeightedEdgeBetween 实现 graph.WeightedUndirected
func (v *View) WeightedEdgeBetween(xid, yid int64) graph.WeightedEdge {
	return v.WeightedEdge(xid, yid)
}

// Weight 实现 graph.Weighted；自环权重为 0，不相邻返回 +Inf
func (v *View) Weight(xid, yid int64) (w float64, ok bool) {
	if xid == yid && v.valid(xid) {
		return 0, true
	}
	if !v.valid(xid) || !v.valid(yid) {
		return math.Inf(1), false
	}
	e := v.g.EdgeBetween(int(xid), int(yid))
	if e == nil {
		return math.Inf(1), false
	}
	return e.Weight(v.wireless), true
}
