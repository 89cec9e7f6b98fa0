package routing

import (
	"errors"
	"fmt"

	"github.com/kasuganosora/daqnet/pkg/facility"
)

var (
	// ErrInvalidGrid 网格尺寸不合法
	ErrInvalidGrid = errors.New("routing: invalid grid")
	// ErrRegionLayout 区域未能恰好铺满网格
	ErrRegionLayout = errors.New("routing: regions do not tile the grid")
)

// Edge 相邻顶点之间的无向边
type Edge struct {
	Index    int
	A, B     *facility.Vertex
	Kind     EdgeKind
	Wired    float64
	Wireless float64
}

// Weight 按介质返回边权
func (e *Edge) Weight(wireless bool) float64 {
	if wireless {
		return e.Wireless
	}
	return e.Wired
}

// Other 返回边的另一端
func (e *Edge) Other(v *facility.Vertex) *facility.Vertex {
	if v.Index == e.A.Index {
		return e.B
	}
	return e.A
}

// pairKey 无向顶点对
type pairKey struct{ lo, hi int }

func newPairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// 邻域偏移：N, NE, E, SE, S, SW, W, NW
var neighborOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Graph 路由图
// 构建完成后只读，可被多个适应度评估并发读取
type Graph struct {
	width   int
	height  int
	regions []*facility.Region

	vertices []*facility.Vertex
	cells    []int // 全局 y*width+x -> 顶点下标
	byKey    map[facility.VertexKey]int

	edges []*Edge
	adj   [][]int // 顶点 -> 关联边下标（插入顺序）
	pairs map[pairKey]int

	coefficients Coefficients

	wired    *View
	wireless *View
}

// Build 根据区域集合构建路由图
// 配置错误（评估数组、区域越界、重叠或未覆盖）直接返回错误，不产生部分结果
func Build(width, height int, regions []*facility.Region, coef Coefficients) (*Graph, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, width, height)
	}
	if err := coef.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		width:        width,
		height:       height,
		regions:      regions,
		cells:        make([]int, width*height),
		byKey:        make(map[facility.VertexKey]int, width*height),
		pairs:        make(map[pairKey]int),
		coefficients: coef,
	}

	owners, err := tile(width, height, regions)
	if err != nil {
		return nil, err
	}

	// 按行优先顺序创建顶点，顶点下标即基因取值
	g.vertices = make([]*facility.Vertex, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := owners[y*width+x]
			v := &facility.Vertex{
				Region: r,
				LocalX: x - r.X,
				LocalY: y - r.Y,
				Index:  len(g.vertices),
			}
			g.cells[y*width+x] = v.Index
			g.byKey[v.Key()] = v.Index
			g.vertices = append(g.vertices, v)
		}
	}

	g.adj = make([][]int, len(g.vertices))
	for _, v := range g.vertices {
		for _, off := range neighborOffsets {
			nx, ny := v.GlobalX()+off[0], v.GlobalY()+off[1]
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			n := g.vertices[g.cells[ny*width+nx]]
			diagonal := off[0] != 0 && off[1] != 0
			if diagonal && !v.SameRegion(n) {
				continue
			}
			if _, exists := g.pairs[newPairKey(v.Index, n.Index)]; exists {
				continue
			}
			g.addEdge(v, n)
		}
	}

	g.wired = newView(g, false)
	g.wireless = newView(g, true)
	return g, nil
}

// tile 校验区域并返回每个单元格的所属区域
func tile(width, height int, regions []*facility.Region) ([]*facility.Region, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions", ErrRegionLayout)
	}

	owners := make([]*facility.Region, width*height)
	seen := make(map[int]bool, len(regions))
	for _, r := range regions {
		if r == nil {
			return nil, fmt.Errorf("%w: nil region", ErrRegionLayout)
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate region id %d", ErrRegionLayout, r.ID)
		}
		seen[r.ID] = true

		if r.X+r.Width > width || r.Y+r.Height > height {
			return nil, fmt.Errorf("%w: region %d (%s) exceeds %dx%d grid", ErrRegionLayout, r.ID, r.Name, width, height)
		}
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				if prev := owners[y*width+x]; prev != nil {
					return nil, fmt.Errorf("%w: regions %d and %d overlap at (%d,%d)", ErrRegionLayout, prev.ID, r.ID, x, y)
				}
				owners[y*width+x] = r
			}
		}
	}

	for i, r := range owners {
		if r == nil {
			return nil, fmt.Errorf("%w: cell (%d,%d) is not covered", ErrRegionLayout, i%width, i/width)
		}
	}
	return owners, nil
}

func (g *Graph) addEdge(a, b *facility.Vertex) {
	kind, wired, wireless := g.coefficients.weigh(a, b)
	e := &Edge{
		Index:    len(g.edges),
		A:        a,
		B:        b,
		Kind:     kind,
		Wired:    wired,
		Wireless: wireless,
	}
	g.edges = append(g.edges, e)
	g.pairs[newPairKey(a.Index, b.Index)] = e.Index
	g.adj[a.Index] = append(g.adj[a.Index], e.Index)
	g.adj[b.Index] = append(g.adj[b.Index], e.Index)
}

// Width 网格宽度
func (g *Graph) Width() int { return g.width }

// Height 网格高度
func (g *Graph) Height() int { return g.height }

// Regions 返回区域集合
func (g *Graph) Regions() []*facility.Region { return g.regions }

// Coefficients 返回构建时使用的系数
func (g *Graph) Coefficients() Coefficients { return g.coefficients }

// VertexCount 顶点数
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount 边数
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Vertices 有序顶点表（只读）
func (g *Graph) Vertices() []*facility.Vertex { return g.vertices }

// Edges 全部边（只读）
func (g *Graph) Edges() []*Edge { return g.edges }

// Vertex 按下标取顶点，越界返回 nil
func (g *Graph) Vertex(i int) *facility.Vertex {
	if i < 0 || i >= len(g.vertices) {
		return nil
	}
	return g.vertices[i]
}

// VertexAt 按全局坐标取顶点
func (g *Graph) VertexAt(x, y int) *facility.Vertex {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return nil
	}
	return g.vertices[g.cells[y*g.width+x]]
}

// VertexByKey 按区域与局部坐标取顶点
func (g *Graph) VertexByKey(k facility.VertexKey) *facility.Vertex {
	i, ok := g.byKey[k]
	if !ok {
		return nil
	}
	return g.vertices[i]
}

// EdgeBetween 返回两个顶点之间的边，不相邻时返回 nil
func (g *Graph) EdgeBetween(a, b int) *Edge {
	i, ok := g.pairs[newPairKey(a, b)]
	if !ok {
		return nil
	}
	return g.edges[i]
}

// Incident 返回顶点的关联边
func (g *Graph) Incident(v int) []*Edge {
	if v < 0 || v >= len(g.adj) {
		return nil
	}
	out := make([]*Edge, 0, len(g.adj[v]))
	for _, i := range g.adj[v] {
		out = append(out, g.edges[i])
	}
	return out
}

// View 返回指定介质的加权视图
func (g *Graph) View(wireless bool) *View {
	if wireless {
		return g.wireless
	}
	return g.wired
}
