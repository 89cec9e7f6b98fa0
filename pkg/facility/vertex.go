package facility

import "fmt"

// VertexKey 顶点的可比较标识：所属区域 + 局部坐标
type VertexKey struct {
	RegionID int
	LocalX   int
	LocalY   int
}

// Vertex 网格单元
type Vertex struct {
	Region *Region
	LocalX int
	LocalY int
	// Index 在路由图有序顶点表中的下标
	Index int
}

// Key 返回顶点标识
func (v *Vertex) Key() VertexKey {
	return VertexKey{RegionID: v.Region.ID, LocalX: v.LocalX, LocalY: v.LocalY}
}

// GlobalX 全局横坐标
func (v *Vertex) GlobalX() int { return v.Region.X + v.LocalX }

// GlobalY 全局纵坐标
func (v *Vertex) GlobalY() int { return v.Region.Y + v.LocalY }

// IsInside 两个局部坐标都严格位于区域内部
func (v *Vertex) IsInside() bool {
	return v.LocalX != 0 && v.LocalX != v.Region.Width-1 &&
		v.LocalY != 0 && v.LocalY != v.Region.Height-1
}

// Borders 顶点所在的边界集合
func (v *Vertex) Borders() []Position {
	return v.Region.Borders(v.LocalX, v.LocalY)
}

// Position 顶点的代表位置：第一个所在边界，内部顶点为 Inside
func (v *Vertex) Position() Position {
	if b := v.Borders(); len(b) > 0 {
		return b[0]
	}
	return Inside
}

// SameRegion 两顶点是否属于同一区域
func (v *Vertex) SameRegion(o *Vertex) bool {
	return v.Region.ID == o.Region.ID
}

// Less 先按区域 ID，再按局部坐标排序
func (v *Vertex) Less(o *Vertex) bool {
	if v.Region.ID != o.Region.ID {
		return v.Region.ID < o.Region.ID
	}
	if v.LocalY != o.LocalY {
		return v.LocalY < o.LocalY
	}
	return v.LocalX < o.LocalX
}

func (v *Vertex) String() string {
	return fmt.Sprintf("%s(%d,%d)", v.Region.Name, v.LocalX, v.LocalY)
}

// Point 全局网格坐标
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}
