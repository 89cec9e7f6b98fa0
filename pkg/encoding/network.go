package encoding

import (
	"fmt"

	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/facility"
	"github.com/kasuganosora/daqnet/pkg/planner"
	"github.com/kasuganosora/daqnet/pkg/project"
)

// Section 一个测控区解码后的设备、位置与通道
type Section struct {
	Zone              *facility.Zone
	Device            *equipment.MeasurementDevice
	DeviceVertex      *facility.Vertex
	Acquisition       *equipment.AcquisitionDevice
	AcquisitionVertex *facility.Vertex
	Channel           *equipment.Channel
}

// PointKey 采集点键：采集设备 ID + 顶点键
type PointKey struct {
	AcquisitionID int
	Vertex        facility.VertexKey
}

func (k PointKey) String() string {
	return fmt.Sprintf("acq#%d@%d:(%d,%d)", k.AcquisitionID, k.Vertex.RegionID, k.Vertex.LocalX, k.Vertex.LocalY)
}

// Link 采集点上一条通道及其连接的测控设备
type Link struct {
	Channel  *equipment.Channel
	Sections []*Section
	Route    *planner.Route
	// Err 布线失败原因，此时 Route 为 nil
	Err error
}

// Targets 通道连接的测控设备顶点
func (l *Link) Targets() []int {
	out := make([]int, len(l.Sections))
	for i, s := range l.Sections {
		out[i] = s.DeviceVertex.Index
	}
	return out
}

// Group 共享同一采集点的区段
type Group struct {
	Key         PointKey
	Acquisition *equipment.AcquisitionDevice
	Vertex      *facility.Vertex
	Sections    []*Section
	Links       []*Link
}

// Network 候选网络（表现型）
type Network struct {
	Sections []*Section
	Groups   []*Group
}

// DeviceCount 测控设备数量
func (n *Network) DeviceCount() int { return len(n.Sections) }

// LinkCount 通道链路数量
func (n *Network) LinkCount() int {
	total := 0
	for _, g := range n.Groups {
		total += len(g.Links)
	}
	return total
}

// Decode 解码为候选网络并为每条链路布线
// 越界基因返回 *StaleGeneError，不会 panic
func (c *Chromosome) Decode() (*Network, error) {
	sections, err := c.decodeSections()
	if err != nil {
		return nil, err
	}
	return Assemble(c.project, sections), nil
}

func (c *Chromosome) decodeSections() ([]*Section, error) {
	p := c.project
	if want := p.ZoneCount() * GenesPerSection; len(c.genes) != want {
		return nil, fmt.Errorf("%w: genotype length %d, want %d", ErrStaleGene, len(c.genes), want)
	}

	sections := make([]*Section, p.ZoneCount())
	for z := range sections {
		base := z * GenesPerSection
		zoneVertices := p.ZoneVertices(z)

		limits := [GenesPerSection]int{
			GeneDevice:            len(p.Catalog.Devices),
			GeneDeviceVertex:      len(zoneVertices),
			GeneAcquisition:       len(p.Catalog.Acquisitions),
			GeneAcquisitionVertex: p.Graph.VertexCount(),
			GeneChannel:           len(p.Catalog.Channels),
		}
		for k, limit := range limits {
			if v := c.genes[base+k]; v < 0 || v >= limit {
				return nil, &StaleGeneError{Gene: base + k, Section: z, Value: v, Limit: limit}
			}
		}

		sections[z] = &Section{
			Zone:              p.Zones[z],
			Device:            p.Catalog.Devices[c.genes[base+GeneDevice]],
			DeviceVertex:      p.Graph.Vertex(zoneVertices[c.genes[base+GeneDeviceVertex]]),
			Acquisition:       p.Catalog.Acquisitions[c.genes[base+GeneAcquisition]],
			AcquisitionVertex: p.Graph.Vertex(c.genes[base+GeneAcquisitionVertex]),
			Channel:           p.Catalog.Channels[c.genes[base+GeneChannel]],
		}
	}
	return sections, nil
}

// Assemble 按采集点与通道分组并布线
// 分组与链路都保持首次出现的顺序
func Assemble(p *project.Project, sections []*Section) *Network {
	n := &Network{Sections: sections}
	groups := make(map[PointKey]*Group)

	for _, s := range sections {
		key := PointKey{AcquisitionID: s.Acquisition.ID, Vertex: s.AcquisitionVertex.Key()}
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key, Acquisition: s.Acquisition, Vertex: s.AcquisitionVertex}
			groups[key] = g
			n.Groups = append(n.Groups, g)
		}
		g.Sections = append(g.Sections, s)
		g.link(s)
	}

	for _, g := range n.Groups {
		for _, l := range g.Links {
			l.Route, l.Err = planner.Plan(p.Graph, g.Vertex.Index, l.Targets(), l.Channel)
		}
	}
	return n
}

func (g *Group) link(s *Section) {
	for _, l := range g.Links {
		if l.Channel.ID == s.Channel.ID {
			l.Sections = append(l.Sections, s)
			return
		}
	}
	g.Links = append(g.Links, &Link{Channel: s.Channel, Sections: []*Section{s}})
}
