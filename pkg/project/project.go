package project

import (
	"errors"
	"fmt"

	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/facility"
	"github.com/kasuganosora/daqnet/pkg/routing"
)

var (
	// ErrInvalidSettings 项目参数不合法
	ErrInvalidSettings = errors.New("project: invalid settings")
	// ErrInvalidZone 测控区定义不合法
	ErrInvalidZone = errors.New("project: invalid zone")
	// ErrInfeasibleZone 测控区没有任何可行的设备/采集设备/通道组合
	ErrInfeasibleZone = errors.New("project: zone has no feasible equipment chain")
)

// Settings 项目全局参数
type Settings struct {
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`
	Budget float64 `json:"budget" yaml:"budget"`

	// 服务器月费
	LocalServerPayment  float64 `json:"local_server_payment" yaml:"local_server_payment"`
	RemoteServerPayment float64 `json:"remote_server_payment" yaml:"remote_server_payment"`

	equipment.Params `yaml:",inline"`
}

// Validate 校验项目参数
func (s *Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidSettings, s.Width, s.Height)
	}
	if s.Budget < 0 || s.UsageMonths < 0 || s.CostPerHour < 0 {
		return fmt.Errorf("%w: negative budget, usage months or cost per hour", ErrInvalidSettings)
	}
	if s.LocalServerPayment < 0 || s.RemoteServerPayment < 0 {
		return fmt.Errorf("%w: negative server payment", ErrInvalidSettings)
	}
	if s.Goal < equipment.GoalMoney || s.Goal > equipment.GoalAll {
		return fmt.Errorf("%w: unknown goal %d", ErrInvalidSettings, s.Goal)
	}
	return nil
}

// Project 一次规划运行的全部输入
// 构建完成后只读，可在并发评估间共享
type Project struct {
	Settings
	Regions []*facility.Region
	Zones   []*facility.Zone
	Catalog *equipment.Catalog
	Graph   *routing.Graph

	zoneVertices       [][]int
	zoneDevices        [][]int
	deviceAcquisitions [][]int
	channels           map[[2]int][]int
}

// New 校验输入、构建路由图并预计算可行性表
func New(s Settings, regions []*facility.Region, zones []*facility.Zone, catalog *equipment.Catalog, coef routing.Coefficients) (*Project, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	g, err := routing.Build(s.Width, s.Height, regions, coef)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Settings: s,
		Regions:  regions,
		Zones:    zones,
		Catalog:  catalog,
		Graph:    g,
		channels: make(map[[2]int][]int),
	}

	p.buildEquipmentTables()
	if err := p.buildZoneTables(); err != nil {
		return nil, err
	}
	return p, nil
}

// buildEquipmentTables 预计算设备 -> 采集设备 -> 通道的兼容关系
func (p *Project) buildEquipmentTables() {
	c := p.Catalog
	p.deviceAcquisitions = make([][]int, len(c.Devices))
	for di, d := range c.Devices {
		for ai, a := range c.Acquisitions {
			if !a.CanReceiveFrom(d) {
				continue
			}
			var chs []int
			for ci, ch := range c.Channels {
				if ch.Connects(d, a) {
					chs = append(chs, ci)
				}
			}
			if len(chs) == 0 {
				continue
			}
			p.channels[[2]int{di, ai}] = chs
			p.deviceAcquisitions[di] = append(p.deviceAcquisitions[di], ai)
		}
	}
}

func (p *Project) buildZoneTables() error {
	if len(p.Zones) == 0 {
		return fmt.Errorf("%w: no zones", ErrInvalidZone)
	}

	ids := make(map[int]bool, len(p.Zones))
	p.zoneVertices = make([][]int, len(p.Zones))
	p.zoneDevices = make([][]int, len(p.Zones))

	for zi, z := range p.Zones {
		if z == nil {
			return fmt.Errorf("%w: zone #%d is nil", ErrInvalidZone, zi)
		}
		if ids[z.ID] {
			return fmt.Errorf("%w: duplicate zone id %d", ErrInvalidZone, z.ID)
		}
		ids[z.ID] = true
		if err := z.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidZone, err)
		}

		for _, loc := range z.Locations {
			v := p.Graph.VertexAt(loc.X, loc.Y)
			if v == nil {
				return fmt.Errorf("%w: zone %d (%s) location (%d,%d) is outside the grid", ErrInvalidZone, z.ID, z.Name, loc.X, loc.Y)
			}
			p.zoneVertices[zi] = append(p.zoneVertices[zi], v.Index)
		}

		for di, d := range p.Catalog.Devices {
			if d.Covers(z) && len(p.deviceAcquisitions[di]) > 0 {
				p.zoneDevices[zi] = append(p.zoneDevices[zi], di)
			}
		}
		if len(p.zoneDevices[zi]) == 0 {
			return fmt.Errorf("%w: zone %d (%s)", ErrInfeasibleZone, z.ID, z.Name)
		}
	}
	return nil
}

// Params 成本计算参数
func (p *Project) Params() *equipment.Params {
	return &p.Settings.Params
}

// ZoneCount 测控区数量
func (p *Project) ZoneCount() int { return len(p.Zones) }

// ZoneVertices 测控区候选顶点（图顶点下标）
func (p *Project) ZoneVertices(zone int) []int {
	if zone < 0 || zone >= len(p.zoneVertices) {
		return nil
	}
	return p.zoneVertices[zone]
}

// DeviceCandidates 能覆盖测控区需求且存在可行链路的测控设备（目录下标）
func (p *Project) DeviceCandidates(zone int) []int {
	if zone < 0 || zone >= len(p.zoneDevices) {
		return nil
	}
	return p.zoneDevices[zone]
}

// AcquisitionCandidates 能接收该测控设备数据的采集设备（目录下标）
func (p *Project) AcquisitionCandidates(device int) []int {
	if device < 0 || device >= len(p.deviceAcquisitions) {
		return nil
	}
	return p.deviceAcquisitions[device]
}

// ChannelCandidates 测控设备可发送、采集设备可接收的通道（目录下标）
func (p *Project) ChannelCandidates(device, acquisition int) []int {
	return p.channels[[2]int{device, acquisition}]
}

// ServerCost 服务器费用：本地或远程月费 × 使用月数
func (p *Project) ServerCost() float64 {
	if !p.Goal.InvolvesMoney() {
		return 0
	}
	monthly := p.RemoteServerPayment
	if p.UseLocalServer {
		monthly = p.LocalServerPayment
	}
	return monthly * p.UsageMonths
}
