package equipment

import (
	"sort"

	"github.com/kasuganosora/daqnet/pkg/facility"
)

// Device 设备公共属性
type Device struct {
	ID                  int        `json:"id" yaml:"id"`
	Name                string     `json:"name" yaml:"name"`
	PurchasePrice       float64    `json:"purchase_price" yaml:"purchase_price"`
	InstallPrice        float64    `json:"install_price" yaml:"install_price"`
	InstallTime         float64    `json:"install_time" yaml:"install_time"` // 小时
	PowerRequired       bool       `json:"power_required" yaml:"power_required"`
	BatteryTime         float64    `json:"battery_time" yaml:"battery_time"` // 小时
	BatteryServicePrice float64    `json:"battery_service_price" yaml:"battery_service_price"`
	Standards           []Standard `json:"standards" yaml:"standards"`
}

// Supports 设备是否支持指定通信标准
func (d *Device) Supports(s Standard) bool {
	for _, std := range d.Standards {
		if std == s {
			return true
		}
	}
	return false
}

// needsBatteryService 设备在该位置是否需要定期更换电池
// 需要外部供电且该区域有电源时不需要
func (d *Device) needsBatteryService(v *facility.Vertex) bool {
	if d.BatteryTime <= 0 {
		return false
	}
	hasPower := v != nil && v.Region != nil && v.Region.HasPower
	return !(d.PowerRequired && hasPower)
}

func (d *Device) inputs(v *facility.Vertex) costInputs {
	return costInputs{
		purchase:       d.PurchasePrice,
		installPrice:   d.InstallPrice,
		installTime:    d.InstallTime,
		battery:        d.needsBatteryService(v),
		batteryTime:    d.BatteryTime,
		batteryService: d.BatteryServicePrice,
	}
}

// MeasurementDevice 测控设备
type MeasurementDevice struct {
	Device       `yaml:",inline"`
	Measurements []facility.Measurement `json:"measurements" yaml:"measurements"`
	Controls     []facility.Control     `json:"controls" yaml:"controls"`
}

// Covers 设备提供的测量与控制是否覆盖测控区需求
func (m *MeasurementDevice) Covers(z *facility.Zone) bool {
	return facility.ContainsAll(m.Measurements, z.RequiredMeasurements) &&
		facility.ContainsAll(m.Controls, z.RequiredControls)
}

// Sends 设备能否以该标准发送数据
func (m *MeasurementDevice) Sends(s Standard) bool {
	return m.Supports(s)
}

// Cost 设备在指定顶点的成本
func (m *MeasurementDevice) Cost(p *Params, v *facility.Vertex) float64 {
	if m == nil || p == nil {
		return 0
	}
	return p.cost(m.inputs(v), v)
}

// AcquisitionDevice 数据采集设备
type AcquisitionDevice struct {
	Device `yaml:",inline"`
	// Receivers 可接收的通信标准 -> 最大接入设备数（0 表示不限）
	Receivers map[Standard]int `json:"receivers" yaml:"receivers"`
	// Uplinks 支持的服务器上行连接类型
	Uplinks []ConnectionType `json:"uplinks" yaml:"uplinks"`
}

// Receives 能否接收指定标准
func (a *AcquisitionDevice) Receives(s Standard) bool {
	_, ok := a.Receivers[s]
	return ok
}

// Capacity 指定标准的最大接入数，0 表示不限
func (a *AcquisitionDevice) Capacity(s Standard) int {
	return a.Receivers[s]
}

// ReceivableStandards 可接收的标准（排序后返回）
func (a *AcquisitionDevice) ReceivableStandards() []Standard {
	out := make([]Standard, 0, len(a.Receivers))
	for s := range a.Receivers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanReceiveFrom 与测控设备是否至少有一个共同标准
func (a *AcquisitionDevice) CanReceiveFrom(m *MeasurementDevice) bool {
	for _, s := range m.Standards {
		if a.Receives(s) {
			return true
		}
	}
	return false
}

// HasUplink 是否支持上行连接类型
func (a *AcquisitionDevice) HasUplink(c ConnectionType) bool {
	for _, u := range a.Uplinks {
		if u == c {
			return true
		}
	}
	return false
}

// reachesServer 能否经区域内有线或 WiFi 局域网连到服务器
func (a *AcquisitionDevice) reachesServer(p *Params, r *facility.Region) bool {
	if !p.UseLocalServer && !p.InternetAvailable {
		return false
	}
	return (r.HasWiredLAN && a.HasUplink(UplinkEthernet)) ||
		(r.HasWiFi && a.HasUplink(UplinkWiFi))
}

// UplinkCost 上行连接的附加成本
// 无法经局域网连到服务器时选用项目与设备都支持的最便宜移动套餐，没有可用套餐则不可接受
func (a *AcquisitionDevice) UplinkCost(p *Params, v *facility.Vertex) float64 {
	if v == nil || v.Region == nil {
		return Unacceptable
	}
	if a.reachesServer(p, v.Region) {
		return 0
	}
	plan, ok := p.CheapestPlan(a.Uplinks)
	if !ok {
		return Unacceptable
	}
	if !p.Goal.InvolvesMoney() {
		return 0
	}
	return plan.MonthlyPayment*p.UsageMonths + plan.ModemPrice*SignalMultiplier(v.Region)
}

// Cost 采集设备在指定顶点的成本（含上行）
func (a *AcquisitionDevice) Cost(p *Params, v *facility.Vertex) float64 {
	if a == nil || p == nil {
		return Unacceptable
	}
	uplink := a.UplinkCost(p, v)
	if IsUnacceptable(uplink) {
		return Unacceptable
	}
	return p.cost(a.inputs(v), v) + uplink
}

// Channel 传输通道
type Channel struct {
	ID       int      `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Standard Standard `json:"standard" yaml:"standard"`
	Wireless bool     `json:"wireless" yaml:"wireless"`
	Topology Topology `json:"topology" yaml:"topology"`
	// MaxRange 单段路由允许的最大边数，0 表示不限
	MaxRange int `json:"max_range" yaml:"max_range"`
	// MaxDevicesConnected 最大接入设备数，0 表示不限
	MaxDevicesConnected int `json:"max_devices_connected" yaml:"max_devices_connected"`

	PurchasePrice float64 `json:"purchase_price" yaml:"purchase_price"`
	InstallPrice  float64 `json:"install_price" yaml:"install_price"`
	InstallTime   float64 `json:"install_time" yaml:"install_time"`
}

// Cost 通道在采集点的固定成本
func (c *Channel) Cost(p *Params, v *facility.Vertex) float64 {
	if c == nil || p == nil {
		return 0
	}
	return p.cost(costInputs{
		purchase:     c.PurchasePrice,
		installPrice: c.InstallPrice,
		installTime:  c.InstallTime,
	}, v)
}

// Connects 通道能否连接测控设备与采集设备
func (c *Channel) Connects(m *MeasurementDevice, a *AcquisitionDevice) bool {
	return m.Sends(c.Standard) && a.Receives(c.Standard)
}
