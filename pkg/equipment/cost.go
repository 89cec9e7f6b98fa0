package equipment

import (
	"math"

	"github.com/kasuganosora/daqnet/pkg/facility"
)

const (
	// Unacceptable 不可行候选的成本哨兵值
	Unacceptable = 1e15

	// HoursPerMonth 每月平均小时数
	HoursPerMonth = 730.0

	// maxMultiplier 施工难度与信号系数的上限
	maxMultiplier = 4.0
)

// IsUnacceptable 成本是否达到不可行哨兵值
func IsUnacceptable(c float64) bool {
	return c >= Unacceptable || math.IsNaN(c) || math.IsInf(c, 1)
}

// MobilePlan 移动数据套餐
type MobilePlan struct {
	Type           ConnectionType `json:"type" yaml:"type"`
	MonthlyPayment float64        `json:"monthly_payment" yaml:"monthly_payment"`
	// ModemPrice 额外购置成本，按区域移动信号差的程度放大
	ModemPrice float64 `json:"modem_price" yaml:"modem_price"`
}

// Params 成本计算用到的项目参数
type Params struct {
	Goal              Goal         `json:"minimization_goal" yaml:"minimization_goal"`
	UsageMonths       float64      `json:"usage_months" yaml:"usage_months"`
	UseLocalServer    bool         `json:"use_local_server" yaml:"use_local_server"`
	UseLocalEmployee  bool         `json:"use_local_employee" yaml:"use_local_employee"`
	InternetAvailable bool         `json:"internet_available" yaml:"internet_available"`
	CostPerHour       float64      `json:"cost_per_hour" yaml:"cost_per_hour"`
	MobilePlans       []MobilePlan `json:"mobile_plans" yaml:"mobile_plans"`
}

// UsageHours 使用期总小时数
func (p *Params) UsageHours() float64 {
	return p.UsageMonths * HoursPerMonth
}

// CheapestPlan 在设备支持的连接类型中选择月费最低的移动套餐
func (p *Params) CheapestPlan(supported []ConnectionType) (MobilePlan, bool) {
	var (
		best  MobilePlan
		found bool
	)
	for _, plan := range p.MobilePlans {
		if !plan.Type.IsMobile() {
			continue
		}
		ok := false
		for _, c := range supported {
			if c == plan.Type {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		if !found || plan.MonthlyPayment < best.MonthlyPayment {
			best = plan
			found = true
		}
	}
	return best, found
}

// LaboriousnessMultiplier 施工难度系数 1 + laboriousness/10，上限 4
func LaboriousnessMultiplier(v *facility.Vertex) float64 {
	if v == nil || v.Region == nil {
		return 1
	}
	return math.Min(1+v.Region.Laboriousness.At(v.Position())/10, maxMultiplier)
}

// SignalMultiplier 移动信号系数 1 + badMobileSignal/10，上限 4
func SignalMultiplier(r *facility.Region) float64 {
	if r == nil {
		return 1
	}
	return math.Min(1+r.BadMobileSignal/10, maxMultiplier)
}

// costInputs 成本计算的输入项
type costInputs struct {
	purchase       float64
	installPrice   float64
	installTime    float64
	battery        bool
	batteryTime    float64
	batteryService float64
}

// cost 按最小化目标计算成本
func (p *Params) cost(in costInputs, v *facility.Vertex) float64 {
	mult := LaboriousnessMultiplier(v)
	timeCost := in.installTime * mult

	if p.Goal == GoalTime {
		return timeCost
	}

	money := in.purchase
	if !p.UseLocalEmployee {
		money += in.installPrice * mult
	}

	if p.Goal.WithMaintenance() && in.battery && !p.UseLocalEmployee && in.batteryTime > 0 {
		replacements := p.UsageHours() / in.batteryTime
		money += replacements * in.batteryService * mult
	}

	if p.Goal == GoalAll {
		money += timeCost * p.CostPerHour
	}
	return money
}
