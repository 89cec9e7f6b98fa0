package fitness

import (
	"time"

	"github.com/kasuganosora/daqnet/pkg/encoding"
	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/logging"
	"github.com/kasuganosora/daqnet/pkg/monitor"
	"github.com/kasuganosora/daqnet/pkg/project"
)

// GroupCost 一个采集点的成本构成
type GroupCost struct {
	Key         encoding.PointKey
	Acquisition float64
	Devices     float64
	Connections float64
	Total       float64
}

// Breakdown 候选网络的成本构成
type Breakdown struct {
	Server     float64
	Groups     []GroupCost
	Total      float64
	OverBudget bool
}

// Feasible 总成本是否可接受
func (b *Breakdown) Feasible() bool {
	return !equipment.IsUnacceptable(b.Total)
}

// Evaluator 适应度评估器，适应度 = -总成本
// 只读共享项目数据，可被多个协程并发调用
type Evaluator struct {
	project              *project.Project
	logger               logging.Logger
	metrics              *monitor.MetricsCollector
	cache                *Cache
	penalizeDecodeErrors bool
}

// Option 评估器选项
type Option func(*Evaluator)

// WithLogger 设置日志
func WithLogger(l logging.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithMetrics 设置监控指标
func WithMetrics(m *monitor.MetricsCollector) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// WithCache 设置适应度缓存
func WithCache(c *Cache) Option {
	return func(e *Evaluator) { e.cache = c }
}

// WithDecodePenalty 解码失败时返回 -Unacceptable 而不是 0
func WithDecodePenalty(enabled bool) Option {
	return func(e *Evaluator) { e.penalizeDecodeErrors = enabled }
}

// NewEvaluator 创建评估器
func NewEvaluator(p *project.Project, opts ...Option) *Evaluator {
	e := &Evaluator{
		project: p,
		logger:  logging.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate 计算染色体适应度，不会 panic
func (e *Evaluator) Evaluate(c *encoding.Chromosome) float64 {
	if c == nil {
		e.metrics.RecordEvaluation(monitor.OutcomeDecodeError, 0)
		return e.decodeScore()
	}

	var key uint64
	if e.cache != nil {
		key = Key(c.Genes())
		if f, ok := e.cache.Get(key); ok {
			e.metrics.CacheHit()
			return f
		}
		e.metrics.CacheMiss()
	}

	start := time.Now()
	fitness, outcome := e.score(c)
	e.metrics.RecordEvaluation(outcome, time.Since(start))

	if e.cache != nil && outcome != monitor.OutcomePanic {
		e.cache.Set(key, fitness)
	}
	return fitness
}

func (e *Evaluator) score(c *encoding.Chromosome) (fitness float64, outcome monitor.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("fitness: evaluation of %s panicked: %v", c, r)
			fitness, outcome = -equipment.Unacceptable, monitor.OutcomePanic
		}
	}()

	n, err := c.Decode()
	if err != nil {
		e.logger.Warn("fitness: decode failed for %s: %v", c, err)
		return e.decodeScore(), monitor.OutcomeDecodeError
	}

	b := e.Breakdown(n)
	if !b.Feasible() {
		return -b.Total, monitor.OutcomeInfeasible
	}
	return -b.Total, monitor.OutcomeFeasible
}

// decodeScore 解码失败的得分：默认中性的 0，可配置为惩罚
func (e *Evaluator) decodeScore() float64 {
	if e.penalizeDecodeErrors {
		return -equipment.Unacceptable
	}
	return 0
}

// Cost 候选网络的总成本
func (e *Evaluator) Cost(n *encoding.Network) float64 {
	return e.Breakdown(n).Total
}

// Breakdown 计算候选网络的成本构成
// 总成本 = 服务器费用 + Σ 采集点（采集设备 + 测控设备 + 通道连接）
func (e *Evaluator) Breakdown(n *encoding.Network) *Breakdown {
	b := &Breakdown{Server: e.project.ServerCost()}
	b.Total = b.Server

	for _, g := range n.Groups {
		gc := e.groupCost(g)
		b.Groups = append(b.Groups, gc)
		b.Total += gc.Total
	}

	if equipment.IsUnacceptable(b.Total) {
		b.Total = equipment.Unacceptable
		return b
	}
	if e.project.Budget > 0 && e.project.Goal.InvolvesMoney() && b.Total > e.project.Budget {
		b.OverBudget = true
		b.Total = equipment.Unacceptable
	}
	return b
}

func (e *Evaluator) groupCost(g *encoding.Group) GroupCost {
	params := e.project.Params()
	gc := GroupCost{
		Key:         g.Key,
		Acquisition: g.Acquisition.Cost(params, g.Vertex),
	}
	for _, s := range g.Sections {
		gc.Devices += s.Device.Cost(params, s.DeviceVertex)
	}

	// 采集设备每种标准的接入上限由该标准的全部链路共享
	load := make(map[equipment.Standard]int)
	for _, l := range g.Links {
		load[l.Channel.Standard] += len(l.Sections)
	}
	for _, l := range g.Links {
		limit := g.Acquisition.Capacity(l.Channel.Standard)
		if limit > 0 && load[l.Channel.Standard] > limit {
			gc.Connections += equipment.Unacceptable
			continue
		}
		gc.Connections += e.ConnectionCost(g, l)
	}

	gc.Total = gc.Acquisition + gc.Devices + gc.Connections
	return gc
}

// ConnectionCost 一条（采集点, 通道）链路的连接成本
// 标准不兼容、超过通道接入上限、布线失败或超出通道距离时为 Unacceptable
func (e *Evaluator) ConnectionCost(g *encoding.Group, l *encoding.Link) float64 {
	ch := l.Channel
	if !g.Acquisition.Receives(ch.Standard) {
		return equipment.Unacceptable
	}
	for _, s := range l.Sections {
		if !s.Device.Sends(ch.Standard) {
			return equipment.Unacceptable
		}
	}
	if ch.MaxDevicesConnected > 0 && len(l.Sections) > ch.MaxDevicesConnected {
		return equipment.Unacceptable
	}
	if l.Err != nil || l.Route == nil {
		return equipment.Unacceptable
	}
	if ch.MaxRange > 0 && l.Route.MaxHops() > ch.MaxRange {
		return equipment.Unacceptable
	}
	return l.Route.Cost() + ch.Cost(e.project.Params(), g.Vertex)
}
