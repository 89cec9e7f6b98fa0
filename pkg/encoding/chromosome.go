package encoding

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/kasuganosora/daqnet/pkg/project"
)

// GenesPerSection 每个测控区占用的基因数
const GenesPerSection = 5

// 区段内的基因位置，后面的基因依赖前面的取值生成
const (
	GeneDevice            = iota // 测控设备（目录下标）
	GeneDeviceVertex             // 测控设备顶点（测控区候选顶点下标）
	GeneAcquisition              // 采集设备（目录下标）
	GeneAcquisitionVertex        // 采集设备顶点（图顶点下标）
	GeneChannel                  // 通道（目录下标）
)

// ErrStaleGene 基因取值与当前目录或路由图不一致
var ErrStaleGene = errors.New("encoding: stale gene")

// StaleGeneError 基因越界的详细信息
type StaleGeneError struct {
	Gene    int // 基因下标
	Section int
	Value   int
	Limit   int // 合法取值为 [0, Limit)
}

func (e *StaleGeneError) Error() string {
	return fmt.Sprintf("encoding: stale gene %d (section %d): value %d out of [0,%d)", e.Gene, e.Section, e.Value, e.Limit)
}

// Unwrap 支持 errors.Is(err, ErrStaleGene)
func (e *StaleGeneError) Unwrap() error { return ErrStaleGene }

// Chromosome 基因型：每个测控区一个定长区段
// 随机数源由引擎持有，只能在引擎协程中生成基因
type Chromosome struct {
	project *project.Project
	rng     *rand.Rand
	genes   []int
}

// New 随机生成一个可行的染色体
func New(p *project.Project, rng *rand.Rand) *Chromosome {
	c := &Chromosome{
		project: p,
		rng:     rng,
		genes:   make([]int, p.ZoneCount()*GenesPerSection),
	}
	// 按顺序生成，后面的基因读取前面已生成的基因
	for i := range c.genes {
		c.genes[i] = c.GenerateGene(i)
	}
	return c
}

// FromGenes 用给定基因构造染色体，不做取值校验（由 Decode 负责）
func FromGenes(p *project.Project, rng *rand.Rand, genes []int) (*Chromosome, error) {
	if want := p.ZoneCount() * GenesPerSection; len(genes) != want {
		return nil, fmt.Errorf("%w: genotype length %d, want %d", ErrStaleGene, len(genes), want)
	}
	return &Chromosome{project: p, rng: rng, genes: slices.Clone(genes)}, nil
}

// Project 染色体绑定的项目
func (c *Chromosome) Project() *project.Project { return c.project }

// Len 基因总数
func (c *Chromosome) Len() int { return len(c.genes) }

// Sections 区段数（即测控区数）
func (c *Chromosome) Sections() int { return len(c.genes) / GenesPerSection }

// Genes 返回基因副本
func (c *Chromosome) Genes() []int { return slices.Clone(c.genes) }

// Gene 读取单个基因
func (c *Chromosome) Gene(i int) int { return c.genes[i] }

// SetGene 写入单个基因
func (c *Chromosome) SetGene(i, v int) { c.genes[i] = v }

// Section 返回区段基因的副本
func (c *Chromosome) Section(z int) []int {
	return slices.Clone(c.genes[z*GenesPerSection : (z+1)*GenesPerSection])
}

// GenerateGene 按可行性约束为位置 i 随机生成基因
func (c *Chromosome) GenerateGene(i int) int {
	z, k := i/GenesPerSection, i%GenesPerSection
	base := z * GenesPerSection
	p := c.project

	switch k {
	case GeneDevice:
		return c.pick(p.DeviceCandidates(z), len(p.Catalog.Devices))
	case GeneDeviceVertex:
		return c.rng.Intn(max(len(p.ZoneVertices(z)), 1))
	case GeneAcquisition:
		return c.pick(p.AcquisitionCandidates(c.genes[base+GeneDevice]), len(p.Catalog.Acquisitions))
	case GeneAcquisitionVertex:
		// 采集点位置不受约束
		return c.rng.Intn(p.Graph.VertexCount())
	default:
		device, acq := c.genes[base+GeneDevice], c.genes[base+GeneAcquisition]
		return c.pick(p.ChannelCandidates(device, acq), len(p.Catalog.Channels))
	}
}

// pick 从候选中均匀选择；前序基因失效导致候选为空时退回整个目录
func (c *Chromosome) pick(candidates []int, all int) int {
	if len(candidates) == 0 {
		return c.rng.Intn(max(all, 1))
	}
	return candidates[c.rng.Intn(len(candidates))]
}

// Repair 基因 i 变化后，重新生成同一区段中已不兼容的后续基因
func (c *Chromosome) Repair(i int) {
	z, k := i/GenesPerSection, i%GenesPerSection
	base := z * GenesPerSection
	p := c.project

	if k < GeneAcquisition &&
		!slices.Contains(p.AcquisitionCandidates(c.genes[base+GeneDevice]), c.genes[base+GeneAcquisition]) {
		c.genes[base+GeneAcquisition] = c.GenerateGene(base + GeneAcquisition)
	}
	if k < GeneChannel {
		device, acq := c.genes[base+GeneDevice], c.genes[base+GeneAcquisition]
		if !slices.Contains(p.ChannelCandidates(device, acq), c.genes[base+GeneChannel]) {
			c.genes[base+GeneChannel] = c.GenerateGene(base + GeneChannel)
		}
	}
}

// CreateNew 生成绑定同一项目的新随机染色体
func (c *Chromosome) CreateNew() *Chromosome {
	return New(c.project, c.rng)
}

// Clone 深拷贝基因，共享项目与随机数源
func (c *Chromosome) Clone() *Chromosome {
	return &Chromosome{project: c.project, rng: c.rng, genes: slices.Clone(c.genes)}
}

// String 基因的紧凑表示
func (c *Chromosome) String() string {
	return fmt.Sprint(c.genes)
}
