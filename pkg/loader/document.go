package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/facility"
	"github.com/kasuganosora/daqnet/pkg/project"
	"github.com/kasuganosora/daqnet/pkg/routing"
)

// ErrUnsupportedFormat 无法识别的文件格式
var ErrUnsupportedFormat = errors.New("loader: unsupported format")

// Format 文档格式
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf 根据扩展名判断格式
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Document 厂区描述文档：项目参数、区域、测控区与（可选的）设备目录
type Document struct {
	Settings project.Settings `json:"settings" yaml:"settings"`
	// Routing 覆盖运行配置中的有线权重系数
	Routing *routing.Coefficients `json:"routing,omitempty" yaml:"routing,omitempty"`
	Regions []*facility.Region    `json:"regions" yaml:"regions"`
	Zones   []*facility.Zone      `json:"zones" yaml:"zones"`
	Catalog *equipment.Catalog    `json:"catalog,omitempty" yaml:"catalog,omitempty"`
}

// ParseDocument 解析文档，JSON 拒绝未知字段
func ParseDocument(data []byte, format Format) (*Document, error) {
	doc := &Document{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("loader: parse json document: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("loader: parse yaml document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return doc, nil
}

// LoadDocument 读取文档文件
func LoadDocument(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read document: %w", err)
	}
	return ParseDocument(data, format)
}

// Project 由文档构建项目，文档未指定系数时使用 coef
func (d *Document) Project(coef routing.Coefficients) (*project.Project, error) {
	if d.Routing != nil {
		coef = *d.Routing
	}
	return project.New(d.Settings, d.Regions, d.Zones, d.Catalog, coef)
}

// Load 读取厂区文档，catalogPath 非空时用工作簿中的目录替换文档内的目录
func Load(facilityPath, catalogPath string, coef routing.Coefficients) (*project.Project, error) {
	doc, err := LoadDocument(facilityPath)
	if err != nil {
		return nil, err
	}
	if catalogPath != "" {
		catalog, err := LoadCatalog(catalogPath)
		if err != nil {
			return nil, err
		}
		doc.Catalog = catalog
	}
	if doc.Catalog == nil {
		return nil, fmt.Errorf("loader: %s has no catalog and no workbook was given", facilityPath)
	}

	p, err := doc.Project(coef)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", facilityPath, err)
	}
	return p, nil
}
