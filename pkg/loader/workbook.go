package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/facility"
)

// 工作簿中的工作表名称
const (
	SheetDevices      = "devices"
	SheetAcquisitions = "acquisition"
	SheetChannels     = "channels"
)

var (
	deviceColumns = []string{
		"id", "name", "purchase_price", "install_price", "install_time", "power_required",
		"battery_time", "battery_service_price", "standards", "measurements", "controls",
	}
	acquisitionColumns = []string{
		"id", "name", "purchase_price", "install_price", "install_time", "power_required",
		"battery_time", "battery_service_price", "receivers", "uplinks",
	}
	channelColumns = []string{
		"id", "name", "standard", "wireless", "topology", "max_range", "max_devices_connected",
		"purchase_price", "install_price", "install_time",
	}
)

// LoadCatalog 读取设备目录：.xlsx 按工作簿解析，.json/.yaml/.yml 按目录文档解析
func LoadCatalog(path string) (*equipment.Catalog, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("loader: open workbook %s: %w", path, err)
		}
		defer f.Close()
		return readWorkbook(f)
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read catalog: %w", err)
	}

	catalog := &equipment.Catalog{}
	if format == FormatYAML {
		err = yaml.Unmarshal(data, catalog)
	} else {
		err = json.Unmarshal(data, catalog)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ReadCatalog 从 xlsx 数据流读取设备目录
func ReadCatalog(r io.Reader) (*equipment.Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("loader: open workbook: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (*equipment.Catalog, error) {
	catalog := &equipment.Catalog{}

	devices, err := readSheet(f, SheetDevices, parseDevice)
	if err != nil {
		return nil, err
	}
	catalog.Devices = devices

	acquisitions, err := readSheet(f, SheetAcquisitions, parseAcquisition)
	if err != nil {
		return nil, err
	}
	catalog.Acquisitions = acquisitions

	channels, err := readSheet(f, SheetChannels, parseChannel)
	if err != nil {
		return nil, err
	}
	catalog.Channels = channels

	return catalog, nil
}

// row 按列头名称访问一行单元格
type row struct {
	sheet   string
	number  int // 工作表中的行号（从 1 开始）
	headers map[string]int
	cells   []string
}

func (r row) get(column string) string {
	i, ok := r.headers[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r row) errorf(column string, err error) error {
	return fmt.Errorf("loader: sheet %s row %d column %s: %w", r.sheet, r.number, column, err)
}

func (r row) intAt(column string) (int, error) {
	s := r.get(column)
	if s == "" {
		return 0, nil
	}
	v, err := cast.ToIntE(s)
	if err != nil {
		// 数字单元格可能读成 "3.0"
		f, ferr := cast.ToFloat64E(s)
		if ferr != nil || f != float64(int(f)) {
			return 0, r.errorf(column, err)
		}
		v = int(f)
	}
	return v, nil
}

func (r row) floatAt(column string) (float64, error) {
	s := r.get(column)
	if s == "" {
		return 0, nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, r.errorf(column, err)
	}
	return v, nil
}

func (r row) boolAt(column string) (bool, error) {
	s := strings.ToLower(r.get(column))
	switch s {
	case "":
		return false, nil
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	v, err := cast.ToBoolE(s)
	if err != nil {
		return false, r.errorf(column, err)
	}
	return v, nil
}

// list 逗号或分号分隔的列表
func (r row) list(column string) []string {
	s := r.get(column)
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(c rune) bool { return c == ',' || c == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readSheet[T any](f *excelize.File, sheet string, parse func(row) (T, error)) ([]T, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("loader: read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("loader: sheet %s is empty", sheet)
	}

	// 第一行是列头
	headers := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		headers[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := headers["id"]; !ok {
		return nil, fmt.Errorf("loader: sheet %s has no id column", sheet)
	}

	var out []T
	for i, cells := range rows[1:] {
		r := row{sheet: sheet, number: i + 2, headers: headers, cells: cells}
		if r.get("id") == "" {
			continue // 空行
		}
		v, err := parse(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseDeviceBase(r row) (equipment.Device, error) {
	var (
		d   equipment.Device
		err error
	)
	d.Name = r.get("name")
	if d.ID, err = r.intAt("id"); err != nil {
		return d, err
	}
	if d.PurchasePrice, err = r.floatAt("purchase_price"); err != nil {
		return d, err
	}
	if d.InstallPrice, err = r.floatAt("install_price"); err != nil {
		return d, err
	}
	if d.InstallTime, err = r.floatAt("install_time"); err != nil {
		return d, err
	}
	if d.PowerRequired, err = r.boolAt("power_required"); err != nil {
		return d, err
	}
	if d.BatteryTime, err = r.floatAt("battery_time"); err != nil {
		return d, err
	}
	if d.BatteryServicePrice, err = r.floatAt("battery_service_price"); err != nil {
		return d, err
	}
	for _, s := range r.list("standards") {
		d.Standards = append(d.Standards, equipment.Standard(s))
	}
	return d, nil
}

func parseDevice(r row) (*equipment.MeasurementDevice, error) {
	base, err := parseDeviceBase(r)
	if err != nil {
		return nil, err
	}
	m := &equipment.MeasurementDevice{Device: base}
	for _, s := range r.list("measurements") {
		m.Measurements = append(m.Measurements, facility.Measurement(s))
	}
	for _, s := range r.list("controls") {
		m.Controls = append(m.Controls, facility.Control(s))
	}
	return m, nil
}

// parseAcquisition receivers 列形如 "ZigBee:8, RS485"，省略上限表示不限
func parseAcquisition(r row) (*equipment.AcquisitionDevice, error) {
	base, err := parseDeviceBase(r)
	if err != nil {
		return nil, err
	}
	a := &equipment.AcquisitionDevice{Device: base, Receivers: make(map[equipment.Standard]int)}

	for _, entry := range r.list("receivers") {
		name, limit, found := strings.Cut(entry, ":")
		std := equipment.Standard(strings.TrimSpace(name))
		a.Receivers[std] = 0
		if found {
			n, err := cast.ToIntE(strings.TrimSpace(limit))
			if err != nil || n < 0 {
				return nil, r.errorf("receivers", fmt.Errorf("bad capacity in %q", entry))
			}
			a.Receivers[std] = n
		}
		if !a.Supports(std) {
			a.Standards = append(a.Standards, std)
		}
	}
	for _, s := range r.list("uplinks") {
		a.Uplinks = append(a.Uplinks, equipment.ConnectionType(s))
	}
	return a, nil
}

func parseChannel(r row) (*equipment.Channel, error) {
	var (
		c   = &equipment.Channel{Name: r.get("name"), Standard: equipment.Standard(r.get("standard"))}
		err error
	)
	if c.ID, err = r.intAt("id"); err != nil {
		return nil, err
	}
	if c.Wireless, err = r.boolAt("wireless"); err != nil {
		return nil, err
	}
	if c.Topology, err = equipment.ParseTopology(r.get("topology")); err != nil {
		return nil, r.errorf("topology", err)
	}
	if c.MaxRange, err = r.intAt("max_range"); err != nil {
		return nil, err
	}
	if c.MaxDevicesConnected, err = r.intAt("max_devices_connected"); err != nil {
		return nil, err
	}
	if c.PurchasePrice, err = r.floatAt("purchase_price"); err != nil {
		return nil, err
	}
	if c.InstallPrice, err = r.floatAt("install_price"); err != nil {
		return nil, err
	}
	if c.InstallTime, err = r.floatAt("install_time"); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteCatalog 把目录写成工作簿，列与 LoadCatalog 读取的一致
func WriteCatalog(c *equipment.Catalog, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	var devices [][]any
	for _, d := range c.Devices {
		devices = append(devices, append(deviceCells(&d.Device),
			joinValues(d.Standards), joinValues(d.Measurements), joinValues(d.Controls)))
	}

	var acquisitions [][]any
	for _, a := range c.Acquisitions {
		receivers := make([]string, 0, len(a.Receivers))
		for _, s := range a.ReceivableStandards() {
			receivers = append(receivers, fmt.Sprintf("%s:%d", s, a.Receivers[s]))
		}
		acquisitions = append(acquisitions, append(deviceCells(&a.Device),
			strings.Join(receivers, ", "), joinValues(a.Uplinks)))
	}

	var channels [][]any
	for _, ch := range c.Channels {
		channels = append(channels, []any{
			ch.ID, ch.Name, string(ch.Standard), ch.Wireless, ch.Topology.String(),
			ch.MaxRange, ch.MaxDevicesConnected, ch.PurchasePrice, ch.InstallPrice, ch.InstallTime,
		})
	}

	sheets := []struct {
		name    string
		columns []string
		rows    [][]any
	}{
		{SheetDevices, deviceColumns, devices},
		{SheetAcquisitions, acquisitionColumns, acquisitions},
		{SheetChannels, channelColumns, channels},
	}
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("loader: write workbook: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("loader: write workbook: %w", err)
		}
		if err := writeRows(f, s.name, s.columns, s.rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("loader: write workbook: %w", err)
	}
	return nil
}

func deviceCells(d *equipment.Device) []any {
	return []any{
		d.ID, d.Name, d.PurchasePrice, d.InstallPrice, d.InstallTime, d.PowerRequired,
		d.BatteryTime, d.BatteryServicePrice,
	}
}

func joinValues[T ~string](values []T) string {
	var buf bytes.Buffer
	for i, v := range values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(string(v))
	}
	return buf.String()
}

func writeRows(f *excelize.File, sheet string, columns []string, rows [][]any) error {
	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("loader: write sheet %s: %w", sheet, err)
		}
	}
	for r, values := range rows {
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("loader: write sheet %s: %w", sheet, err)
			}
		}
	}
	return nil
}
