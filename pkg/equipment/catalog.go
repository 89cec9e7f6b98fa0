package equipment

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog 目录缺少某类设备
	ErrEmptyCatalog = errors.New("equipment: empty catalog section")
	// ErrInvalidEquipment 设备定义不合法
	ErrInvalidEquipment = errors.New("equipment: invalid equipment")
)

// Catalog 设备目录
// 基因按下标引用目录中的设备与通道，加载后不可修改
type Catalog struct {
	Devices      []*MeasurementDevice `json:"devices" yaml:"devices"`
	Acquisitions []*AcquisitionDevice `json:"acquisition_devices" yaml:"acquisition_devices"`
	Channels     []*Channel           `json:"channels" yaml:"channels"`
}

// Validate 校验目录
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil catalog", ErrEmptyCatalog)
	}
	if len(c.Devices) == 0 {
		return fmt.Errorf("%w: no measurement devices", ErrEmptyCatalog)
	}
	if len(c.Acquisitions) == 0 {
		return fmt.Errorf("%w: no acquisition devices", ErrEmptyCatalog)
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrEmptyCatalog)
	}

	ids := make(map[int]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d == nil {
			return fmt.Errorf("%w: measurement device #%d is nil", ErrInvalidEquipment, i)
		}
		if err := validateDevice("measurement device", &d.Device, ids); err != nil {
			return err
		}
	}

	ids = make(map[int]bool, len(c.Acquisitions))
	for i, a := range c.Acquisitions {
		if a == nil {
			return fmt.Errorf("%w: acquisition device #%d is nil", ErrInvalidEquipment, i)
		}
		if err := validateDevice("acquisition device", &a.Device, ids); err != nil {
			return err
		}
		if len(a.Receivers) == 0 {
			return fmt.Errorf("%w: acquisition device %d (%s) receives no standard", ErrInvalidEquipment, a.ID, a.Name)
		}
		for s, n := range a.Receivers {
			if n < 0 {
				return fmt.Errorf("%w: acquisition device %d (%s) has negative capacity for %s", ErrInvalidEquipment, a.ID, a.Name, s)
			}
		}
	}

	ids = make(map[int]bool, len(c.Channels))
	for i, ch := range c.Channels {
		if ch == nil {
			return fmt.Errorf("%w: channel #%d is nil", ErrInvalidEquipment, i)
		}
		if ids[ch.ID] {
			return fmt.Errorf("%w: duplicate channel id %d", ErrInvalidEquipment, ch.ID)
		}
		ids[ch.ID] = true
		if ch.Standard == "" {
			return fmt.Errorf("%w: channel %d has no standard", ErrInvalidEquipment, ch.ID)
		}
		if ch.Topology < Mesh || ch.Topology > Bus {
			return fmt.Errorf("%w: channel %d has unknown topology %d", ErrInvalidEquipment, ch.ID, ch.Topology)
		}
		if ch.MaxRange < 0 || ch.MaxDevicesConnected < 0 {
			return fmt.Errorf("%w: channel %d has negative limits", ErrInvalidEquipment, ch.ID)
		}
		if ch.PurchasePrice < 0 || ch.InstallPrice < 0 || ch.InstallTime < 0 {
			return fmt.Errorf("%w: channel %d has negative prices", ErrInvalidEquipment, ch.ID)
		}
	}
	return nil
}

func validateDevice(kind string, d *Device, ids map[int]bool) error {
	if ids[d.ID] {
		return fmt.Errorf("%w: duplicate %s id %d", ErrInvalidEquipment, kind, d.ID)
	}
	ids[d.ID] = true

	if d.PurchasePrice < 0 || d.InstallPrice < 0 || d.InstallTime < 0 ||
		d.BatteryTime < 0 || d.BatteryServicePrice < 0 {
		return fmt.Errorf("%w: %s %d (%s) has negative prices or times", ErrInvalidEquipment, kind, d.ID, d.Name)
	}
	if kind == "measurement device" && len(d.Standards) == 0 {
		return fmt.Errorf("%w: %s %d (%s) supports no standard", ErrInvalidEquipment, kind, d.ID, d.Name)
	}
	return nil
}

// DeviceByID 按 ID 查找测控设备
func (c *Catalog) DeviceByID(id int) *MeasurementDevice {
	for _, d := range c.Devices {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// AcquisitionByID 按 ID 查找采集设备
func (c *Catalog) AcquisitionByID(id int) *AcquisitionDevice {
	for _, a := range c.Acquisitions {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// ChannelByID 按 ID 查找通道
func (c *Catalog) ChannelByID(id int) *Channel {
	for _, ch := range c.Channels {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}
