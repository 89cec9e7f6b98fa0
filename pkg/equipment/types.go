package equipment

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Standard 通信标准
type Standard string

const (
	Ethernet  Standard = "Ethernet"
	WiFi      Standard = "WiFi"
	ZigBee    Standard = "ZigBee"
	ZWave     Standard = "ZWave"
	LoRaWAN   Standard = "LoRaWAN"
	Bluetooth Standard = "Bluetooth"
	RS485     Standard = "RS485"
	PowerLine Standard = "PowerLine"
)

// ConnectionType 采集设备到服务器的上行连接类型
type ConnectionType string

const (
	UplinkEthernet ConnectionType = "Ethernet"
	UplinkWiFi     ConnectionType = "WiFi"
	UplinkGSM      ConnectionType = "GSM"
	UplinkLTE      ConnectionType = "LTE"
	UplinkNBIoT    ConnectionType = "NBIoT"
)

// IsMobile 是否为移动数据连接
func (c ConnectionType) IsMobile() bool {
	return c != UplinkEthernet && c != UplinkWiFi
}

// Topology 通道拓扑策略
type Topology int

const (
	Mesh Topology = iota
	Star
	Bus
)

// String 返回拓扑名称
func (t Topology) String() string {
	switch t {
	case Mesh:
		return "Mesh"
	case Star:
		return "Star"
	case Bus:
		return "Bus"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (t Topology) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，大小写不敏感
func (t *Topology) UnmarshalText(text []byte) error {
	v, err := ParseTopology(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTopology 解析拓扑名称
func ParseTopology(s string) (Topology, error) {
	switch fold(s) {
	case "mesh":
		return Mesh, nil
	case "star":
		return Star, nil
	case "bus":
		return Bus, nil
	}
	return 0, fmt.Errorf("equipment: unknown topology %q", s)
}

// Goal 最小化目标
type Goal int

const (
	GoalMoney Goal = iota
	GoalTime
	GoalMoneyWithMaintenance
	GoalAll
)

// String 返回目标名称
func (g Goal) String() string {
	switch g {
	case GoalMoney:
		return "Money"
	case GoalTime:
		return "Time"
	case GoalMoneyWithMaintenance:
		return "MoneyWithMaintenance"
	case GoalAll:
		return "All"
	default:
		return fmt.Sprintf("Goal(%d)", int(g))
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (g Goal) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (g *Goal) UnmarshalText(text []byte) error {
	v, err := ParseGoal(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ParseGoal 解析最小化目标，忽略大小写、下划线与连字符
func ParseGoal(s string) (Goal, error) {
	switch fold(s) {
	case "money":
		return GoalMoney, nil
	case "time":
		return GoalTime, nil
	case "moneywithmaintenance":
		return GoalMoneyWithMaintenance, nil
	case "all":
		return GoalAll, nil
	}
	return 0, fmt.Errorf("equipment: unknown minimization goal %q", s)
}

// InvolvesMoney 目标是否包含金钱成本
func (g Goal) InvolvesMoney() bool {
	return g != GoalTime
}

// WithMaintenance 目标是否包含维护成本
func (g Goal) WithMaintenance() bool {
	return g == GoalMoneyWithMaintenance || g == GoalAll
}

var separators = strings.NewReplacer("_", "", "-", "", " ", "")

func fold(s string) string {
	return cases.Fold().String(separators.Replace(strings.TrimSpace(s)))
}
