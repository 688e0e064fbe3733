package ethdev

import (
	"github.com/zyedidia/generic"
)

// Driver names.
const (
	DriverAfPacket = "af_packet"
	DriverRing     = "ring"
)

// DescLim contains RX/TX descriptor limits.
type DescLim struct {
	Max   int `json:"max"`
	Min   int `json:"min"`
	Align int `json:"align"`
}

// AdjustQueueCapacity adjusts RX/TX queue capacity to satisfy driver requirements.
func (lim DescLim) AdjustQueueCapacity(capacity int) int {
	if lim.Align > 1 {
		capacity -= capacity % lim.Align
	}
	return generic.Clamp(capacity, lim.Min, lim.Max)
}

// DevInfo provides contextual information of an Ethernet port.
type DevInfo struct {
	DriverName  string  `json:"driverName"`
	IfName      string  `json:"ifName,omitempty"`
	MaxRxQueues int     `json:"maxRxQueues"`
	RxDescLim   DescLim `json:"rxDescLim"`
	RSSOffloads RSSHash `json:"rssOffloads"`
}

// IsVDev determines whether the driver is a virtual device.
func (info DevInfo) IsVDev() bool {
	switch info.DriverName {
	case DriverAfPacket, DriverRing:
		return true
	}
	return false
}

// canIgnorePromiscError determines whether enable promiscuous mode error should be ignored.
func (info DevInfo) canIgnorePromiscError() bool {
	return info.DriverName == DriverRing
}
