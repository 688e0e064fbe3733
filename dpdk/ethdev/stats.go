package ethdev

import (
	"fmt"
)

// Stats contains port statistics.
type Stats struct {
	RxPackets uint64 `json:"rxPackets" gqldesc:"Received packets."`
	RxBytes   uint64 `json:"rxBytes" gqldesc:"Received octets."`
	RxMissed  uint64 `json:"rxMissed" gqldesc:"Packets dropped because an RX queue was full."`
	RxErrors  uint64 `json:"rxErrors" gqldesc:"Erroneous packets."`
	RxNoMbuf  uint64 `json:"rxNoMbuf" gqldesc:"Packets dropped because the buffer pool was empty."`
}

func (stats Stats) String() string {
	return fmt.Sprintf("RX %d pkts, %d bytes, %d missed, %d errors, %d nombuf",
		stats.RxPackets, stats.RxBytes, stats.RxMissed, stats.RxErrors, stats.RxNoMbuf)
}
