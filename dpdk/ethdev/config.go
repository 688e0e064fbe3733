package ethdev

import (
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
)

// DefaultRxQueueCapacity is the default number of RX descriptors per queue.
const DefaultRxQueueCapacity = 1024

// RSSHash is a bitmask of packet types that participate in receive-side scaling.
type RSSHash uint64

// RSSHash bits.
const (
	RSSHashIPv4 RSSHash = 1 << iota
	RSSHashIPv6
)

// Has determines whether all bits in other are set.
func (h RSSHash) Has(other RSSHash) bool {
	return h&other == other
}

func (h RSSHash) String() string {
	switch h {
	case 0:
		return "none"
	case RSSHashIPv4:
		return "ipv4"
	case RSSHashIPv6:
		return "ipv6"
	case RSSHashIPv4 | RSSHashIPv6:
		return "ipv4|ipv6"
	}
	return "other"
}

// RSSConfig contains receive-side scaling configuration.
type RSSConfig struct {
	// HashFunctions selects packet types that are hashed.
	// Packets not matching any selected type go to queue 0.
	HashFunctions RSSHash

	// Key is the hash key. Nil means the driver default key.
	Key []byte
}

// DefaultRSS hashes IPv4 and IPv6 packets with the driver default key.
var DefaultRSS = RSSConfig{
	HashFunctions: RSSHashIPv4 | RSSHashIPv6,
}

// Config contains EthDev configuration.
type Config struct {
	RxQueues int
	RSS      RSSConfig
}

// RxQueueConfig contains EthDev RX queue configuration.
type RxQueueConfig struct {
	Capacity int            // number of descriptors
	Socket   eal.NumaSocket // where to allocate the queue
	RxPool   *pktmbuf.Pool  // where to store packets
}
