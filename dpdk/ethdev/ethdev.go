// Package ethdev contains the Ethernet port abstraction and the port configurator.
package ethdev

import (
	"net"

	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
)

var logger = logging.New("ethdev")

// EthDev represents an Ethernet port.
//
// A port is brought up by calling Configure, SetupRxQueue for each queue, Start, and optionally SetPromisc.
// Drivers return eal.Errno for lifecycle violations, such as setting up a queue on an unconfigured port.
type EthDev interface {
	eal.WithNumaSocket

	// ID returns port ID.
	ID() int

	// Name returns port name.
	Name() string

	// MacAddr returns the port MAC address.
	MacAddr() net.HardwareAddr

	// DevInfo returns driver capabilities.
	DevInfo() DevInfo

	// Configure sets the number of RX queues and the RSS settings.
	// This can only be used when the port is stopped.
	Configure(cfg Config) error

	// SetupRxQueue sets up an RX queue.
	SetupRxQueue(queue int, qcfg RxQueueConfig) error

	// Start starts the port.
	Start() error

	// Stop stops the port.
	// It may be re-configured and started again.
	Stop() error

	// IsStarted determines whether the port is started.
	IsStarted() bool

	// SetPromisc enables or disables promiscuous mode.
	SetPromisc(enable bool) error

	// RxQueues returns RX queues that have been set up.
	RxQueues() []RxQueue

	// Stats retrieves port statistics.
	Stats() Stats

	// Close stops and releases the port.
	Close() error
}

// RxQueue represents an RX queue.
type RxQueue interface {
	// RxBurst receives a burst of input packets.
	// Returns the number of packets received and written into vec, which is at most len(vec).
	// It does not block when no packet is available.
	RxBurst(vec pktmbuf.Vector) int
}
