// Package ethnetif provides an Ethernet port bound to a kernel network interface.
// Each RX queue is an AF_PACKET socket; all sockets of a port form one fanout group hashed by the kernel flow hash.
package ethnetif

import (
	"errors"

	"github.com/gopacket/gopacket/afpacket"
	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/core/nnduration"
	"go.uber.org/multierr"
)

var logger = logging.New("ethnetif")

// Limits.
const (
	MaxRxQueues = 64
	MinRxDesc   = 64
	MaxRxDesc   = 1 << 16
)

// Config contains AF_PACKET port configuration.
type Config struct {
	// Netif is the network interface name.
	Netif string `json:"netif"`

	// SkipBringUp disables bringing up the interface when it is down.
	SkipBringUp bool `json:"skipBringUp,omitempty"`

	// FrameSize is the TPACKET frame size.
	// Default is afpacket.DefaultFrameSize.
	FrameSize int `json:"frameSize,omitempty"`

	// BlockSize is the TPACKET block size, which must be a multiple of FrameSize and the page size.
	// Default is 32 frames.
	BlockSize int `json:"blockSize,omitempty"`

	// BlockTimeout is the time after which a partially filled TPACKET block is handed to the reader.
	// Default is 1ms.
	BlockTimeout nnduration.Milliseconds `json:"blockTimeout,omitempty"`
}

func (cfg *Config) applyDefaults() {
	if cfg.FrameSize == 0 {
		cfg.FrameSize = afpacket.DefaultFrameSize
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = cfg.FrameSize * 32
	}
}

func (cfg Config) validate() error {
	errs := []error{}
	if cfg.Netif == "" {
		errs = append(errs, errors.New("netif is required"))
	}
	if cfg.FrameSize <= 0 || cfg.BlockSize <= 0 || cfg.BlockSize%cfg.FrameSize != 0 {
		errs = append(errs, errors.New("blockSize must be a positive multiple of frameSize"))
	}
	return multierr.Combine(errs...)
}

func (cfg Config) framesPerBlock() int {
	return cfg.BlockSize / cfg.FrameSize
}
