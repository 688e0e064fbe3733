package ethringdev

import (
	"github.com/gopacket/gopacket/layers"
	"github.com/rxqpoll/rxqpoll/core/macaddr"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
)

// Inject delivers frames to the port as if they arrived on the wire.
// Each frame is copied and placed into the RX queue selected by RSS.
// Frames are dropped and counted as missed if the port is not started or the queue is full.
// Unless promiscuous mode is enabled, frames addressed to another unicast MAC address are filtered silently.
// Returns the number of accepted frames.
func (p *Port) Inject(frames ...[]byte) (n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateStarted {
		p.nMissed.Add(uint64(len(frames)))
		return 0
	}

	for _, frame := range frames {
		if dst := frame[:min(len(frame), 6)]; macaddr.IsUnicast(dst) && !macaddr.Accept(p.MacAddr(), dst, p.promisc) {
			continue
		}
		q := p.queues[p.selectQueue(frame)]
		select {
		case q.frames <- append([]byte(nil), frame...):
			n++
		default:
			p.nMissed.Add(1)
		}
	}
	return n
}

// SelectQueue returns the RX queue that a frame would be delivered to.
func (p *Port) SelectQueue(frame []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queues) == 0 {
		return 0
	}
	return p.selectQueue(frame)
}

func (p *Port) selectQueue(frame []byte) int {
	if len(p.queues) <= 1 {
		return 0
	}
	hash, ok := p.rssHash(frame)
	if !ok {
		return 0
	}
	return int(hash % uint64(len(p.queues)))
}

// rssHash computes a symmetric flow hash over network layer addresses.
func (p *Port) rssHash(frame []byte) (hash uint64, ok bool) {
	// decoding errors past the network layer are irrelevant: the network layer is already decoded
	_ = p.parser.DecodeLayers(frame, &p.decoded)
	for _, typ := range p.decoded {
		switch typ {
		case layers.LayerTypeIPv4:
			if p.rss.HashFunctions.Has(ethdev.RSSHashIPv4) {
				return p.ip4.NetworkFlow().FastHash(), true
			}
			return 0, false
		case layers.LayerTypeIPv6:
			if p.rss.HashFunctions.Has(ethdev.RSSHashIPv6) {
				return p.ip6.NetworkFlow().FastHash(), true
			}
			return 0, false
		}
	}
	return 0, false
}
