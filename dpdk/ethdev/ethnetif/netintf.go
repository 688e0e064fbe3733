package ethnetif

import (
	"fmt"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/safchain/ethtool"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
)

var ethtoolHandle = sync.OnceValues(ethtool.NewEthtool)

// NetIntf is a kernel network interface backing a Port.
// Link attributes are a snapshot taken at lookup or after the last change made through NetIntf.
type NetIntf struct {
	*netlink.LinkAttrs
	Link   netlink.Link
	logger *zap.Logger
}

// NetIntfByName looks up a kernel network interface.
func NetIntfByName(ifname string) (*NetIntf, error) {
	link, e := netlink.LinkByName(ifname)
	if e != nil {
		return nil, fmt.Errorf("netif %s: %w", ifname, e)
	}
	n := &NetIntf{
		logger: logger.With(zap.String("ifname", ifname)),
	}
	n.update(link)
	return n, nil
}

func (n *NetIntf) update(link netlink.Link) {
	n.Link, n.LinkAttrs = link, link.Attrs()
}

func (n *NetIntf) reload() {
	if link, e := netlink.LinkByIndex(n.Index); e == nil {
		n.update(link)
	} else {
		n.logger.Warn("netif reload failed", zap.Int("ifindex", n.Index), zap.Error(e))
	}
}

// EnsureLinkUp sets the interface administratively up unless it already is.
// With skipBringUp, a down interface is an error instead.
func (n *NetIntf) EnsureLinkUp(skipBringUp bool) error {
	switch {
	case n.Flags&net.FlagUp != 0:
		return nil
	case skipBringUp:
		return fmt.Errorf("netif %s is down", n.Name)
	}

	if e := netlink.LinkSetUp(n.Link); e != nil {
		return fmt.Errorf("netif %s link up: %w", n.Name, e)
	}
	n.logger.Info("netif link up")
	n.reload()
	return nil
}

// SetPromisc changes promiscuous mode.
func (n *NetIntf) SetPromisc(enable bool) error {
	set := netlink.SetPromiscOff
	if enable {
		set = netlink.SetPromiscOn
	}
	if e := set(n.Link); e != nil {
		return fmt.Errorf("netif %s promisc=%t: %w", n.Name, enable, e)
	}
	n.reload()
	return nil
}

// NumaSocket reads the NUMA node of the underlying PCI device from sysfs.
// Interfaces without a device, or on single-node hosts, yield any socket.
func (n *NetIntf) NumaSocket() eal.NumaSocket {
	body, e := os.ReadFile(path.Join("/sys/class/net", n.Name, "device", "numa_node"))
	if e != nil {
		return eal.NumaSocket{}
	}
	id, e := strconv.Atoi(strings.TrimSpace(string(body)))
	if e != nil || id < 0 {
		return eal.NumaSocket{}
	}
	return eal.NumaSocketFromID(id)
}

// DriverName queries the kernel driver through ethtool.
// Returns empty string on failure.
func (n *NetIntf) DriverName() (name string) {
	if et, e := ethtoolHandle(); e == nil {
		name, _ = et.DriverName(n.Name)
	}
	return name
}

// RxChannels queries the number of hardware RX channels through ethtool, including combined channels.
// Returns 0 if unsupported.
func (n *NetIntf) RxChannels() int {
	et, e := ethtoolHandle()
	if e != nil {
		return 0
	}
	ch, e := et.GetChannels(n.Name)
	if e != nil {
		n.logger.Debug("ethtool channels unavailable", zap.Error(e))
		return 0
	}
	return int(ch.RxCount + ch.CombinedCount)
}
