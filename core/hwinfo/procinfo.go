package hwinfo

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	procinfo "github.com/c9s/goprocinfo/linux"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const (
	pathCPUInfo     = "/proc/cpuinfo"
	pathSystemCPU   = "/sys/devices/system/cpu"
	maxPhysicalCore = 4096
)

type procinfoProvider struct {
	once  sync.Once
	cores Cores
}

func (p *procinfoProvider) Cores() Cores {
	p.once.Do(func() {
		var e error
		if p.cores, e = readCores(); e != nil {
			logger.Error("cannot read CPU topology", zap.Error(e))
			return
		}
		logger.Debug("CPU topology",
			zap.Int("logical-cores", len(p.cores)),
			zap.Ints("numa-sockets", p.cores.NumaSockets()),
		)
	})
	return p.cores
}

func readCores() (cores Cores, e error) {
	var allowed unix.CPUSet
	if e = unix.SchedGetaffinity(0, &allowed); e != nil {
		return nil, fmt.Errorf("sched_getaffinity %w", e)
	}

	cpuInfo, e := procinfo.ReadCPUInfo(pathCPUInfo)
	if e != nil {
		return nil, fmt.Errorf("%s %w", pathCPUInfo, e)
	}

	for _, processor := range cpuInfo.Processors {
		if !allowed.IsSet(int(processor.Id)) || processor.CoreId >= maxPhysicalCore {
			continue
		}
		cores = append(cores, CoreInfo{
			NumaSocket:   numaNodeOf(int(processor.Id)),
			PhysicalCore: maxPhysicalCore*int(processor.PhysicalId) + int(processor.CoreId),
			LogicalCore:  int(processor.Id),
		})
	}
	return cores, nil
}

// numaNodeOf finds the NUMA node of a logical core.
// Kernels without NUMA sysfs, as seen in some containers, yield node 0.
func numaNodeOf(cpu int) int {
	matches, _ := filepath.Glob(filepath.Join(pathSystemCPU, "cpu"+strconv.Itoa(cpu), "node*"))
	for _, m := range matches {
		if node, e := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), "node")); e == nil {
			return node
		}
	}
	return 0
}
