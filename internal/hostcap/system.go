// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package hostcap probes host and driver capabilities ahead of
// loading and attaching a classifier program: whether the kernel
// supports eBPF at all, and what the target NIC driver exposes
// (channel count, driver/firmware identity) so a caller can size
// CprogOptions or warn before attach rather than fail inside the
// kernel.
package hostcap

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/safchain/ethtool"
)

// MemoryInfo holds system memory statistics.
type MemoryInfo struct {
	TotalBytes     uint64
	FreeBytes      uint64
	AvailableBytes uint64
}

// GetMemoryInfo reads and parses /proc/meminfo.
func GetMemoryInfo() (*MemoryInfo, error) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info := &MemoryInfo{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		val, _ := strconv.ParseUint(fields[1], 10, 64)
		valBytes := val * 1024

		switch fields[0] {
		case "MemTotal:":
			info.TotalBytes = valBytes
		case "MemFree:":
			info.FreeBytes = valBytes
		case "MemAvailable:":
			info.AvailableBytes = valBytes
		}
	}

	if info.AvailableBytes == 0 {
		info.AvailableBytes = info.FreeBytes
	}

	return info, nil
}

// CheckBPFJIT checks if eBPF JIT is enabled.
func CheckBPFJIT() (bool, error) {
	jitEnabled, err := os.ReadFile("/proc/sys/net/core/bpf_jit_enable")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(jitEnabled)) == "1", nil
}

// GetBPFJITLimit returns the eBPF JIT memory limit in MB.
func GetBPFJITLimit() (int64, error) {
	jitLimit, err := os.ReadFile("/proc/sys/net/core/bpf_jit_limit")
	if err != nil {
		return 0, err
	}

	var limit int64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(jitLimit)), "%d", &limit); err != nil {
		return 0, err
	}

	return limit / 1024 / 1024, nil
}

// SetBPFJITLimit sets the eBPF JIT memory limit in MB.
func SetBPFJITLimit(limitMB int64) error {
	limitBytes := limitMB * 1024 * 1024
	data := fmt.Sprintf("%d", limitBytes)
	return os.WriteFile("/proc/sys/net/core/bpf_jit_limit", []byte(data), 0644)
}

// SystemRequirement represents a missing or suboptimal system
// requirement discovered while checking eBPF readiness.
type SystemRequirement struct {
	Feature string
	Message string
	Fatal   bool
}

func (e *SystemRequirement) Error() string {
	return fmt.Sprintf("%s: %s", e.Feature, e.Message)
}

// VerifyBPFSupport checks whether the host meets kefir's kernel
// requirements. Callers run this before kernel.Load and surface any
// Fatal entry as an error; non-fatal entries are warnings.
func VerifyBPFSupport() []SystemRequirement {
	var reqs []SystemRequirement

	if _, err := os.Stat("/proc/sys/net/core/bpf_jit_enable"); os.IsNotExist(err) {
		reqs = append(reqs, SystemRequirement{
			Feature: "eBPF",
			Message: "kernel does not expose eBPF JIT controls",
			Fatal:   true,
		})
		return reqs
	}

	if enabled, err := CheckBPFJIT(); err != nil || !enabled {
		reqs = append(reqs, SystemRequirement{
			Feature: "JIT",
			Message: "eBPF JIT is not enabled",
			Fatal:   false,
		})
	}

	if limit, err := GetBPFJITLimit(); err == nil && limit < 256 {
		reqs = append(reqs, SystemRequirement{
			Feature: "JIT Limit",
			Message: fmt.Sprintf("eBPF JIT limit too low (%d MB, recommended >= 256 MB)", limit),
			Fatal:   false,
		})
	}

	if mem, err := GetMemoryInfo(); err == nil && mem.AvailableBytes < 512*1024*1024 {
		reqs = append(reqs, SystemRequirement{
			Feature: "Memory",
			Message: fmt.Sprintf("low available memory (%d MB, recommended >= 512 MB)", mem.AvailableBytes/1024/1024),
			Fatal:   false,
		})
	}

	return reqs
}

// DriverCaps summarizes the attach target's NIC driver, gathered via
// ethtool ioctls rather than guessed from the interface name.
type DriverCaps struct {
	Driver      string
	Version     string
	BusInfo     string
	Combined    uint32
	MaxCombined uint32
}

// ProbeDriver reads iface's driver identity and channel configuration,
// giving a caller enough information to warn before attach (e.g. a
// driver known not to support native XDP, or a single-combined-queue
// NIC that would serialize all traffic through one CPU).
func ProbeDriver(iface string) (DriverCaps, error) {
	et, err := ethtool.NewEthtool()
	if err != nil {
		return DriverCaps{}, fmt.Errorf("hostcap: failed to open ethtool: %w", err)
	}
	defer et.Close()

	info, err := et.DriverInfo(iface)
	if err != nil {
		return DriverCaps{}, fmt.Errorf("hostcap: failed to read driver info for %s: %w", iface, err)
	}

	caps := DriverCaps{
		Driver:  info.Driver,
		Version: info.Version,
		BusInfo: info.BusInfo,
	}

	if channels, err := et.GetChannels(iface); err == nil {
		caps.Combined = channels.CombinedCount
		caps.MaxCombined = channels.MaxCombined
	}

	return caps, nil
}
