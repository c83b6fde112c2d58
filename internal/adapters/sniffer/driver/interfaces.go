package driver

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ARPHRD_IEEE80211_RADIOTAP, the link type of a monitor interface.
const arphrdIEEE80211Radiotap = 803

// SysClassNet is where the kernel lists network interfaces.
var SysClassNet = "/sys/class/net"

// InterfaceInfo is what sysfs says about an interface.
type InterfaceInfo struct {
	Name     string
	Wireless bool
	Monitor  bool
}

// Inspect reports whether iface exists and whether it is a wireless or
// monitor interface.
func Inspect(iface string) (InterfaceInfo, bool) {
	dir := filepath.Join(SysClassNet, iface)
	if _, err := os.Stat(dir); err != nil {
		return InterfaceInfo{}, false
	}
	info := InterfaceInfo{Name: iface, Monitor: isMonitor(dir)}
	if _, err := os.Stat(filepath.Join(dir, "wireless")); err == nil {
		info.Wireless = true
	}
	return info, true
}

// InterfaceExists reports whether iface is known to the kernel.
func InterfaceExists(iface string) bool {
	_, ok := Inspect(iface)
	return ok
}

// FindMonitorInterfaces lists the interfaces currently in monitor mode.
func FindMonitorInterfaces() ([]string, error) {
	entries, err := os.ReadDir(SysClassNet)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if isMonitor(filepath.Join(SysClassNet, e.Name())) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func isMonitor(dir string) bool {
	raw, err := os.ReadFile(filepath.Join(dir, "type"))
	if err != nil {
		return false
	}
	typ, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	return err == nil && typ == arphrdIEEE80211Radiotap
}
