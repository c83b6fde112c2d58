package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Capabilities describes what a wireless card can tune to.
type Capabilities struct {
	Phy      string
	Bands    map[string]bool // "2.4ghz", "5ghz"
	Channels []int
}

var reChannel = regexp.MustCompile(`\[([0-9]+)\]`)

// InterfaceCapabilities asks iw for the channels iface can use. Disabled
// channels are left out.
func InterfaceCapabilities(iface string) (Capabilities, error) {
	out, err := Run("iw", "dev")
	if err != nil {
		return Capabilities{}, fmt.Errorf("iw dev: %w", err)
	}
	phy, err := parsePhyForInterface(out, iface)
	if err != nil {
		return Capabilities{}, err
	}

	out, err = Run("iw", "phy", phy, "info")
	if err != nil {
		return Capabilities{}, fmt.Errorf("iw phy %s info: %w", phy, err)
	}
	caps := parsePhyCapabilities(out)
	caps.Phy = phy
	return caps, nil
}

// parsePhyForInterface finds the phy owning iface in `iw dev` output:
//
//	phy#0
//		Interface wlan0
func parsePhyForInterface(out []byte, iface string) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	currentPhy := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "phy#") {
			currentPhy = strings.Replace(line, "#", "", 1)
		} else if line == "Interface "+iface && currentPhy != "" {
			return currentPhy, nil
		}
	}
	return "", fmt.Errorf("interface %s not found in iw dev output", iface)
}

// parsePhyCapabilities reads the Frequencies blocks of `iw phy <phy> info`:
//
//	Frequencies:
//		* 2412 MHz [1] (20.0 dBm)
//		* 5180 MHz [36] (disabled)
func parsePhyCapabilities(out []byte) Capabilities {
	caps := Capabilities{Bands: make(map[string]bool)}
	seen := make(map[int]bool)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	inFrequencies := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "Frequencies:" {
			inFrequencies = true
			continue
		}
		if !inFrequencies {
			continue
		}
		// Bitrates and other lists also use "*"; the block ends at the
		// first line that is not an entry.
		if !strings.HasPrefix(line, "*") {
			inFrequencies = false
			continue
		}
		if strings.Contains(line, "(disabled)") {
			continue
		}

		matches := reChannel.FindStringSubmatch(line)
		if len(matches) < 2 {
			continue
		}
		ch, err := strconv.Atoi(matches[1])
		if err != nil || seen[ch] {
			continue
		}
		seen[ch] = true
		caps.Channels = append(caps.Channels, ch)
		if ch <= 14 {
			caps.Bands["2.4ghz"] = true
		} else {
			caps.Bands["5ghz"] = true
		}
	}
	sort.Ints(caps.Channels)
	return caps
}
