package driver

import (
	"fmt"
	"log"
	"os/exec"
)

// Runner executes a command and returns its combined output.
type Runner func(name string, args ...string) ([]byte, error)

// Run is the runner used by this package. Tests replace it.
var Run Runner = func(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

func runCmd(name string, args ...string) error {
	output, err := Run(name, args...)
	if err != nil {
		log.Printf("Command failed: %s %v\nOutput: %s", name, args, string(output))
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}

// BringUp sets the link up.
func BringUp(iface string) error {
	return runCmd("ip", "link", "set", iface, "up")
}

// EnableMonitorMode switches iface to monitor mode.
func EnableMonitorMode(iface string) error {
	log.Printf("Enabling monitor mode on %s...", iface)
	return setInterfaceMode(iface, "monitor")
}

// DisableMonitorMode puts iface back into managed mode.
func DisableMonitorMode(iface string) error {
	log.Printf("Restoring managed mode on %s...", iface)
	return setInterfaceMode(iface, "managed")
}

func setInterfaceMode(iface, mode string) error {
	if err := runCmd("ip", "link", "set", iface, "down"); err != nil {
		return err
	}
	if err := runCmd("iw", iface, "set", "type", mode); err != nil {
		if mode == "monitor" {
			log.Printf("Hint: 'Device or resource busy' usually means NetworkManager or wpa_supplicant still own %s.", iface)
		}
		// Leave the interface usable even when the mode change failed.
		_ = BringUp(iface)
		return err
	}
	return BringUp(iface)
}

// SetInterfaceChannel tunes iface to channel.
func SetInterfaceChannel(iface string, channel int) error {
	if channel <= 0 {
		return fmt.Errorf("invalid channel: %d", channel)
	}
	output, err := Run("iw", iface, "set", "channel", fmt.Sprintf("%d", channel))
	if err != nil {
		return fmt.Errorf("failed to set channel %d on %s: %v (%s)", channel, iface, err, string(output))
	}
	return nil
}
