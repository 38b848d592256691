package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pilebones/go-udev/netlink"

	"taskline/internal/logging"
)

// DeviceMonitor waits for a sound capture device to appear via udev netlink
// events. It backs `record --wait-device` on machines where the microphone
// is hot-plugged (USB headsets, docks).
type DeviceMonitor struct {
	logger *slog.Logger
}

// NewDeviceMonitor creates a monitor that watches for sound devices.
func NewDeviceMonitor(logger *slog.Logger) *DeviceMonitor {
	return &DeviceMonitor{
		logger: logging.NewComponentLogger(logger, "device-monitor"),
	}
}

// Wait blocks until a sound device is added or the context ends, returning
// the device node that appeared.
func (m *DeviceMonitor) Wait(ctx context.Context) (string, error) {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return "", fmt.Errorf("connect netlink socket: %w", err)
	}
	defer conn.Close()

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, soundDeviceMatcher())
	defer close(monitorQuit)

	m.logger.Info("waiting for a sound device")

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case uevent := <-queue:
			device := extractDeviceName(uevent)
			if device == "" {
				continue
			}
			m.logger.Info("sound device detected",
				logging.String("device", device),
				logging.String("action", string(uevent.Action)),
			)
			return device, nil
		case err := <-errs:
			if err != nil {
				m.logger.Warn("netlink monitor error", logging.Error(err))
			}
		}
	}
}

// soundDeviceMatcher matches SUBSYSTEM=sound ACTION=add events, which fire
// when ALSA registers a new capture-capable card.
func soundDeviceMatcher() netlink.Matcher {
	action := "add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
		},
	})
	return rules
}

func extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		return devname
	}
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return ""
	}
	return "/dev/" + last
}
