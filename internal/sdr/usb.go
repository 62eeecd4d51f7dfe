package sdr

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jochenvg/go-udev"
)

// USBSource reads wideband IQ from a USB-attached receiver's device
// node, using go-udev to detect hotplug add/remove events so the
// driver can surface a disconnect as a Read error rather than blocking
// forever on a device that's gone (grounded on samoyed's cm108.go
// inventory/hotplug handling, ported from its cgo libudev calls to the
// pure-Go jochenvg/go-udev binding).
type USBSource struct {
	log        *log.Logger
	devnode    string
	file       *os.File
	cancel     context.CancelFunc
	disconnect chan struct{}
}

// NewUSBSource opens devnode (e.g. /dev/ka9q0, the kernel-exposed
// sample stream for a direct-sampling USB SDR) and arms a udev monitor
// that closes the disconnect channel when that device is removed.
func NewUSBSource(devnode string, logger *log.Logger) (*USBSource, error) {
	f, err := os.Open(devnode)
	if err != nil {
		return nil, fmt.Errorf("sdr: open %s: %w", devnode, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	u := &USBSource{
		log:        logger,
		devnode:    devnode,
		file:       f,
		cancel:     cancel,
		disconnect: make(chan struct{}),
	}

	mon := udev.Udev{}.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("usb"); err != nil {
		logger.Warnf("usb hotplug monitor: filter: %v", err)
	} else if ch, err := mon.DeviceChan(ctx); err != nil {
		logger.Warnf("usb hotplug monitor: start: %v", err)
	} else {
		go u.watchHotplug(ch)
	}

	return u, nil
}

func (u *USBSource) watchHotplug(ch <-chan *udev.Device) {
	for dev := range ch {
		if dev.Action() != "remove" {
			continue
		}
		if dev.Devnode() == u.devnode {
			u.log.Warnf("usb sdr %s removed", u.devnode)
			close(u.disconnect)
			return
		}
	}
}

// Read fills a fixed-size block from the device's raw sample stream.
// The kernel driver for a direct-sampling USB tuner already delivers
// interleaved big-endian int16 I/Q pairs, the same wire shape as the
// network source, so the conversion is shared.
func (u *USBSource) Read() ([]complex128, error) {
	select {
	case <-u.disconnect:
		return nil, fmt.Errorf("sdr: usb device %s disconnected", u.devnode)
	default:
	}

	buf := make([]byte, 4*4096)
	n, err := u.file.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("sdr: read %s: %w", u.devnode, err)
	}
	return bytesToIQ(buf[:n]), nil
}

func (u *USBSource) Close() error {
	u.cancel()
	return u.file.Close()
}
