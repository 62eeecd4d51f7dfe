package sdr

import (
	"fmt"
	"net"

	"github.com/charmbracelet/log"
	"github.com/kb9vy/nettrxd/internal/config"
)

// Open constructs the Source named by cfg.Source ("rtp-network",
// "udev-usb" or "sim") and wraps it in a Tuner at cfg.SampleRateHz.
func Open(cfg *config.SDRConfig, logger *log.Logger) (*Tuner, error) {
	var src Source
	var err error

	switch cfg.Source {
	case "rtp-network":
		addr, resolveErr := net.ResolveUDPAddr("udp4", cfg.NetworkAddr)
		if resolveErr != nil {
			return nil, fmt.Errorf("sdr: resolve %q: %w", cfg.NetworkAddr, resolveErr)
		}
		var iface *net.Interface
		if cfg.USBInterface != "" {
			if iface, err = net.InterfaceByName(cfg.USBInterface); err != nil {
				return nil, fmt.Errorf("sdr: interface %q: %w", cfg.USBInterface, err)
			}
		}
		src, err = NewNetworkSource(addr, iface)
	case "udev-usb":
		src, err = NewUSBSource(cfg.USBInterface, logger)
	case "sim":
		src = NewSimSource(cfg.SampleRateHz)
	default:
		return nil, fmt.Errorf("sdr: unknown source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}

	return New(src, cfg.SampleRateHz, logger), nil
}
