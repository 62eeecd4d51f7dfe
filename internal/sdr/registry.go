package sdr

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/kb9vy/nettrxd/internal/config"
	"github.com/kb9vy/nettrxd/internal/refcount"
)

// Registry shares one Tuner per distinct (Source, NetworkAddr,
// USBInterface) triple across however many DDRs register for it
// (spec.md §3/§5: "a tuner is shared... the tuner deletes itself when
// the last DDR unregisters"), so two DDRs pointed at the same physical
// front-end always converge on one Tuner instance; other SDRConfig
// fields such as SampleRateHz are not part of the key.
type Registry struct {
	rc  *refcount.Refcounted[string, *tunerHandle]
	log *log.Logger
}

type tunerHandle struct {
	tuner  *Tuner
	cancel context.CancelFunc
}

func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{rc: refcount.New[string, *tunerHandle](), log: logger}
}

func configKey(cfg *config.SDRConfig) string {
	return cfg.Source + "|" + cfg.NetworkAddr + "|" + cfg.USBInterface
}

// Acquire returns the shared Tuner for cfg, opening and starting its
// reader loop on first use.
func (r *Registry) Acquire(cfg *config.SDRConfig) (*Tuner, error) {
	key := configKey(cfg)
	h, err := r.rc.Acquire(key, func() (*tunerHandle, error) {
		t, err := Open(cfg, r.log)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			if err := t.Run(ctx); err != nil {
				r.log.Warnf("tuner %s stopped: %v", key, err)
			}
		}()
		return &tunerHandle{tuner: t, cancel: cancel}, nil
	})
	if err != nil {
		return nil, err
	}
	return h.tuner, nil
}

// Release drops a reference to cfg's tuner, stopping its reader loop
// and closing its source once the last DDR has unregistered.
func (r *Registry) Release(cfg *config.SDRConfig) {
	key := configKey(cfg)
	r.rc.Release(key, func(h *tunerHandle) {
		h.cancel()
		h.tuner.Close()
	})
}
