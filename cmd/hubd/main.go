// Command hubd runs the NetTrx hub: the routing/master-election/squelch
// coordination server that Remote Rx/Tx proxies and DDR front-ends all
// connect to (spec.md §4.3, components C/D/E).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kb9vy/nettrxd/internal/config"
	"github.com/kb9vy/nettrxd/internal/hub"
	"github.com/kb9vy/nettrxd/internal/logging"
)

func main() {
	configFile := flag.String("config", "hub.yaml", "Path to hub configuration file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logging.SetLevel(*logLevel)
	log := logging.For("hubd")

	cfg, err := config.LoadHub(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hubd: load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "hubd: invalid config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutting down")
		cancel()
	}()

	h := hub.New(cfg)
	if err := h.Run(ctx); err != nil {
		log.Errorf("hub exited: %v", err)
		os.Exit(1)
	}
}
