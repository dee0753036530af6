// Package main provides the entry point for fleetd, the fleet supervisor
// daemon. fleetd loads a fleet of subordinate tool-protocol servers from a
// YAML configuration file and keeps them connected, health-checked, and
// restarted according to their lifecycle policy.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/toolmesh/fleet/internal/bootstrap"
)

var (
	version    = "dev"
	configPath string
)

func main() {
	flag.StringVar(&configPath, "config", "/etc/fleetd/config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fleetd %s\n", version)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app, err := bootstrap.InitializeApp()
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cancel()
	}()

	return app.Run(ctx, configPath)
}
