/*
Feather wing demo: a row of feathers placed along a flapping spine curve,
optionally written out as numbered snapshots.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/featherwing/engine"
	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/testbed"
	"github.com/spaghettifunk/featherwing/wing"
)

func main() {
	configPath := flag.String("config", "config/wing.toml", "application and wing configuration")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 keeps the config value)")
	snapshots := flag.Bool("snapshots", false, "force snapshot output on")
	flag.Parse()

	config, err := engine.LoadApplicationConfig(*configPath)
	if err != nil {
		core.LogFatal("cannot load '%s': %s", *configPath, err.Error())
	}
	if *frames > 0 {
		config.Application.MaxFrames = *frames
	}
	if *snapshots {
		config.Snapshot.Enabled = true
	}
	wingConfig, err := wing.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("cannot load the wing from '%s': %s", *configPath, err.Error())
	}

	tb, err := testbed.NewWingGame(config, wingConfig)
	if err != nil {
		core.LogFatal(err.Error())
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	// capture sigterm and other system calls here
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := e.Initialize(ctx); err != nil {
		_ = e.Shutdown()
		core.LogFatal(err.Error())
	}

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err.Error())
	}
	if runErr != nil {
		core.LogError(runErr.Error())
		os.Exit(1)
	}
}
