// Package main runs encounters in the terminal: it loads configuration,
// content tables and Lua trigger scripts, then drives the named encounter
// with a fixed-timestep frame loop reading keys from stdin.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"
)

func main() {
	start := time.Now()

	var opts cliOptions
	flag.StringVar(&opts.ConfigPath, "config", "configs/dev.yaml", "path to configuration file")
	flag.StringVar(&opts.Encounter, "encounter", "hallway", "id of the first encounter")
	flag.BoolVar(&opts.Autopilot, "autopilot", false, "let the AI play the party")
	flag.BoolVar(&opts.Watch, "watch", false, "reload tables and scripts when their files change")
	flag.BoolVar(&opts.Load, "load", false, "resume the latest save from the database")
	flag.StringVar(&opts.Slot, "slot", "default", "save slot")
	flag.BoolVar(&opts.Color, "color", true, "draw with ANSI colors")
	registerDebugFlags(flag.CommandLine, &opts)
	flag.Parse()

	a, cleanup, err := initializeApp(opts)
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()

	a.logger.Info("combat simulator initialized",
		zap.String("encounter", opts.Encounter),
		zap.Bool("autopilot", opts.Autopilot),
		zap.Duration("startup", time.Since(start)),
	)

	if err := a.lifecycle.Run(context.Background()); err != nil {
		a.logger.Error("simulator error", zap.Error(err))
	}
}
