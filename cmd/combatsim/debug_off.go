//go:build !debug

package main

import "flag"

// registerDebugFlags adds nothing outside debug builds.
func registerDebugFlags(*flag.FlagSet, *cliOptions) {}
