//go:build debug

package main

import "flag"

// registerDebugFlags adds diagnostic switches to builds made with -tags debug.
func registerDebugFlags(fs *flag.FlagSet, opts *cliOptions) {
	fs.BoolVar(&opts.Massive, "massive", false, "multiply party damage by 100")
}
