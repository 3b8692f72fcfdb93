//go:build wireinject

package main

import (
	"github.com/google/wire"
)

func initializeApp(opts cliOptions) (*app, func(), error) {
	wire.Build(
		provideConfig,
		provideLogger,
		provideRoller,
		provideTables,
		provideScripts,
		providePool,
		provideSaves,
		provideSession,
		provideDecider,
		provideWatcher,
		provideKeys,
		provideDriver,
		provideApp,
	)
	return nil, nil, nil
}
