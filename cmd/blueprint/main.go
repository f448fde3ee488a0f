package main

import (
	"github.com/joeydtaylor/ssogate-core/pkg/serverfx"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	_ = godotenv.Load()

	app := fx.New(
		serverfx.Module(
			serverfx.WithService("blueprint"),
			serverfx.WithManifestEnv("BLUEPRINT_MANIFEST"),
			serverfx.WithDefaultManifest("manifest.toml"),
		),
		fx.Invoke(registerPages),
	)
	app.Run()
}
