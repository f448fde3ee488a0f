package sso

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(ProvideVerifier),
	fx.Provide(ProvideRegistry),
	fx.Provide(ProvideWhitelist),
	fx.Provide(ProvideCookieCodec),
	fx.Provide(ProvideErrorPages),
	fx.Provide(ProvideGate),
)
