// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/ssogate-core/pkg/audit"
	"github.com/joeydtaylor/ssogate-core/pkg/middleware/logger"
	"github.com/joeydtaylor/ssogate-core/pkg/middleware/metrics"
	"github.com/joeydtaylor/ssogate-core/pkg/prefs"
	"github.com/joeydtaylor/ssogate-core/pkg/sso"
	"go.uber.org/fx"
)

// Module provided to fx for consumers that embed the gate without the
// serverfx HTTP lifecycle.
var Module = fx.Options(
	sso.Module,
	prefs.Module,
	audit.Module,
	logger.Module,
	metrics.Module,
)
