package prefs

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideStore(log *zap.Logger) (*Store, error) {
	dir := strings.TrimSpace(os.Getenv("PREFS_DIR"))
	if dir == "" {
		base := strings.TrimSpace(os.Getenv("DATA_DIR"))
		if base == "" {
			base = "data"
		}
		dir = filepath.Join(base, "prefs")
	}
	return NewStore(dir, log)
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
)
