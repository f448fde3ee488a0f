package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Store keeps one JSON document per principal on disk. Loads never fail the
// caller: any read problem logs and returns the defaults.
type Store struct {
	dir string
	mu  sync.Mutex
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prefs dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Load returns the principal's preferences merged over the defaults.
func (s *Store) Load(principal string) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Defaults()
	b, err := os.ReadFile(s.pathFor(principal))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("preferences read failed, using defaults",
				zap.String("principal", principal), zap.Error(err))
		}
		return p
	}

	merged, err := merge(p, b)
	if err != nil {
		s.log.Warn("preferences corrupt, using defaults",
			zap.String("principal", principal), zap.Error(err))
		return p
	}
	return merged
}

// Save replaces the principal's document. Write-temp-then-rename so a crash
// never leaves a half-written file behind.
func (s *Store) Save(principal string, p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	path := s.pathFor(principal)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// pathFor maps a principal to a filename. Everything outside a small safe
// set is replaced so an email can never traverse out of the store dir.
func (s *Store) pathFor(principal string) string {
	var sb strings.Builder
	for _, c := range principal {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteRune(c)
		case c == '.', c == '@', c == '_', c == '-':
			sb.WriteRune(c)
		default:
			sb.WriteByte('_')
		}
	}
	return filepath.Join(s.dir, sb.String()+".json")
}
