package sso

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joeydtaylor/ssogate-core/pkg/codec"
	"go.uber.org/zap"
)

type whitelistFile struct {
	Enabled bool     `json:"enabled"`
	Emails  []string `json:"emails"`
}

// Whitelist is a JSON-file-backed allowlist of principals. Access control
// fails open: when the file is unreadable or the list is disabled, everyone
// is authorized. A missing file is created disabled on first use.
//
// Reads and writes share one mutex; the file is rewritten whole via a temp
// file and rename. Single writer process assumed.
type Whitelist struct {
	path string
	mu   sync.Mutex
	log  *zap.Logger
}

func NewWhitelist(path string, log *zap.Logger) (*Whitelist, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Whitelist{path: path, log: log}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("whitelist dir: %w", err)
		}
		if err := w.write(whitelistFile{Enabled: false, Emails: []string{}}); err != nil {
			return nil, fmt.Errorf("whitelist seed: %w", err)
		}
		log.Info("whitelist created disabled", zap.String("path", path))
	}
	return w, nil
}

// IsAuthorized reports whether the principal may log in. Read errors log a
// warning and authorize; enforcement only happens on a healthy enabled list.
func (w *Whitelist) IsAuthorized(email string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	wf, err := w.read()
	if err != nil {
		w.log.Warn("whitelist unreadable, failing open", zap.Error(err))
		return true
	}
	if !wf.Enabled {
		return true
	}

	email = NormalizePrincipal(email)
	for _, e := range wf.Emails {
		if NormalizePrincipal(e) == email {
			return true
		}
	}
	return false
}

// AddEmail inserts a principal. Adding an existing entry is a no-op.
func (w *Whitelist) AddEmail(email string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	wf := w.readOrDefault()
	email = NormalizePrincipal(email)
	for _, e := range wf.Emails {
		if NormalizePrincipal(e) == email {
			return nil
		}
	}
	wf.Emails = append(wf.Emails, email)
	return w.write(wf)
}

// RemoveEmail deletes a principal. Removing an absent entry is a no-op.
func (w *Whitelist) RemoveEmail(email string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	wf := w.readOrDefault()
	email = NormalizePrincipal(email)
	out := wf.Emails[:0]
	for _, e := range wf.Emails {
		if NormalizePrincipal(e) != email {
			out = append(out, e)
		}
	}
	wf.Emails = out
	return w.write(wf)
}

// SetEnabled toggles enforcement without touching the member list.
func (w *Whitelist) SetEnabled(enabled bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	wf := w.readOrDefault()
	wf.Enabled = enabled
	return w.write(wf)
}

// Snapshot returns the current state for admin/diagnostic surfaces.
func (w *Whitelist) Snapshot() (enabled bool, emails []string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	wf, err := w.read()
	if err != nil {
		return false, nil, err
	}
	return wf.Enabled, append([]string(nil), wf.Emails...), nil
}

func (w *Whitelist) read() (whitelistFile, error) {
	b, err := os.ReadFile(w.path)
	if err != nil {
		return whitelistFile{}, err
	}
	var wf whitelistFile
	if err := codec.JSONStrict.Unmarshal(b, &wf); err != nil {
		return whitelistFile{}, err
	}
	return wf, nil
}

func (w *Whitelist) readOrDefault() whitelistFile {
	wf, err := w.read()
	if err != nil {
		w.log.Warn("whitelist read failed, starting from empty", zap.Error(err))
		return whitelistFile{Enabled: false, Emails: []string{}}
	}
	if wf.Emails == nil {
		wf.Emails = []string{}
	}
	return wf
}

func (w *Whitelist) write(wf whitelistFile) error {
	b, err := codec.JSONStrict.Marshal(wf)
	if err != nil {
		return err
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, w.path)
}
