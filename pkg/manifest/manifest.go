// manifest/manifest.go
package manifest

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Config is the top-level page manifest.
type Config struct {
	Pages []Page `toml:"page"`
}

// Page describes a single HTTP route served by a registered handler.
type Page struct {
	Path    string   `toml:"path"`
	Method  string   `toml:"method"`
	Handler string   `toml:"handler"`
	Guard   Guard    `toml:"guard"`
	Policy  Policy   `toml:"policy"`
	Tags    []string `toml:"tags"`
}

type Guard struct {
	RequireSSO bool `toml:"require_sso"`
}

type Policy struct {
	TimeoutMS int `toml:"timeout_ms"`
}

// Validate normalizes every page in place and rejects duplicates.
func (c *Config) Validate() error {
	if len(c.Pages) == 0 {
		return errors.New("no pages defined")
	}

	seen := map[string]struct{}{}
	for i := range c.Pages {
		if err := c.Pages[i].normalize(); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if err := c.Pages[i].validate(); err != nil {
			return fmt.Errorf("page %d (%s %s): %w", i, c.Pages[i].Method, c.Pages[i].Path, err)
		}
		key := c.Pages[i].Method + " " + c.Pages[i].Path
		if _, dup := seen[key]; dup {
			return fmt.Errorf("page %d: duplicate route %s", i, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// normalize path/method
func (p *Page) normalize() error {
	if p.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(p.Path, "/") {
		p.Path = "/" + p.Path
	}
	if p.Path != "/" {
		p.Path = path.Clean(p.Path)
	}
	p.Method = strings.ToUpper(strings.TrimSpace(p.Method))
	if p.Method == "" {
		p.Method = "GET"
	}
	return nil
}

// validate fields that are independent of global state.
func (p *Page) validate() error {
	if strings.TrimSpace(p.Handler) == "" {
		return errors.New("handler name required")
	}
	if p.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	return nil
}
