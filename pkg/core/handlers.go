// core/handlers.go
package core

import "net/http"

// PageHandler is the signature for user-defined page handlers.
type PageHandler func(w http.ResponseWriter, r *http.Request)

var registry = map[string]PageHandler{}

// Register makes a handler available under a name referenced in manifest.toml
func Register(name string, h PageHandler) {
	registry[name] = h
}

// Lookup retrieves a registered page handler by name.
func Lookup(name string) (PageHandler, bool) {
	h, ok := registry[name]
	return h, ok
}
