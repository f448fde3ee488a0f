package sso

import (
	"html/template"
	"net/http"
)

var errorTpl = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,-apple-system,sans-serif;background:#f4f5f7;display:flex;align-items:center;justify-content:center;min-height:100vh;margin:0}
.card{background:#fff;border-radius:10px;box-shadow:0 2px 12px rgba(0,0,0,.08);padding:2.5rem 3rem;max-width:28rem;text-align:center}
h1{font-size:1.25rem;margin:0 0 .75rem}
p{color:#555;margin:0 0 1.5rem}
a{display:inline-block;background:#2563eb;color:#fff;text-decoration:none;border-radius:6px;padding:.6rem 1.4rem}
</style>
</head>
<body>
<div class="card">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<a href="{{.PortalURL}}">Back to portal</a>
</div>
</body>
</html>
`))

// ErrorPages renders the HTML rejection surface shown to browsers.
type ErrorPages struct {
	portalURL string
}

func NewErrorPages(portalURL string) *ErrorPages {
	return &ErrorPages{portalURL: portalURL}
}

func (p *ErrorPages) Render(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorTpl.Execute(w, struct {
		Title     string
		Message   string
		PortalURL string
	}{Title: title, Message: message, PortalURL: p.portalURL})
}

// NotFound is the router-level 404 handler.
func (p *ErrorPages) NotFound(w http.ResponseWriter, _ *http.Request) {
	p.Render(w, http.StatusNotFound, "Page not found", "The page you requested does not exist.")
}
