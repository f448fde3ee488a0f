package main

import (
	"html/template"
	"net/http"
)

const layoutHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - Blueprint</title>
<style>
body{font-family:system-ui,-apple-system,sans-serif;background:#f4f5f7;margin:0}
nav{background:#1f2937;padding:.75rem 1.5rem}
nav a{color:#e5e7eb;text-decoration:none;margin-right:1.25rem}
main{max-width:44rem;margin:2rem auto;background:#fff;border-radius:10px;box-shadow:0 2px 12px rgba(0,0,0,.08);padding:2rem}
h1{font-size:1.4rem;margin-top:0}
.muted{color:#6b7280}
.ok{color:#047857}
label{display:block;margin:.75rem 0 .25rem}
button{background:#2563eb;color:#fff;border:0;border-radius:6px;padding:.55rem 1.3rem;cursor:pointer}
</style>
</head>
<body>
<nav>
<a href="/dashboard">Dashboard</a>
<a href="/reports">Reports</a>
<a href="/settings">Settings</a>
<a href="/logout">Logout</a>
</nav>
<main>
{{template "body" .}}
</main>
</body>
</html>`

func mustPage(body string) *template.Template {
	t := template.Must(template.New("layout").Parse(layoutHTML))
	return template.Must(t.New("body").Parse(body))
}

var (
	homeTpl = mustPage(`
<h1>Welcome</h1>
<p class="muted">This application is protected by single sign-on.</p>
<p><a href="/sso/login">Log in via the portal</a> or start from <a href="{{.PortalURL}}">{{.PortalURL}}</a>.</p>`)

	dashboardTpl = mustPage(`
<h1>Dashboard</h1>
<p>Signed in as <strong>{{.Session.Principal}}</strong>{{if .Session.Name}} ({{.Session.Name}}){{end}}.</p>
<p class="muted">Session established {{.Session.AuthenticatedAt.Format "2006-01-02 15:04 MST"}}.</p>`)

	reportsTpl = mustPage(`
<h1>Reports</h1>
<p class="muted">Nothing to report yet, {{.Session.Principal}}.</p>`)

	settingsTpl = mustPage(`
<h1>Settings</h1>
{{if .Saved}}<p class="ok">Preferences saved.</p>{{end}}
<form method="post" action="/settings">
<label for="theme">Theme</label>
<select id="theme" name="theme">
<option value="light" {{if eq .Prefs.Theme "light"}}selected{{end}}>Light</option>
<option value="dark" {{if eq .Prefs.Theme "dark"}}selected{{end}}>Dark</option>
</select>
<label for="notifications">Notifications</label>
<select id="notifications" name="notifications">
<option value="on" {{if eq .Prefs.Notifications "on"}}selected{{end}}>On</option>
<option value="off" {{if eq .Prefs.Notifications "off"}}selected{{end}}>Off</option>
</select>
<p><button type="submit">Save</button></p>
</form>`)
)

func renderPage(w http.ResponseWriter, title string, tpl *template.Template, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["Title"] = title
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tpl.ExecuteTemplate(w, "layout", data)
}
