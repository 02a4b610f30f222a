// Package nav holds the client-side route table and the role-based guards
// that decide which screen a user may open.
package nav

import (
	"net/url"
	"strings"

	"github.com/nhle/visadesk/internal/model"
)

// Route names a screen of the client.
type Route string

const (
	Login         Route = "login"
	Dashboard     Route = "dashboard"
	Applications  Route = "applications"
	Notifications Route = "notifications"
	Documents     Route = "documents"
	Interviews    Route = "interviews"
	Clients       Route = "advisor/clients"
	Users         Route = "admin/users"
	Reports       Route = "admin/reports"
)

type entry struct {
	route Route
	title string
	roles []model.Role
	// prefixes are the action URL paths that open this route.
	prefixes []string
}

var everyone = []model.Role{model.RoleMigrant, model.RoleAdvisor, model.RoleAdmin}

// table is ordered as the menu shows it.
var table = []entry{
	{Dashboard, "Dashboard", everyone, []string{"/", "/dashboard", "/inicio"}},
	{Applications, "Applications", everyone, []string{"/solicitudes", "/applications"}},
	{Notifications, "Notifications", everyone, []string{"/notificaciones", "/notifications"}},
	{Documents, "Documents", everyone, []string{"/documentos", "/documents"}},
	{Interviews, "Interviews", everyone, []string{"/entrevistas", "/simulaciones", "/interviews"}},
	{Clients, "My clients", []model.Role{model.RoleAdvisor, model.RoleAdmin}, []string{"/asesor", "/advisor"}},
	{Users, "Users", []model.Role{model.RoleAdmin}, []string{"/admin/usuarios", "/admin/users"}},
	{Reports, "Reports", []model.Role{model.RoleAdmin}, []string{"/admin/reportes", "/admin/reports", "/admin"}},
}

// Item is one entry of a role's menu.
type Item struct {
	Route Route
	Title string
}

// Menu returns the routes role may open, in display order.
func Menu(role model.Role) []Item {
	var items []Item
	for _, e := range table {
		if allowed(e, role) {
			items = append(items, Item{Route: e.route, Title: e.title})
		}
	}
	return items
}

// Title returns the display title of r.
func Title(r Route) string {
	if r == Login {
		return "Sign in"
	}
	if e, ok := lookup(r); ok {
		return e.title
	}
	return string(r)
}

// Known reports whether r is in the route table.
func Known(r Route) bool {
	_, ok := lookup(r)
	return ok || r == Login
}

// CanAccess reports whether role may open r. Login is open to everyone.
func CanAccess(role model.Role, r Route) bool {
	if r == Login {
		return true
	}
	e, ok := lookup(r)
	return ok && allowed(e, role)
}

// Resolve maps a notification action URL to a route. Absolute URLs are
// reduced to their path. The longest matching prefix wins; anything
// unrecognised resolves to the dashboard with ok=false.
func Resolve(actionURL string) (Route, bool) {
	p := strings.TrimSpace(actionURL)
	if p == "" {
		return Dashboard, false
	}
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	p = "/" + strings.Trim(strings.ToLower(p), "/")

	best, bestLen := Dashboard, 0
	matched := false
	for _, e := range table {
		for _, prefix := range e.prefixes {
			if !pathHasPrefix(p, prefix) || len(prefix) <= bestLen {
				continue
			}
			best, bestLen, matched = e.route, len(prefix), true
		}
	}
	return best, matched
}

// Guard returns the route to show when user asks for r: r itself if
// allowed, the login route when signed out, the dashboard otherwise.
func Guard(user *model.User, r Route) Route {
	if user == nil {
		return Login
	}
	if r == Login {
		return Dashboard
	}
	if CanAccess(user.Role, r) {
		return r
	}
	return Dashboard
}

func lookup(r Route) (entry, bool) {
	for _, e := range table {
		if e.route == r {
			return e, true
		}
	}
	return entry{}, false
}

func allowed(e entry, role model.Role) bool {
	for _, r := range e.roles {
		if r == role {
			return true
		}
	}
	return false
}

func pathHasPrefix(p, prefix string) bool {
	if prefix == "/" {
		return p == "/"
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
