package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/visadesk/internal/model"
)

func routes(items []Item) []Route {
	out := make([]Route, 0, len(items))
	for _, it := range items {
		out = append(out, it.Route)
	}
	return out
}

func TestMenuPerRole(t *testing.T) {
	assert.Equal(t,
		[]Route{Dashboard, Applications, Notifications, Documents, Interviews},
		routes(Menu(model.RoleMigrant)))
	assert.Equal(t,
		[]Route{Dashboard, Applications, Notifications, Documents, Interviews, Clients},
		routes(Menu(model.RoleAdvisor)))
	assert.Len(t, Menu(model.RoleAdmin), 8)
	assert.Empty(t, Menu("visitante"))
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(model.RoleMigrant, Applications))
	assert.False(t, CanAccess(model.RoleMigrant, Clients))
	assert.False(t, CanAccess(model.RoleAdvisor, Users))
	assert.True(t, CanAccess(model.RoleAdmin, Reports))
	assert.True(t, CanAccess("", Login))
	assert.False(t, CanAccess(model.RoleAdmin, "nowhere"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		url   string
		route Route
		ok    bool
	}{
		{"/solicitudes/12", Applications, true},
		{"/solicitudes", Applications, true},
		{"/entrevistas", Interviews, true},
		{"/simulaciones/3/", Interviews, true},
		{"/documentos/7/revisar", Documents, true},
		{"/admin/usuarios/4", Users, true},
		{"/admin", Reports, true},
		{"https://app.example.com/Solicitudes/9?tab=docs", Applications, true},
		{"/", Dashboard, true},
		{"/solicitudesx", Dashboard, false},
		{"/pagos/1", Dashboard, false},
		{"", Dashboard, false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r, ok := Resolve(tt.url)
			assert.Equal(t, tt.route, r)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestGuard(t *testing.T) {
	migrant := &model.User{ID: "1", Role: model.RoleMigrant}
	admin := &model.User{ID: "2", Role: model.RoleAdmin}

	assert.Equal(t, Login, Guard(nil, Applications))
	assert.Equal(t, Applications, Guard(migrant, Applications))
	assert.Equal(t, Dashboard, Guard(migrant, Users))
	assert.Equal(t, Users, Guard(admin, Users))
	assert.Equal(t, Dashboard, Guard(admin, Login))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "My clients", Title(Clients))
	assert.Equal(t, "Sign in", Title(Login))
	assert.True(t, Known(Reports))
	assert.False(t, Known("x"))
}
