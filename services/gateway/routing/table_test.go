package routing

import (
	"testing"

	"kursor/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := RegistryFromConfig(config.ServicesConfig{
		ExecutionURL:     "http://execution:3001",
		CommunicationURL: "http://communication:3002",
		SnippetURL:       "http://snippet:3003",
		UserURL:          "http://user:3004/",
	})
	require.NoError(t, err)
	return reg
}

func TestRegistry(t *testing.T) {
	reg := testRegistry(t)

	assert.Equal(t, 4, reg.Len())
	svc, ok := reg.Lookup(ServiceUser)
	require.True(t, ok)
	assert.Equal(t, "http://user:3004", svc.URL)
	assert.Equal(t, "User service", svc.DisplayName)

	names := []string{}
	for _, s := range reg.Services() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"execution", "communication", "snippet", "user"}, names)

	_, ok = reg.Lookup("billing")
	assert.False(t, ok)
}

func TestRegistryValidation(t *testing.T) {
	_, err := NewRegistry(Service{Name: "a", URL: "http://a"}, Service{Name: "a", URL: "http://b"})
	assert.Error(t, err)

	_, err = NewRegistry(Service{Name: "a", URL: "localhost:3000"})
	assert.Error(t, err)

	_, err = NewRegistry(Service{URL: "http://a"})
	assert.Error(t, err)
}

func TestDefaultTableMatching(t *testing.T) {
	table, err := NewTable(testRegistry(t), DefaultRoutes())
	require.NoError(t, err)

	tests := []struct {
		path     string
		prefix   string
		service  string
		auth     bool
		identity bool
	}{
		{path: "/auth/login", prefix: "/auth", service: ServiceUser},
		{path: "/auth", prefix: "/auth", service: ServiceUser},
		{path: "/users/42", prefix: "/users", service: ServiceUser, auth: true},
		{path: "/profile", prefix: "/profile", service: ServiceUser, auth: true},
		{path: "/snippets", prefix: "/snippets", service: ServiceSnippet, auth: true, identity: true},
		{path: "/snippets/language/go", prefix: "/snippets", service: ServiceSnippet, auth: true, identity: true},
		{path: "/stats", prefix: "/stats", service: ServiceSnippet, auth: true, identity: true},
		{path: "/execute", prefix: "/execute", service: ServiceExecution, auth: true},
		{path: "/execute/token-1", prefix: "/execute", service: ServiceExecution, auth: true},
		{path: "/contact", prefix: "/contact", service: ServiceCommunication},
		{path: "/notify", prefix: "/notify", service: ServiceCommunication, auth: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, svc, ok := table.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.prefix, route.Prefix)
			assert.Equal(t, tt.service, svc.Name)
			assert.Equal(t, tt.auth, route.RequiresAuth)
			assert.Equal(t, tt.identity, route.ForwardIdentity)
		})
	}
}

func TestMatchRespectsSegmentBoundary(t *testing.T) {
	table, err := NewTable(testRegistry(t), DefaultRoutes())
	require.NoError(t, err)

	for _, path := range []string{"/authors", "/profiles", "/foo/bar", "/", "/executes"} {
		_, _, ok := table.Match(path)
		assert.False(t, ok, path)
	}
}

func TestLongestPrefixWins(t *testing.T) {
	table, err := NewTable(testRegistry(t), []Route{
		{Prefix: "/auth", Service: ServiceUser},
		{Prefix: "/auth/admin", Service: ServiceSnippet},
	})
	require.NoError(t, err)

	_, svc, ok := table.Match("/auth/admin/users")
	require.True(t, ok)
	assert.Equal(t, ServiceSnippet, svc.Name)

	_, svc, ok = table.Match("/auth/login")
	require.True(t, ok)
	assert.Equal(t, ServiceUser, svc.Name)
}

func TestNewTableValidation(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name   string
		routes []Route
	}{
		{name: "unknown service", routes: []Route{{Prefix: "/billing", Service: "billing"}}},
		{name: "relative prefix", routes: []Route{{Prefix: "auth", Service: ServiceUser}}},
		{name: "trailing slash", routes: []Route{{Prefix: "/auth/", Service: ServiceUser}}},
		{name: "duplicate", routes: []Route{{Prefix: "/auth", Service: ServiceUser}, {Prefix: "/auth", Service: ServiceUser}}},
		{name: "identity without auth", routes: []Route{{Prefix: "/snippets", Service: ServiceSnippet, ForwardIdentity: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(reg, tt.routes)
			assert.Error(t, err)
		})
	}
}

func TestManifest(t *testing.T) {
	table, err := NewTable(testRegistry(t), DefaultRoutes())
	require.NoError(t, err)

	manifest := table.Manifest()
	assert.Equal(t, "User authentication (user-service)", manifest["/auth/*"])
	assert.Equal(t, "Code execution (execution-service)", manifest["/execute"])
	assert.Len(t, manifest, len(DefaultRoutes()))
}
