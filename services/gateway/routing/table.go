package routing

import (
	"fmt"
	"sort"
	"strings"
)

// Route binds a path prefix to a downstream service
type Route struct {
	Prefix       string
	Service      string
	RequiresAuth bool
	// ForwardIdentity replaces the outbound Authorization header with a
	// credential derived from the verified identity.
	ForwardIdentity bool
	Pattern         string
	Description     string
}

// DefaultRoutes is the Kursor routing policy
func DefaultRoutes() []Route {
	return []Route{
		{Prefix: "/auth", Service: ServiceUser, Pattern: "/auth/*", Description: "User authentication (user-service)"},
		{Prefix: "/users", Service: ServiceUser, RequiresAuth: true, Pattern: "/users/*", Description: "User management (user-service)"},
		{Prefix: "/profile", Service: ServiceUser, RequiresAuth: true, Pattern: "/profile", Description: "User profiles (user-service)"},
		{Prefix: "/snippets", Service: ServiceSnippet, RequiresAuth: true, ForwardIdentity: true, Pattern: "/snippets/*", Description: "Code snippet management (snippet-service)"},
		{Prefix: "/stats", Service: ServiceSnippet, RequiresAuth: true, ForwardIdentity: true, Pattern: "/stats", Description: "Snippet statistics (snippet-service)"},
		{Prefix: "/execute", Service: ServiceExecution, RequiresAuth: true, Pattern: "/execute", Description: "Code execution (execution-service)"},
		{Prefix: "/contact", Service: ServiceCommunication, Pattern: "/contact", Description: "Contact form (communication-service)"},
		{Prefix: "/notify", Service: ServiceCommunication, RequiresAuth: true, Pattern: "/notify", Description: "Notifications (communication-service)"},
	}
}

// Table is an ordered routing table. Routes are kept longest prefix first,
// so a top-down scan yields the longest match.
type Table struct {
	routes   []Route
	registry *Registry
}

// NewTable validates routes against the registry. A route whose target is
// not registered is a configuration error.
func NewTable(registry *Registry, routes []Route) (*Table, error) {
	seen := make(map[string]bool, len(routes))
	ordered := make([]Route, 0, len(routes))

	for _, route := range routes {
		if !strings.HasPrefix(route.Prefix, "/") || (len(route.Prefix) > 1 && strings.HasSuffix(route.Prefix, "/")) {
			return nil, fmt.Errorf("invalid route prefix %q", route.Prefix)
		}
		if seen[route.Prefix] {
			return nil, fmt.Errorf("route prefix %q registered twice", route.Prefix)
		}
		if _, ok := registry.Lookup(route.Service); !ok {
			return nil, fmt.Errorf("route %q targets unknown service %q", route.Prefix, route.Service)
		}
		if route.ForwardIdentity && !route.RequiresAuth {
			return nil, fmt.Errorf("route %q forwards identity but is not authenticated", route.Prefix)
		}
		if route.Pattern == "" {
			route.Pattern = route.Prefix
		}
		seen[route.Prefix] = true
		ordered = append(ordered, route)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})

	return &Table{routes: ordered, registry: registry}, nil
}

// Match finds the route for path. A prefix matches only on a path segment
// boundary: "/auth" matches "/auth" and "/auth/login" but not "/authors".
func (t *Table) Match(path string) (Route, Service, bool) {
	for _, route := range t.routes {
		if matchesPrefix(path, route.Prefix) {
			svc, _ := t.registry.Lookup(route.Service)
			return route, svc, true
		}
	}
	return Route{}, Service{}, false
}

// Routes returns the routes in match order
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Manifest maps display patterns to route descriptions
func (t *Table) Manifest() map[string]string {
	out := make(map[string]string, len(t.routes))
	for _, route := range t.routes {
		out[route.Pattern] = route.Description
	}
	return out
}

func matchesPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
