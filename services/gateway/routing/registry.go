package routing

import (
	"fmt"
	"net/url"
	"strings"

	"kursor/shared/config"
)

// Logical names of the downstream services
const (
	ServiceExecution     = "execution"
	ServiceCommunication = "communication"
	ServiceSnippet       = "snippet"
	ServiceUser          = "user"
)

// Service is one addressable downstream service
type Service struct {
	Name        string
	DisplayName string
	URL         string
}

// Registry is the immutable service table shared by the router, the auth
// gate and the health aggregator. It is safe for concurrent use because
// nothing mutates it after NewRegistry returns.
type Registry struct {
	services []Service
	index    map[string]int
}

// NewRegistry validates and freezes the given services, keeping their order
func NewRegistry(services ...Service) (*Registry, error) {
	r := &Registry{
		services: make([]Service, 0, len(services)),
		index:    make(map[string]int, len(services)),
	}
	for _, svc := range services {
		if svc.Name == "" {
			return nil, fmt.Errorf("service name is required")
		}
		if _, dup := r.index[svc.Name]; dup {
			return nil, fmt.Errorf("service %q registered twice", svc.Name)
		}
		u, err := url.Parse(svc.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("service %q has invalid URL %q", svc.Name, svc.URL)
		}
		svc.URL = strings.TrimRight(svc.URL, "/")
		if svc.DisplayName == "" {
			svc.DisplayName = svc.Name
		}
		r.index[svc.Name] = len(r.services)
		r.services = append(r.services, svc)
	}
	return r, nil
}

// RegistryFromConfig builds the Kursor registry from service URLs
func RegistryFromConfig(cfg config.ServicesConfig) (*Registry, error) {
	return NewRegistry(
		Service{Name: ServiceExecution, DisplayName: "Code execution service", URL: cfg.ExecutionURL},
		Service{Name: ServiceCommunication, DisplayName: "Communication service", URL: cfg.CommunicationURL},
		Service{Name: ServiceSnippet, DisplayName: "Snippet service", URL: cfg.SnippetURL},
		Service{Name: ServiceUser, DisplayName: "User service", URL: cfg.UserURL},
	)
}

// Lookup returns the service registered under name
func (r *Registry) Lookup(name string) (Service, bool) {
	i, ok := r.index[name]
	if !ok {
		return Service{}, false
	}
	return r.services[i], true
}

// Services returns the registered services in registration order
func (r *Registry) Services() []Service {
	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out
}

// URLs maps service names to base URLs
func (r *Registry) URLs() map[string]string {
	out := make(map[string]string, len(r.services))
	for _, svc := range r.services {
		out[svc.Name] = svc.URL
	}
	return out
}

// Len returns the number of registered services
func (r *Registry) Len() int {
	return len(r.services)
}
