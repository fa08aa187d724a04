package routing

import (
	"fmt"
	"net/http"
	"strings"

	"kursor/shared/models"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves the caller of a protected route. When it returns
// false it has already written the rejection response.
type Authenticator interface {
	Authenticate(c *gin.Context) (models.Identity, bool)
}

// CredentialForwarder turns a verified identity into the Authorization
// header value sent to services that trust the gateway.
type CredentialForwarder interface {
	ForwardedCredential(identity models.Identity) (string, error)
}

// Router dispatches requests through the routing table: match, gate, then
// proxy. Unmatched requests go to the notFound handler.
type Router struct {
	table     *Table
	proxy     *Proxy
	auth      Authenticator
	forwarder CredentialForwarder
	notFound  gin.HandlerFunc
}

// NewRouter wires the dispatch pipeline
func NewRouter(table *Table, proxy *Proxy, auth Authenticator, forwarder CredentialForwarder, notFound gin.HandlerFunc) *Router {
	return &Router{
		table:     table,
		proxy:     proxy,
		auth:      auth,
		forwarder: forwarder,
		notFound:  notFound,
	}
}

// Handle is the gin handler for every path not served by the gateway itself
func (r *Router) Handle(c *gin.Context) {
	if hasDotSegment(c.Request.URL.Path) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":         "Invalid request path",
			"requestedPath": c.Request.URL.RequestURI(),
		})
		return
	}

	route, svc, ok := r.table.Match(c.Request.URL.Path)
	if !ok {
		r.notFound(c)
		return
	}

	var authorization string
	if route.RequiresAuth {
		identity, ok := r.auth.Authenticate(c)
		if !ok {
			return
		}
		if route.ForwardIdentity {
			credential, err := r.forwarder.ForwardedCredential(identity)
			if err != nil {
				_ = c.Error(fmt.Errorf("forward identity for %s: %w", route.Prefix, err))
				return
			}
			authorization = credential
		}
	}

	r.proxy.Forward(c, svc, authorization)
}

// hasDotSegment reports "." or ".." path segments
func hasDotSegment(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if segment == "." || segment == ".." {
			return true
		}
	}
	return false
}
