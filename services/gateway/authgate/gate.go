// Package authgate verifies bearer tokens against the user service before
// the gateway forwards a protected request.
package authgate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"kursor/services/gateway/metrics"
	"kursor/services/gateway/routing"
	"kursor/shared/config"
	"kursor/shared/logger"
	"kursor/shared/middleware"
	"kursor/shared/models"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

const validatePath = "/auth/validate"

// Auth gate outcomes, also used as metric labels
const (
	ResultMissing     = "missing"
	ResultRejected    = "rejected"
	ResultUnavailable = "unavailable"
	ResultAccepted    = "accepted"
)

// errUnavailable marks a validation call that never produced a verdict
var errUnavailable = errors.New("authentication service unavailable")

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid bool            `json:"valid"`
	User  models.Identity `json:"user"`
}

// Gate validates caller tokens through the user service
type Gate struct {
	validateURL string
	client      *http.Client
	metrics     *metrics.Metrics
}

// New creates a gate that validates against userServiceURL
func New(userServiceURL string, client *http.Client, m *metrics.Metrics) *Gate {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Gate{
		validateURL: userServiceURL + validatePath,
		client:      routing.WithoutRedirects(client),
		metrics:     m,
	}
}

// Authenticate resolves the caller identity. On failure it writes the
// rejection and returns false; the request must not be forwarded.
func (g *Gate) Authenticate(c *gin.Context) (models.Identity, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		g.metrics.AuthResult(ResultMissing)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return models.Identity{}, false
	}
	token, _ := middleware.BearerToken(header)

	identity, err := g.validate(c, token)
	switch {
	case errors.Is(err, errUnavailable):
		g.metrics.AuthResult(ResultUnavailable)
		logger.WithFields(map[string]interface{}{
			"request_id": requestid.Get(c),
			"error":      err.Error(),
		}).Error("Token validation failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication service unavailable"})
		return models.Identity{}, false
	case err != nil:
		g.metrics.AuthResult(ResultRejected)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return models.Identity{}, false
	}

	g.metrics.AuthResult(ResultAccepted)
	middleware.SetIdentity(c, identity)
	return identity, true
}

func (g *Gate) validate(c *gin.Context, token string) (models.Identity, error) {
	payload, err := json.Marshal(validateRequest{Token: token})
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", errUnavailable, err)
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, g.validateURL, bytes.NewReader(payload))
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", errUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := requestid.Get(c); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", errUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Identity{}, fmt.Errorf("token rejected with status %d", resp.StatusCode)
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Identity{}, fmt.Errorf("%w: decode validation reply: %v", errUnavailable, err)
	}
	if body.User.UserID == "" {
		return models.Identity{}, errors.New("validation reply carries no user id")
	}
	return body.User, nil
}

// RawUserID forwards the user id itself as the bearer credential
type RawUserID struct{}

// ForwardedCredential returns "Bearer <userId>"
func (RawUserID) ForwardedCredential(identity models.Identity) (string, error) {
	return "Bearer " + identity.UserID, nil
}

// SignedAssertion forwards a short-lived gateway-signed JWT
type SignedAssertion struct {
	Secret string
	TTL    time.Duration
}

// ForwardedCredential returns "Bearer <assertion>"
func (s SignedAssertion) ForwardedCredential(identity models.Identity) (string, error) {
	token, err := middleware.SignIdentityAssertion(identity, s.Secret, s.TTL)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// AssertionTTL is the lifetime of forwarded identity assertions
const AssertionTTL = 60 * time.Second

// NewForwarder picks the forwarding mode from configuration
func NewForwarder(cfg config.GatewayConfig) (routing.CredentialForwarder, error) {
	switch cfg.IdentityForwarding {
	case config.IdentityForwardingRaw, "":
		return RawUserID{}, nil
	case config.IdentityForwardingSigned:
		if cfg.IdentityAssertionSecret == "" {
			return nil, errors.New("identity assertion secret is required for signed forwarding")
		}
		return SignedAssertion{Secret: cfg.IdentityAssertionSecret, TTL: AssertionTTL}, nil
	default:
		return nil, fmt.Errorf("unknown identity forwarding mode %q", cfg.IdentityForwarding)
	}
}
