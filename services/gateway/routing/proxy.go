package routing

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kursor/services/gateway/metrics"
	"kursor/shared/logger"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// hopHeaders are connection-scoped and never forwarded in either direction
var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailers":            true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// Proxy relays one inbound request to one downstream service. It never
// retries: a failed call is reported to the caller immediately.
type Proxy struct {
	client  *http.Client
	metrics *metrics.Metrics
}

// NewProxy creates a proxy using client for outbound calls
func NewProxy(client *http.Client, m *metrics.Metrics) *Proxy {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Proxy{client: WithoutRedirects(client), metrics: m}
}

// WithoutRedirects returns a copy of client that hands 3xx responses back to
// the caller instead of following them.
func WithoutRedirects(client *http.Client) *http.Client {
	out := *client
	out.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &out
}

// Forward sends the current request to svc, keeping method, path, query,
// headers and body. A non-empty authorization replaces the inbound
// Authorization header. The downstream response is relayed verbatim;
// a connection failure becomes 503 naming the service.
func (p *Proxy) Forward(c *gin.Context, svc Service, authorization string) {
	requestID := requestid.Get(c)
	startTime := time.Now()

	target, err := targetURL(svc.URL, c.Request.URL)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"service":    svc.Name,
			"error":      err.Error(),
			"target_url": svc.URL,
		}).Error("Failed to build target URL")
		_ = c.Error(fmt.Errorf("service %s: %w", svc.Name, err))
		return
	}

	proxyReq, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"service":    svc.Name,
			"error":      err.Error(),
			"proxy_url":  target,
		}).Error("Failed to create proxy request")
		_ = c.Error(fmt.Errorf("service %s: %w", svc.Name, err))
		return
	}
	proxyReq.ContentLength = c.Request.ContentLength

	copyHeaders(c.Request.Header, proxyReq.Header)
	if authorization != "" {
		proxyReq.Header.Set("Authorization", authorization)
	}
	proxyReq.Header.Set("X-Request-ID", requestID)
	proxyReq.Header.Set("X-Forwarded-For", forwardedFor(c.Request.Header.Values("X-Forwarded-For"), c.RemoteIP()))
	if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto != "" {
		proxyReq.Header.Set("X-Forwarded-Proto", proto)
	} else if c.Request.TLS != nil {
		proxyReq.Header.Set("X-Forwarded-Proto", "https")
	} else {
		proxyReq.Header.Set("X-Forwarded-Proto", "http")
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"service":    svc.Name,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"proxy_url":  target,
	}).Debug("Proxying request to service")

	resp, err := p.client.Do(proxyReq)
	if err != nil {
		p.metrics.ProxyFailure(svc.Name)
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"service":    svc.Name,
			"error":      err.Error(),
			"duration":   time.Since(startTime),
		}).Error("Proxy request failed")

		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":      fmt.Sprintf("%s unavailable", svc.DisplayName),
			"request_id": requestID,
		})
		return
	}
	defer resp.Body.Close()

	replaceHeaders(resp.Header, c.Writer.Header())
	c.Status(resp.StatusCode)
	written, err := io.Copy(c.Writer, resp.Body)

	duration := time.Since(startTime)
	p.metrics.ObserveProxy(svc.Name, resp.StatusCode, duration)

	fields := map[string]interface{}{
		"request_id":    requestID,
		"service":       svc.Name,
		"status_code":   resp.StatusCode,
		"duration":      duration,
		"response_size": written,
	}
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		fields["error"] = err.Error()
		logger.WithFields(fields).Warn("Proxy response interrupted")
		return
	}
	logger.WithFields(fields).Info("Proxy request completed")
}

// targetURL joins the service base URL with the inbound path and query. The
// inbound path is kept as-is (identity rewrite).
func targetURL(base string, in *url.URL) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid service URL: %w", err)
	}
	out := &url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     strings.TrimRight(u.Path, "/") + in.Path,
		RawQuery: in.RawQuery,
	}
	if in.RawPath != "" {
		out.RawPath = strings.TrimRight(u.Path, "/") + in.RawPath
	}
	return out.String(), nil
}

// forwardedFor appends the peer address to any chain the caller sent
func forwardedFor(chain []string, remoteIP string) string {
	hops := make([]string, 0, len(chain)+1)
	hops = append(hops, chain...)
	if remoteIP != "" {
		hops = append(hops, remoteIP)
	}
	return strings.Join(hops, ", ")
}

// copyHeaders copies end-to-end headers from src to dst
func copyHeaders(src, dst http.Header) {
	for key, values := range src {
		if hopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

// replaceHeaders copies end-to-end headers from src, replacing any value dst
// already holds for the same key so downstream headers win.
func replaceHeaders(src, dst http.Header) {
	for key, values := range src {
		if hopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		dst.Del(key)
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
