// Package health fans out health and info probes to the downstream services
// and folds the answers into one composite view.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kursor/services/gateway/metrics"
	"kursor/services/gateway/routing"
	"kursor/shared/logger"

	"golang.org/x/sync/errgroup"
)

// Composite statuses
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Sentinel statuses for probes that did not produce a usable answer
const (
	StatusDown        = "down"
	StatusUnavailable = "unavailable"
)

// Probe kinds
const (
	KindHealth = "health"
	KindInfo   = "info"
)

// Report is the JSON object a service returned from a probe, or a sentinel
type Report map[string]interface{}

// Status returns the report's status field, or "" if it has none
func (r Report) Status() string {
	s, _ := r["status"].(string)
	return s
}

// Snapshot is the joined result of health and info probes for every service
type Snapshot struct {
	Health map[string]Report
	Info   map[string]Report
}

// Healthy counts services reporting status "healthy"
func (s Snapshot) Healthy() int {
	return CountHealthy(s.Health)
}

// Aggregator probes every registered service concurrently
type Aggregator struct {
	registry *routing.Registry
	client   *http.Client
	timeout  time.Duration
	metrics  *metrics.Metrics
}

// NewAggregator creates an aggregator. Every probe is bounded by timeout
// regardless of the client's own settings.
func NewAggregator(registry *routing.Registry, client *http.Client, timeout time.Duration, m *metrics.Metrics) *Aggregator {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Aggregator{
		registry: registry,
		client:   client,
		timeout:  timeout,
		metrics:  m,
	}
}

// Health probes /health on every service. It always returns one report per
// service, keyed by service name.
func (a *Aggregator) Health(ctx context.Context) map[string]Report {
	return a.fanOut(ctx, KindHealth)
}

// Info probes /info on every service
func (a *Aggregator) Info(ctx context.Context) map[string]Report {
	return a.fanOut(ctx, KindInfo)
}

// Snapshot runs the health and info fan-outs side by side
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	var snap Snapshot
	var g errgroup.Group
	g.Go(func() error {
		snap.Health = a.Health(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Info = a.Info(ctx)
		return nil
	})
	_ = g.Wait()
	return snap
}

// Composite folds per-service health into the gateway status
func Composite(reports map[string]Report) string {
	for _, r := range reports {
		if r.Status() != StatusHealthy {
			return StatusDegraded
		}
	}
	return StatusHealthy
}

// CountHealthy counts reports whose status is "healthy"
func CountHealthy(reports map[string]Report) int {
	n := 0
	for _, r := range reports {
		if r.Status() == StatusHealthy {
			n++
		}
	}
	return n
}

func (a *Aggregator) fanOut(ctx context.Context, kind string) map[string]Report {
	services := a.registry.Services()
	slots := make([]Report, len(services))

	var g errgroup.Group
	for i, svc := range services {
		g.Go(func() error {
			slots[i] = a.probe(ctx, svc, kind)
			return nil
		})
	}
	// Probes never fail; failures are folded into sentinels.
	_ = g.Wait()

	out := make(map[string]Report, len(services))
	for i, svc := range services {
		out[svc.Name] = slots[i]
	}
	return out
}

func (a *Aggregator) probe(ctx context.Context, svc routing.Service, kind string) Report {
	start := time.Now()
	report, err := a.fetch(ctx, svc.URL+"/"+kind)
	result := "ok"
	if err != nil {
		result = "failed"
		report = sentinel(kind)
		logger.WithFields(map[string]interface{}{
			"service": svc.Name,
			"kind":    kind,
			"error":   err.Error(),
		}).Warn("Service probe failed")
	}
	a.metrics.ObserveProbe(svc.Name, kind, result, time.Since(start))
	return report
}

func (a *Aggregator) fetch(ctx context.Context, url string) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	if report == nil {
		return nil, fmt.Errorf("empty body from %s", url)
	}
	return report, nil
}

func sentinel(kind string) Report {
	if kind == KindInfo {
		return Report{"status": StatusUnavailable}
	}
	return Report{"status": StatusDown}
}
