package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kursor/services/gateway/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
}

type stub struct {
	health string
	info   string
	status int
	delay  time.Duration
}

func stubService(t *testing.T, s stub) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-r.Context().Done():
				return
			}
		}
		if s.status != 0 {
			w.WriteHeader(s.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(s.health))
		case "/info":
			_, _ = w.Write([]byte(s.info))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func registry(t *testing.T, urls map[string]string) *routing.Registry {
	t.Helper()
	var services []routing.Service
	for _, name := range []string{routing.ServiceExecution, routing.ServiceCommunication, routing.ServiceSnippet, routing.ServiceUser} {
		u, ok := urls[name]
		if !ok {
			u = "http://127.0.0.1:1"
		}
		services = append(services, routing.Service{Name: name, URL: u})
	}
	reg, err := routing.NewRegistry(services...)
	require.NoError(t, err)
	return reg
}

const healthyBody = `{"status":"healthy","service":"x"}`

func TestAllHealthy(t *testing.T) {
	urls := map[string]string{}
	for _, name := range []string{routing.ServiceExecution, routing.ServiceCommunication, routing.ServiceSnippet, routing.ServiceUser} {
		urls[name] = stubService(t, stub{health: healthyBody, info: `{"service":"` + name + `"}`})
	}
	agg := NewAggregator(registry(t, urls), testClient(), time.Second, nil)

	reports := agg.Health(context.Background())

	require.Len(t, reports, 4)
	assert.Equal(t, StatusHealthy, Composite(reports))
	assert.Equal(t, 4, CountHealthy(reports))
	assert.Equal(t, "x", reports[routing.ServiceUser]["service"])
}

func TestOneDownIsDegraded(t *testing.T) {
	urls := map[string]string{}
	for _, name := range []string{routing.ServiceExecution, routing.ServiceCommunication, routing.ServiceSnippet} {
		urls[name] = stubService(t, stub{health: healthyBody})
	}
	agg := NewAggregator(registry(t, urls), testClient(), time.Second, nil)

	reports := agg.Health(context.Background())

	assert.Equal(t, StatusDegraded, Composite(reports))
	assert.Equal(t, Report{"status": StatusDown}, reports[routing.ServiceUser])
	assert.Equal(t, 3, CountHealthy(reports))
}

func TestFailureModesBecomeSentinels(t *testing.T) {
	urls := map[string]string{
		routing.ServiceExecution:     stubService(t, stub{status: http.StatusInternalServerError}),
		routing.ServiceCommunication: stubService(t, stub{health: `not json`, info: `not json`}),
		routing.ServiceSnippet:       stubService(t, stub{health: healthyBody, delay: time.Second}),
		routing.ServiceUser:          stubService(t, stub{health: `{"status":"unhealthy"}`, info: `{"service":"user"}`}),
	}
	agg := NewAggregator(registry(t, urls), testClient(), 100*time.Millisecond, nil)

	snap := agg.Snapshot(context.Background())

	assert.Equal(t, StatusDown, snap.Health[routing.ServiceExecution].Status())
	assert.Equal(t, StatusDown, snap.Health[routing.ServiceCommunication].Status())
	assert.Equal(t, StatusDown, snap.Health[routing.ServiceSnippet].Status())
	assert.Equal(t, "unhealthy", snap.Health[routing.ServiceUser].Status(), "reported status is kept as-is")

	assert.Equal(t, StatusUnavailable, snap.Info[routing.ServiceExecution].Status())
	assert.Equal(t, StatusUnavailable, snap.Info[routing.ServiceCommunication].Status())
	assert.Equal(t, "user", snap.Info[routing.ServiceUser]["service"])
	assert.Equal(t, 0, snap.Healthy())
}

func TestAllDownStillAnswers(t *testing.T) {
	agg := NewAggregator(registry(t, nil), testClient(), 200*time.Millisecond, nil)

	reports := agg.Health(context.Background())

	require.Len(t, reports, 4)
	for name, r := range reports {
		assert.Equal(t, StatusDown, r.Status(), name)
	}
	assert.Equal(t, StatusDegraded, Composite(reports))
}

func TestLatencyIsBoundedBySlowestProbe(t *testing.T) {
	delay := 150 * time.Millisecond
	urls := map[string]string{}
	for _, name := range []string{routing.ServiceExecution, routing.ServiceCommunication, routing.ServiceSnippet, routing.ServiceUser} {
		urls[name] = stubService(t, stub{health: healthyBody, delay: delay})
	}
	agg := NewAggregator(registry(t, urls), testClient(), 2*time.Second, nil)

	start := time.Now()
	reports := agg.Health(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, StatusHealthy, Composite(reports))
	assert.Less(t, elapsed, 3*delay, "probes run concurrently")
}

func TestProbeDeadlineCapsSlowService(t *testing.T) {
	urls := map[string]string{
		routing.ServiceUser: stubService(t, stub{health: healthyBody, delay: 5 * time.Second}),
	}
	agg := NewAggregator(registry(t, urls), testClient(), 100*time.Millisecond, nil)

	start := time.Now()
	reports := agg.Health(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, StatusDown, reports[routing.ServiceUser].Status())
}
