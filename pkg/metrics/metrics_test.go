package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/Order/GetOrder/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/Order/GetOrder/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	body := scrape(t)
	assert.Contains(t, body, `cafe_http_request_duration_seconds_count{method="GET",route="/Order/GetOrder/{id}",status="200"} 3`)
	assert.Contains(t, body, `route="unmatched",status="404"`)
	assert.NotContains(t, body, `/Order/GetOrder/1`)
}

func TestDomainCounters(t *testing.T) {
	RecordOrderPlaced("", 12.5)
	RecordStatusTransition("pending", "preparing")
	RecordQueueJob("jobs.SendMailJob", "success", time.Now())

	body := scrape(t)
	assert.Contains(t, body, `cafe_orders_placed_total{payment_method="unknown"}`)
	assert.Contains(t, body, `cafe_orders_status_transitions_total{from="pending",to="preparing"}`)
	assert.Contains(t, body, `cafe_queue_jobs_total{job_type="jobs.SendMailJob",status="success"}`)
}

func TestCustomCollectorsAreServed(t *testing.T) {
	c := NewCounter("cafe_test", "widgets_total", "Widgets.", []string{"kind"})
	c.WithLabelValues("blue").Add(2)

	assert.Contains(t, scrape(t), `cafe_test_widgets_total{kind="blue"} 2`)
}

func TestRecordOrderPlacedIgnoresNonPositiveTotals(t *testing.T) {
	assert.NotPanics(t, func() { RecordOrderPlaced("Card", -380) })
	assert.NotPanics(t, func() { RecordOrderPlaced("Card", 0) })
}
