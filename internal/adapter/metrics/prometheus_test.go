package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Observe(ctx, "mark_in_use", true, 15*time.Millisecond)
	r.Observe(ctx, "mark_in_use", false, 3*time.Millisecond)
	r.Observe(ctx, "mark_in_use", true, 5*time.Millisecond)
	r.Observe(ctx, "", true, time.Millisecond) // ignored

	if got := testutil.ToFloat64(r.total.WithLabelValues("mark_in_use", "success")); got != 2 {
		t.Fatalf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.total.WithLabelValues("mark_in_use", "error")); got != 1 {
		t.Fatalf("error count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(r.durations); n != 1 {
		t.Fatalf("histogram series = %d, want 1", n)
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.Observe(context.Background(), "create", true, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`custody_transitions_total{op="create",result="success"} 1`,
		"custody_transition_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("exposition missing %q", want)
		}
	}
}
