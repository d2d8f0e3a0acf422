package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sunscout/sunscout/internal/config"
	"github.com/sunscout/sunscout/internal/feasibility"
)

// recorder captures webhook deliveries from the async deliver goroutine.
type recorder struct {
	srv    *httptest.Server
	bodies chan []byte
}

func newRecorder(t *testing.T) *recorder {
	t.Helper()
	rec := &recorder{bodies: make(chan []byte, 8)}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.bodies <- body
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

// waitBody returns the next delivered body, failing the test after a timeout.
func (rec *recorder) waitBody(t *testing.T) []byte {
	t.Helper()
	select {
	case b := <-rec.bodies:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("no webhook delivery within 2s")
		return nil
	}
}

// assertNoDelivery fails if a webhook arrives within a short window.
func (rec *recorder) assertNoDelivery(t *testing.T) {
	t.Helper()
	select {
	case b := <-rec.bodies:
		t.Fatalf("unexpected webhook delivery: %s", b)
	case <-time.After(100 * time.Millisecond):
	}
}

func noGoReport(site string) *feasibility.Report {
	return &feasibility.Report{
		ID:             "r-" + site,
		Site:           site,
		CompositeScore: 67.14,
		ScoreDefined:   true,
		Decision:       feasibility.DecisionNoGo,
		Justification:  []string{"composite score 67.14 is below GO threshold 70.00"},
		GeneratedAt:    time.Now().UTC(),
	}
}

func newNotifier(t *testing.T, rec *recorder, whType string) *Notifier {
	t.Helper()
	t.Setenv("TEST_WEBHOOK_URL", rec.srv.URL)
	return New(config.ServerConfig{
		Webhooks:       []config.WebhookConfig{{Type: whType, URLEnv: "TEST_WEBHOOK_URL"}},
		NotifyOn:       []string{"no_go", "indeterminate"},
		NotifyCooldown: time.Hour,
	})
}

func TestNotifier_DeliversMatchingDecision(t *testing.T) {
	rec := newRecorder(t)
	n := newNotifier(t, rec, "http")

	n.Notify(noGoReport("12 Elm St, Boulder, CO"))

	var payload struct {
		Evaluation feasibility.Report `json:"evaluation"`
	}
	if err := json.Unmarshal(rec.waitBody(t), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Evaluation.Decision != feasibility.DecisionNoGo {
		t.Errorf("decision = %s, want no_go", payload.Evaluation.Decision)
	}
	if payload.Evaluation.Site != "12 Elm St, Boulder, CO" {
		t.Errorf("site = %s", payload.Evaluation.Site)
	}
}

func TestNotifier_SkipsUnlistedDecision(t *testing.T) {
	rec := newRecorder(t)
	n := newNotifier(t, rec, "http")

	r := noGoReport("99 Sun Ave, Austin, TX")
	r.Decision = feasibility.DecisionGo
	n.Notify(r)

	rec.assertNoDelivery(t)
}

func TestNotifier_CooldownSuppressesRepeat(t *testing.T) {
	rec := newRecorder(t)
	n := newNotifier(t, rec, "http")

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return base }

	n.Notify(noGoReport("1 Repeat Rd, Denver, CO"))
	rec.waitBody(t)

	// Same site inside the cooldown window — suppressed.
	n.now = func() time.Time { return base.Add(30 * time.Minute) }
	n.Notify(noGoReport("1 Repeat Rd, Denver, CO"))
	rec.assertNoDelivery(t)

	// Different site is not affected by the first site's cooldown.
	n.Notify(noGoReport("2 Other Ln, Denver, CO"))
	rec.waitBody(t)

	// Past the cooldown window the original site notifies again.
	n.now = func() time.Time { return base.Add(2 * time.Hour) }
	n.Notify(noGoReport("1 Repeat Rd, Denver, CO"))
	rec.waitBody(t)
}

func TestNotifier_SlackPayloadShape(t *testing.T) {
	rec := newRecorder(t)
	n := newNotifier(t, rec, "slack")

	n.Notify(noGoReport("5 Shade Ct, Seattle, WA"))

	var payload map[string]string
	if err := json.Unmarshal(rec.waitBody(t), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["text"] == "" {
		t.Error("slack payload missing text field")
	}
}

func TestNotifier_NoWebhooksIsNoop(t *testing.T) {
	n := New(config.ServerConfig{NotifyOn: []string{"no_go"}})
	n.Notify(noGoReport("anywhere")) // must not panic
}
