package notify

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sunscout/sunscout/internal/config"
	"github.com/sunscout/sunscout/internal/feasibility"
)

const defaultCooldown = 15 * time.Minute

// Notifier delivers webhook notifications for completed evaluations whose
// decision matches the configured notify_on set. Repeat notifications for the
// same site are suppressed for the cooldown window.
//
// Notifier is safe for concurrent use.
type Notifier struct {
	webhooks []config.WebhookConfig
	notifyOn map[feasibility.Decision]bool
	cooldown time.Duration

	mu       sync.Mutex
	lastSent map[string]time.Time // key: site address

	client *http.Client
	now    func() time.Time
}

// New creates a Notifier from the server configuration.
// A Notifier with no webhooks is valid — Notify becomes a no-op.
func New(cfg config.ServerConfig) *Notifier {
	on := make(map[feasibility.Decision]bool, len(cfg.NotifyOn))
	for _, d := range cfg.NotifyOn {
		on[feasibility.Decision(d)] = true
	}

	cooldown := cfg.NotifyCooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}

	return &Notifier{
		webhooks: cfg.Webhooks,
		notifyOn: on,
		cooldown: cooldown,
		lastSent: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Notify delivers r to all configured webhooks if its decision is in the
// notify_on set and the site is not in its cooldown window. Delivery happens
// asynchronously — Notify never blocks on the network.
func (n *Notifier) Notify(r *feasibility.Report) {
	if len(n.webhooks) == 0 || !n.notifyOn[r.Decision] {
		return
	}

	now := n.now()

	n.mu.Lock()
	if now.Sub(n.lastSent[r.Site]) <= n.cooldown {
		n.mu.Unlock()
		return
	}
	n.lastSent[r.Site] = now
	n.mu.Unlock()

	slog.Info("notify: decision notification",
		"site", r.Site,
		"decision", r.Decision,
		"score_defined", r.ScoreDefined,
	)
	go n.deliver(r)
}

// message renders the human-readable notification text for r.
func message(r *feasibility.Report) string {
	var b strings.Builder
	if r.ScoreDefined {
		fmt.Fprintf(&b, "%s decision for %s (composite %.2f)", decisionLabel(r.Decision), r.Site, r.CompositeScore)
	} else {
		fmt.Fprintf(&b, "%s decision for %s (no composite score)", decisionLabel(r.Decision), r.Site)
	}
	for _, line := range r.Justification {
		b.WriteString("\n• ")
		b.WriteString(line)
	}
	return b.String()
}

func decisionLabel(d feasibility.Decision) string {
	switch d {
	case feasibility.DecisionGo:
		return "GO"
	case feasibility.DecisionNoGo:
		return "NO_GO"
	default:
		return "INDETERMINATE"
	}
}
