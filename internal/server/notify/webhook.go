package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sunscout/sunscout/internal/feasibility"
)

// deliver sends webhook notifications for r to all configured targets.
// Errors are logged but do not affect the caller.
func (n *Notifier) deliver(r *feasibility.Report) {
	for _, wh := range n.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = n.sendSlack(url, r)
		case "teams":
			err = n.sendTeams(url, r)
		case "http":
			err = n.sendHTTP(url, r)
		default:
			slog.Warn("notify: unknown webhook type — skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("notify: webhook delivery failed",
				"type", wh.Type,
				"site", r.Site,
				"err", err,
			)
		} else {
			slog.Debug("notify: webhook delivered",
				"type", wh.Type,
				"site", r.Site,
				"decision", r.Decision,
			)
		}
	}
}

func (n *Notifier) sendSlack(url string, r *feasibility.Report) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", decisionLabel(r.Decision), message(r)),
	})
	return n.post(url, body)
}

func (n *Notifier) sendTeams(url string, r *feasibility.Report) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": decisionColor(r.Decision),
		"summary":    fmt.Sprintf("%s: %s", decisionLabel(r.Decision), r.Site),
		"title":      fmt.Sprintf("Site Feasibility: %s", decisionLabel(r.Decision)),
		"text":       message(r),
	}
	body, _ := json.Marshal(payload)
	return n.post(url, body)
}

func (n *Notifier) sendHTTP(url string, r *feasibility.Report) error {
	body, _ := json.Marshal(map[string]interface{}{"evaluation": r})
	return n.post(url, body)
}

func (n *Notifier) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func decisionColor(d feasibility.Decision) string {
	switch d {
	case feasibility.DecisionGo:
		return "2ECC71"
	case feasibility.DecisionNoGo:
		return "FF4F6A"
	default:
		return "FFAB40"
	}
}
