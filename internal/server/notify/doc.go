// Package notify pushes decision notifications to Slack, Teams, or generic
// HTTP webhooks when an evaluation completes with a configured decision
// (no_go and indeterminate by default). A per-site cooldown suppresses repeat
// notifications for the same address.
package notify
