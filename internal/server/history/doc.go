// Package history persists evaluation reports in SQLite, keyed by report ID.
// Reports are stored as JSON alongside queryable decision/score columns so the
// API can list and summarise without decoding every row. A background sweep
// (Run) deletes rows older than the configured retention.
package history
