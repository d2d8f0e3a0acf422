// Package api exposes site evaluations over HTTP JSON.
//
// Routes:
//   - POST /api/v1/evaluations        — evaluate an address, persist and return the report
//   - GET  /api/v1/evaluations        — recent reports, newest first (?limit=N)
//   - GET  /api/v1/evaluations/{id}   — one stored report
//   - GET  /api/v1/health             — decision counts and mean composite
//
// The handler never surfaces evaluation failures as HTTP errors: a report is
// returned even when every producer failed. Only malformed requests (bad
// body, unparseable address) and storage faults map to error statuses.
package api
