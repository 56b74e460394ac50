// Package api hosts the HTTP server for operators. Notable routes:
//   - GET /healthz and /readyz for probes; readyz pings the notice store.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/runs to trigger a run; 409 when one is already active.
//   - GET /v1/notices and /v1/notices/{id} to read stored notices.
package api
