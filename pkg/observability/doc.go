/*
Package observability provides tools for monitoring the patchbay editor.

It maps the graph store lifecycle hooks to Prometheus metrics and structured
log lines, so the HTTP server can expose /metrics and operators can follow
every mutation and refused connection.
*/
package observability
