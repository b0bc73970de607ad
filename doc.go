/*
Package papertrail is a streaming academic search server. A single query
fans out into concurrent author and publication lookups whose results are
pushed to clients over server-sent events the moment each one resolves,
and every discovered author spawns follow-up enrichment work into the
same stream.

Streaming engine (pkg/streaming):
  - dynamic: Self-expanding task pool consumed as a completion-order iterator

Observability (pkg/metrics):
  - Prometheus counters, gauges, and histograms for every component

The server itself lives under internal/ and cmd/papertrail:

	papertrail serve    # run the HTTP server
	papertrail migrate  # apply database schema migrations

GET /search?query=... responds with an event stream of tagged JSON
payloads (set:author:list, set:publication:list, update:author) and a
terminal finish event.
*/
package papertrail
