// Package metrics provides Prometheus instrumentation for papertrail components.
//
// The package exposes a Registry of metric vectors covering the streaming
// engine (task outcomes, pool occupancy, published values), the scoped
// cache (hits, misses, errors), upstream sources (requests, latency),
// and the HTTP/SSE surface (event frames, open streams, request latency).
//
// # Quick Start
//
// Components accept a *Registry; passing nil keeps them uninstrumented.
// DefaultRegistry registers against prometheus.DefaultRegisterer:
//
//	it := dynamic.NewIterator(tasks, dynamic.Config{
//		MaxConcurrentTasks: 10,
//		MaxTotalTasks:      100,
//		Metrics:            metrics.DefaultRegistry,
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation, typically in tests:
//
//	registry := prometheus.NewRegistry()
//	reg := metrics.NewRegistry(registry)
package metrics
