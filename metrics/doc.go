// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics defines the Prometheus collectors for the service.

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

Collectors are exposed on GET /metrics by the router. All helpers accept a
nil receiver, so components can run without metrics in tests.
*/
package metrics
