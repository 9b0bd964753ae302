// Package metrics exposes Prometheus metrics for completion calls, retries,
// provider health and inbound HTTP traffic.
//
// A Collector is registered on the completion client as an observer:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	client := providers.NewClient(transport, policy, providers.WithObserver(collector))
//	mux.Handle("/metrics", collector.Handler())
package metrics
