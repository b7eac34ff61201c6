package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency     = metric.NewHistogram("1m1s")
	HeartbeatsProcessed = metric.NewCounter("10s1s")
	ElectionsStarted    = metric.NewCounter("1m1s")
	ElectionsWon        = metric.NewCounter("1m1s")
	GatewayChanges      = metric.NewCounter("1m1s")
	TopologyMerges      = metric.NewCounter("1m1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("embermesh:DispatchLatency (µs)", DispatchLatency)
	expvar.Publish("embermesh:Heartbeats/s", HeartbeatsProcessed)
	expvar.Publish("embermesh:ElectionsStarted", ElectionsStarted)
	expvar.Publish("embermesh:ElectionsWon", ElectionsWon)
	expvar.Publish("embermesh:GatewayChanges", GatewayChanges)
	expvar.Publish("embermesh:TopologyMerges", TopologyMerges)
}
