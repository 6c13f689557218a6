// Package metrics exposes prometheus counters for the core operations.
// Registration happens on the default registry; the embedding process
// decides how to serve them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_login_attempts_total", Help: "Count of authenticate calls"},
		[]string{"result"}, // "ok" / "fail"
	)
	TokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_tokens_issued_total", Help: "Count of bearer tokens issued"},
		[]string{"kind"}, // "remember" / "activation" / "reset"
	)
	GraphMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "graph_mutations_total", Help: "Count of follow/unfollow mutations"},
		[]string{"op"}, // "follow" / "unfollow"
	)
	FeedQueries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "feed_queries_total", Help: "Count of feed reads"},
	)
)

func init() {
	prometheus.MustRegister(LoginAttempts, TokensIssued, GraphMutations, FeedQueries)
}
