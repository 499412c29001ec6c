package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "election_api"

type VoteMetrics struct {
	Accepted    *prometheus.CounterVec
	Rejected    *prometheus.CounterVec
	CastSeconds *prometheus.HistogramVec
}

func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	factory := promauto.With(reg)

	return &VoteMetrics{
		Accepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tally",
				Name:      "votes_accepted_total",
				Help:      "Votes recorded and counted",
			},
			[]string{"election_id"},
		),
		Rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tally",
				Name:      "votes_rejected_total",
				Help:      "Votes refused, by rejection reason",
			},
			[]string{"election_id", "reason"},
		),
		CastSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tally",
				Name:      "vote_cast_seconds",
				Help:      "Wall time of the full cast pipeline",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"election_id"},
		),
	}
}

type BroadcastMetrics struct {
	Delivered   prometheus.Counter
	Dropped     *prometheus.CounterVec
	Subscribers prometheus.Gauge
}

func NewBroadcastMetrics(reg prometheus.Registerer) *BroadcastMetrics {
	factory := promauto.With(reg)

	return &BroadcastMetrics{
		Delivered: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "broadcast",
				Name:      "events_delivered_total",
				Help:      "Events written to subscriber queues",
			},
		),
		Dropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "broadcast",
				Name:      "events_dropped_total",
				Help:      "Events lost, by drop reason",
			},
			[]string{"reason"},
		),
		Subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "broadcast",
				Name:      "subscribers",
				Help:      "Currently connected live subscribers",
			},
		),
	}
}
