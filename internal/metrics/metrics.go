package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ludo_sessions_created_total",
		Help: "Number of game sessions created.",
	})

	RollsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ludo_rolls_resolved_total",
		Help: "Number of rolls resolved, including rejected ones.",
	})

	Captures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ludo_captures_total",
		Help: "Number of tokens sent home by a capture.",
	})

	Wins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ludo_wins_total",
		Help: "Number of recorded wins across all sessions.",
	})

	TurnTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ludo_turn_timeouts_total",
		Help: "Number of turns skipped by the idle-turn timer.",
	})
)
