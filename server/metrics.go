package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "walletdash_transfers_total",
		Help: "Transfer submissions by pipeline kind and outcome.",
	}, []string{"kind", "outcome"})

	balanceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "walletdash_balance_lookups_total",
		Help: "Balance lookups by result.",
	}, []string{"result"})

	catalogFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "walletdash_catalog_fetches_total",
		Help: "Token catalog fetches by result.",
	}, []string{"result"})
)
