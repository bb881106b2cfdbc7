package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentTransitionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activation",
			Name:      "document_transitions_total",
			Help:      "Total activation status transitions applied.",
		},
		[]string{"target"},
	)

	settlementsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activation",
			Name:      "settlements_total",
			Help:      "Total settlement computations at activation.",
		},
		[]string{"outcome"}, // priced, unpriced, kept
	)

	chatMessagesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "activation",
			Name:      "chat_messages_total",
			Help:      "Total chat messages persisted.",
		},
	)
)
