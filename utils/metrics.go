package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forkitt_orders_created_total",
		Help: "Orders successfully created.",
	})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forkitt_order_transitions_total",
		Help: "Order status transitions by source and target status.",
	}, []string{"from", "to"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forkitt_notifications_total",
		Help: "Outbound notification attempts by channel and final status.",
	}, []string{"channel", "status"})

	InboundWebhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forkitt_inbound_webhooks_total",
		Help: "Inbound webhook payloads by provider and outcome.",
	}, []string{"provider", "outcome"})
)
