package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// budgetAlertsTotal counts threshold evaluations that matched a label, by outcome
	budgetAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_budget_alerts_total",
			Help: "Budget threshold alerts by label and outcome (sent, suppressed, failed)",
		},
		[]string{"label", "outcome"},
	)

	// notificationsDeliveredTotal counts notification deliveries by the dispatcher worker
	notificationsDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_notifications_delivered_total",
			Help: "Notifications handled by the dispatcher, by result (stored, failed, dropped)",
		},
		[]string{"result"},
	)

	// notificationQueueDepth tracks pending notifications
	notificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "finance_notification_queue_depth",
			Help: "Notifications waiting in the dispatcher queue",
		},
	)
)
