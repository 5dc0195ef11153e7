package s3rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StatRegistry = prometheus.NewRegistry()

	statRequestsDispatched = promauto.With(StatRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "RequestsDispatched",
			Help: "Total count of signed requests dispatched, by method and response status",
		},
		[]string{
			"method",
			"status",
		},
	)
	statTransportFailures = promauto.With(StatRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "TransportFailures",
			Help: "Total count of dispatch attempts that failed before a response was received",
		},
		[]string{
			"method",
		},
	)
	statBytesTransferredOut = promauto.With(StatRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "BytesTransferredOut",
			Help: "Number of request payload bytes sent",
		},
		[]string{
			"method",
		},
	)
	statBytesTransferredIn = promauto.With(StatRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "BytesTransferredIn",
			Help: "Number of response body bytes received",
		},
		[]string{
			"method",
		},
	)
)
