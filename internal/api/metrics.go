package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synmon_gateway_commands_total",
		Help: "Gateway commands dispatched, by opcode and outcome.",
	}, []string{"op", "outcome"})

	gatewayOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synmon_gateway_opens_total",
		Help: "Gateway open attempts, by outcome.",
	}, []string{"outcome"})

	streamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "synmon_log_stream_clients",
		Help: "Connected websocket log stream clients.",
	})
)
