package service

import "github.com/prometheus/client_golang/prometheus"

var usersCreated = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "users_created_total", Help: "User registrations by result"},
	[]string{"result"},
)

func init() { prometheus.MustRegister(usersCreated) }
