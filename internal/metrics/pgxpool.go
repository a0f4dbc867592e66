package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolStat struct {
	name string
	help string
	get  func(*pgxpool.Stat) float64
}

var poolStats = []poolStat{
	{"acquired_conns", "Connections currently acquired from the store pool.", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
	{"max_conns", "Maximum connections in the store pool.", func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
	{"total_conns", "Total connections in the store pool.", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
	{"idle_conns", "Idle connections in the store pool.", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
}

// RegisterStorePoolMetrics exposes the backup store pool statistics as gauges.
func RegisterStorePoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool) {
	for _, ps := range poolStats {
		get := ps.get
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store_pool",
			Name:      ps.name,
			Help:      ps.help,
		}, func() float64 {
			return get(pool.Stat())
		}))
	}
}
