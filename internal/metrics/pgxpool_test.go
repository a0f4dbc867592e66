package metrics

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterStorePoolMetrics(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://backupd@127.0.0.1:1/backups?pool_max_conns=7")
	require.NoError(t, err)
	// Pools connect lazily, so nothing dials here.
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer pool.Close()

	reg := prometheus.NewRegistry()
	RegisterStorePoolMetrics(reg, pool)

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, len(poolStats), count)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "backupd_store_pool_max_conns" {
			assert.Equal(t, float64(7), mf.GetMetric()[0].GetGauge().GetValue())
			return
		}
	}
	t.Fatal("backupd_store_pool_max_conns not registered")
}
