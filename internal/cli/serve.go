package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/SystemBuilders/StripeKey/internal/cache"
	"github.com/SystemBuilders/StripeKey/internal/ceph"
	"github.com/SystemBuilders/StripeKey/internal/config"
	"github.com/SystemBuilders/StripeKey/internal/metrics"
	"github.com/SystemBuilders/StripeKey/internal/node"
	"github.com/SystemBuilders/StripeKey/internal/routing"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}

		clusters, err := ceph.Discover(log, cfg.Ceph.ConfigPattern, ceph.Options{
			User:       cfg.Ceph.User,
			MonTimeout: cfg.Ceph.MonTimeout,
			OsdTimeout: cfg.Ceph.OsdTimeout,
			Layout: ceph.Layout{
				StripeUnit:  cfg.Ceph.StripeUnit,
				StripeCount: cfg.Ceph.StripeCount,
				ObjectSize:  cfg.Ceph.ObjectSize,
			},
		})
		if err != nil {
			return err
		}
		defer func() {
			for _, c := range clusters {
				c.Shutdown()
			}
		}()

		cluster, err := pickCluster(clusters, cfg.Ceph)
		if err != nil {
			return err
		}

		pools := cache.NewPoolCache(log, cluster, cfg.Ceph.PoolCache)
		defer pools.Close()

		var gatherer prometheus.Gatherer
		if cfg.Metrics.Enabled {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			if err := metrics.Register(reg); err != nil {
				return err
			}
			gatherer = reg
		}

		router := routing.SetupRouting(log, pools, gatherer, mux.NewRouter())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return node.Start(ctx, log.With().Str("cluster", cluster.Name).Logger(), &cfg.Server, router)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// pickCluster selects the configured cluster, or the only one discovered.
func pickCluster(clusters map[string]*ceph.Cluster, cfg config.CephConfig) (*ceph.Cluster, error) {
	if cfg.Cluster != "" {
		c, ok := clusters[cfg.Cluster]
		if !ok {
			return nil, fmt.Errorf("cluster %s not found under %s", cfg.Cluster, cfg.ConfigPattern)
		}
		return c, nil
	}
	if len(clusters) != 1 {
		names := make([]string, 0, len(clusters))
		for name := range clusters {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%d clusters found (%v), set ceph.cluster", len(clusters), names)
	}
	for _, c := range clusters {
		return c, nil
	}
	return nil, nil
}
