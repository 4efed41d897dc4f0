package cmd

import (
	"os"

	"github.com/chinmay1088/chaingate/logger"
	"github.com/chinmay1088/chaingate/metrics"
	"github.com/chinmay1088/chaingate/server"
	"github.com/chinmay1088/chaingate/wallet"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the gateway over HTTP.

Sends are enabled when the wallet password is supplied in ` + PasswordEnv + `.
Without it the server is read-only and sends fail as not supported.

Endpoints:
  GET  /healthz
  GET  /metrics
  GET  /v1/balance/:currency/:address?usd=true
  GET  /v1/tokens/:token/balance/:address
  GET  /v1/price/:currency
  GET  /v1/history/:currency/:address?limit=20
  POST /v1/transactions`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := logger.Log

	var keys *wallet.KeyRing
	if _, ok := os.LookupEnv(PasswordEnv); ok {
		k, err := unlockWallet()
		if err != nil {
			return err
		}
		defer k.Wipe()
		keys = k
	} else {
		log.Warn("wallet password not set, serving read-only", zap.String("env", PasswordEnv))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	a, err := newApp(cmd.Context(), cfg, keys, m)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.gateway, server.Config{
		Addr:           cfg.Server.Addr,
		Metrics:        m,
		Gatherer:       reg,
		Logger:         log,
		RequestTimeout: cfg.App.RequestTimeout,
	})
	return srv.Run(cmd.Context())
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
}
