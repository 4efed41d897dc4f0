// Package server exposes the gateway over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/chinmay1088/chaingate/gateway"
	"github.com/chinmay1088/chaingate/metrics"
	"github.com/chinmay1088/chaingate/price"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 1000

	shutdownTimeout = 5 * time.Second
)

// Service is the gateway surface the API serves. *gateway.Gateway implements it.
type Service interface {
	GetBalance(ctx context.Context, address, currency string, opts ...gateway.BalanceOption) (chain.Balance, error)
	GetTokenBalance(ctx context.Context, wallet, token string) (chain.Balance, error)
	SendTransaction(ctx context.Context, req gateway.SendRequest) (string, error)
	GetPrice(ctx context.Context, currency string) (price.Quote, error)
	GetTransactionHistory(ctx context.Context, address, currency string, limit int) (chain.History, error)
	Currencies() []string
}

// Config wires the server's collaborators.
type Config struct {
	Addr     string
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	// RequestTimeout bounds each request's context. Zero disables it.
	RequestTimeout time.Duration
}

type Server struct {
	svc     Service
	log     *zap.Logger
	timeout time.Duration
	engine  *gin.Engine
	http    *http.Server
}

// New builds the router. Metrics and Gatherer are optional.
func New(svc Service, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Server{
		svc:     svc,
		log:     cfg.Logger,
		timeout: cfg.RequestTimeout,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	r.GET("/healthz", s.health)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/balance/:currency/:address", s.balance)
		v1.GET("/tokens/:token/balance/:address", s.tokenBalance)
		v1.GET("/price/:currency", s.price)
		v1.GET("/history/:currency/:address", s.history)
		v1.POST("/transactions", s.send)
	}

	s.engine = r
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting http server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.timeout)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.log.Warn("request failed", fields...)
			return
		}
		s.log.Debug("request", fields...)
	}
}

func (s *Server) health(c *gin.Context) {
	Success(c, gin.H{
		"status":     "UP",
		"currencies": s.svc.Currencies(),
	})
}

func (s *Server) balance(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	var opts []gateway.BalanceOption
	if usd, _ := strconv.ParseBool(c.Query("usd")); usd {
		opts = append(opts, gateway.WithUSD())
	}

	bal, err := s.svc.GetBalance(ctx, c.Param("address"), c.Param("currency"), opts...)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, bal)
}

func (s *Server) tokenBalance(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	bal, err := s.svc.GetTokenBalance(ctx, c.Param("address"), c.Param("token"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, bal)
}

func (s *Server) price(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	quote, err := s.svc.GetPrice(ctx, c.Param("currency"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, quote)
}

func (s *Server) history(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	limit := DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxHistoryLimit {
			Error(c, fmt.Errorf("%w: limit must be between 1 and %d", gateway.ErrInvalidRequest, MaxHistoryLimit))
			return
		}
		limit = n
	}

	h, err := s.svc.GetTransactionHistory(ctx, c.Param("address"), c.Param("currency"), limit)
	if err != nil {
		Error(c, err)
		return
	}
	txs, err := chain.Collect(h)
	if err != nil {
		Error(c, err)
		return
	}
	if txs == nil {
		txs = []chain.Transaction{}
	}
	Success(c, gin.H{"transactions": txs})
}

type sendRequest struct {
	From      string       `json:"from" binding:"required"`
	To        string       `json:"to" binding:"required"`
	Amount    chain.Amount `json:"amount"`
	Currency  string       `json:"currency" binding:"required"`
	KeyHandle string       `json:"key_handle"`
}

func (s *Server) send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	txID, err := s.svc.SendTransaction(ctx, gateway.SendRequest{
		From:      req.From,
		To:        req.To,
		Amount:    req.Amount,
		Currency:  req.Currency,
		KeyHandle: chain.KeyHandle(req.KeyHandle),
	})
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"txid": txID, "currency": chain.NormalizeSymbol(req.Currency)})
}
