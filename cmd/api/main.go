package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FabianHardy/stm-v2-sub000/internal/campaign"
	"github.com/FabianHardy/stm-v2-sub000/internal/cart"
	"github.com/FabianHardy/stm-v2-sub000/internal/config"
	"github.com/FabianHardy/stm-v2-sub000/internal/customer"
	"github.com/FabianHardy/stm-v2-sub000/internal/erp"
	"github.com/FabianHardy/stm-v2-sub000/internal/export"
	"github.com/FabianHardy/stm-v2-sub000/internal/httpx"
	kafkax "github.com/FabianHardy/stm-v2-sub000/internal/kafka"
	"github.com/FabianHardy/stm-v2-sub000/internal/logx"
	"github.com/FabianHardy/stm-v2-sub000/internal/orders"
	"github.com/FabianHardy/stm-v2-sub000/internal/postgres"
	"github.com/FabianHardy/stm-v2-sub000/internal/quota"
	"github.com/FabianHardy/stm-v2-sub000/internal/redisx"
	"github.com/FabianHardy/stm-v2-sub000/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New(cfg.ServiceName)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for finalized orders
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderFinalized, 1024, log)
	prod.Start(ctx)

	// Wiring
	campaigns := &campaign.Repo{DB: db}
	directory := &customer.PgDirectory{DB: db}
	ledger := &quota.Ledger{Usage: &quota.PgUsage{DB: db}}
	orderRepo := &orders.Repo{DB: db}

	gate := &campaign.Gate{Campaigns: campaigns, Directory: directory, Quota: ledger}
	sessions := &session.Store{R: rdb, TTL: cfg.SessionTTL}
	carts := &cart.Service{Store: &cart.RedisStore{R: rdb}, Quota: ledger}
	finalizer := &orders.Finalizer{Store: orderRepo, Quota: ledger}
	exports := &export.Service{
		Orders:      orderRepo,
		Writer:      &erp.Writer{Root: cfg.ExportDir},
		Redis:       rdb,
		ServiceName: cfg.ServiceName,
		Log:         log,
	}

	router := httpx.NewRouter()
	h := &httpx.CampaignHandler{
		Gate:      gate,
		Campaigns: campaigns,
		Sessions:  sessions,
		Carts:     carts,
		Quota:     ledger,
		Finalizer: finalizer,
		Exports:   exports,
		Producer:  prod,
		Service:   cfg.ServiceName,
		Log:       log,
	}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox -> flush & close writer
	cancel()
	prod.WaitClosed()
}
