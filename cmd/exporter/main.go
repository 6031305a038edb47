package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FabianHardy/stm-v2-sub000/internal/config"
	"github.com/FabianHardy/stm-v2-sub000/internal/erp"
	"github.com/FabianHardy/stm-v2-sub000/internal/export"
	kafkax "github.com/FabianHardy/stm-v2-sub000/internal/kafka"
	"github.com/FabianHardy/stm-v2-sub000/internal/logx"
	"github.com/FabianHardy/stm-v2-sub000/internal/orders"
	"github.com/FabianHardy/stm-v2-sub000/internal/postgres"
	"github.com/FabianHardy/stm-v2-sub000/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New(cfg.ServiceName + "-exporter")
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Outcome producers: synced & failed
	pOK := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSynced, 1024, log)
	pOK.Start(ctx)
	pRJ := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSyncFailed, 1024, log)
	pRJ.Start(ctx)

	svc := &export.Service{
		Orders:      &orders.Repo{DB: db},
		Writer:      &erp.Writer{Root: cfg.ExportDir},
		Redis:       rdb,
		ProducerOK:  pOK,
		ProducerErr: pRJ,
		ServiceName: cfg.ServiceName + "-exporter",
		Log:         log,
	}

	group := getenv("EXPORTER_GROUP", "erp-exporter")
	workers := mustAtoi(os.Getenv("EXPORTER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderFinalized, workers, log)

	go func() {
		log.Info("exporter consumer started",
			zap.String("group", group),
			zap.String("topic", orders.TopicOrderFinalized),
			zap.Int("workers", workers))
		if err := cons.Start(ctx, svc.HandleOrderFinalized); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down exporter")
	cancel() // stop the consumer before the producer inboxes close
	time.Sleep(500 * time.Millisecond)
	pOK.Close()
	pRJ.Close()
	pOK.WaitClosed()
	pRJ.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
