package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/adiwirawan/go-shop-backend/internal/config"
	kafkax "github.com/adiwirawan/go-shop-backend/internal/kafka"
	"github.com/adiwirawan/go-shop-backend/internal/ordercache"
	"github.com/adiwirawan/go-shop-backend/internal/orders"
	"github.com/adiwirawan/go-shop-backend/internal/redisx"
	"github.com/adiwirawan/go-shop-backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &ordercache.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-events",
		Log:         logging.New(cfg.ServiceName + "-events"),
	}

	group := getenv("EVENTS_GROUP", "order-events")
	workers := mustAtoi(os.Getenv("EVENTS_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.Topics, workers)

	go func() {
		log.Printf("events consumer started: group=%s workers=%d", group, workers)
		if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
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
