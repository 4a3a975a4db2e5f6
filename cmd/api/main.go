package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adiwirawan/go-shop-backend/internal/cart"
	"github.com/adiwirawan/go-shop-backend/internal/catalog"
	"github.com/adiwirawan/go-shop-backend/internal/config"
	"github.com/adiwirawan/go-shop-backend/internal/httpx"
	kafkax "github.com/adiwirawan/go-shop-backend/internal/kafka"
	"github.com/adiwirawan/go-shop-backend/internal/orders"
	"github.com/adiwirawan/go-shop-backend/internal/payment"
	"github.com/adiwirawan/go-shop-backend/internal/postgres"
	"github.com/adiwirawan/go-shop-backend/internal/redisx"
	"github.com/adiwirawan/go-shop-backend/internal/review"
	"github.com/adiwirawan/go-shop-backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.ServiceName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per order topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPaid, 1024)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024)
	producers := []*kafkax.Producer{pCreated, pPaid, pCancelled, pStatus}
	for _, p := range producers {
		p.Start(ctx)
	}

	// Repos & services
	productRepo := &catalog.Repo{DB: db}
	ledger := &catalog.Ledger{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	reviewRepo := &review.Repo{DB: db}

	cartSvc := &cart.Service{Store: cartRepo, Products: productRepo}
	orderSvc := &orders.Service{
		Carts:  cartRepo,
		Ledger: ledger,
		Store:  orderRepo,
		Events: orders.Sinks{Created: pCreated, Paid: pPaid, Cancelled: pCancelled, Status: pStatus},
		Pricing: orders.Pricing{
			TaxRateBps:        cfg.TaxRateBps,
			FreeShippingCents: cfg.FreeShippingCents,
			ShippingFeeCents:  cfg.ShippingFeeCents,
		},
		ServiceName: cfg.ServiceName,
		Log:         logger,
	}
	reviewSvc := &review.Service{Store: reviewRepo, Products: productRepo}
	gateway := payment.Gateway{KeyID: cfg.PaymentKeyID, KeySecret: cfg.PaymentKeySecret}

	// Router
	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Repo: productRepo}).Register(router)
	(&httpx.CartHandler{Svc: cartSvc, Redis: rdb}).Register(router)
	(&httpx.OrdersHandler{Svc: orderSvc, Gateway: gateway, Redis: rdb}).Register(router)
	(&httpx.ReviewsHandler{Svc: reviewSvc}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close() // close inbox -> flush & close writer
	}
	cancel() // stop producer loops
	for _, p := range producers {
		p.WaitClosed() // drain
	}
}
