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

	"github.com/crmfoods/canteen-orders/internal/checkout"
	"github.com/crmfoods/canteen-orders/internal/config"
	"github.com/crmfoods/canteen-orders/internal/httpx"
	kafkax "github.com/crmfoods/canteen-orders/internal/kafka"
	"github.com/crmfoods/canteen-orders/internal/menu"
	"github.com/crmfoods/canteen-orders/internal/orders"
	"github.com/crmfoods/canteen-orders/internal/postgres"
	"github.com/crmfoods/canteen-orders/internal/redisx"
	"github.com/crmfoods/canteen-orders/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
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

	// Kafka producers
	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	placed.Start(ctx)
	alerts := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicCompensationFailed, 64)
	alerts.Start(ctx)

	store := &orders.PgStore{DB: db}
	coord := &checkout.Coordinator{
		Ledger:   &stock.PgLedger{DB: db},
		Store:    store,
		Producer: placed,
		Alerts:   &checkout.OperatorAlerter{Producer: alerts, Service: cfg.ServiceName},
		Service:  cfg.ServiceName,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Checkout:   coord,
		Store:      store,
		Catalog:    &menu.PgCatalog{DB: db},
		Redis:      rdb,
		UPIAddress: cfg.UPIAddress,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	// close inboxes first so the flush goroutines drain before ctx dies
	placed.Close()
	alerts.Close()
	placed.WaitClosed()
	alerts.WaitClosed()
}
