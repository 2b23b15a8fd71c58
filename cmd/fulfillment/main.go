package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/crmfoods/canteen-orders/internal/config"
	"github.com/crmfoods/canteen-orders/internal/fulfillment"
	"github.com/crmfoods/canteen-orders/internal/httpx"
	kafkax "github.com/crmfoods/canteen-orders/internal/kafka"
	"github.com/crmfoods/canteen-orders/internal/orders"
	"github.com/crmfoods/canteen-orders/internal/postgres"
	"github.com/crmfoods/canteen-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer: status change events for the cache warmers
	statusProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 256)
	statusProd.Start(ctx)

	svc := &fulfillment.Service{
		Cache:       &fulfillment.RedisCache{R: rdb, Service: "fulfillment"},
		ServiceName: cfg.ServiceName + "-fulfillment",
	}

	group := getenv("FULFILLMENT_GROUP", "fulfillment-svc")
	workers := mustAtoi(os.Getenv("FULFILLMENT_WORKERS"), "4")

	placed := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderPlaced, workers)
	go func() {
		log.Printf("consumer started: group=%s topic=%s workers=%d", group, orders.TopicOrderPlaced, workers)
		if err := placed.Start(ctx, svc.HandleOrderPlaced); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	changed := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderStatusChanged, workers)
	go func() {
		if err := changed.Start(ctx, svc.HandleStatusChanged); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// Staff HTTP surface: queue view + status advancement.
	store := &orders.PgStore{DB: db}
	router := httpx.NewRouter()
	sh := &httpx.StaffHandler{
		Store:    store,
		Status:   store,
		Producer: statusProd,
		Service:  cfg.ServiceName + "-fulfillment",
	}
	sh.Register(router)

	srv := &http.Server{Addr: cfg.StaffAddr, Handler: router}
	go func() {
		log.Printf("staff HTTP listening at %s", cfg.StaffAddr)
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

	statusProd.Close()
	statusProd.WaitClosed()
	cancel()
	time.Sleep(500 * time.Millisecond)
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
