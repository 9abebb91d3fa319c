package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-order-pipeline.git/internal/config"
	"github.com/ariefcatur/go-order-pipeline.git/internal/gateway"
	"github.com/ariefcatur/go-order-pipeline.git/internal/httpx"
	"github.com/ariefcatur/go-order-pipeline.git/internal/idempotency"
	kafkax "github.com/ariefcatur/go-order-pipeline.git/internal/kafka"
	"github.com/ariefcatur/go-order-pipeline.git/internal/orders"
	"github.com/ariefcatur/go-order-pipeline.git/internal/postgres"
	"github.com/ariefcatur/go-order-pipeline.git/internal/products"
	"github.com/ariefcatur/go-order-pipeline.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadOrders()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	if err := postgres.Migrate(cfg.PostgresDSN, orders.Migrations, "migrations"); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024, log)
	prod.Start(ctx)

	router := httpx.NewRouter()

	ph := &products.Handler{Store: &products.Repo{DB: db}, Log: log}
	ph.Register(router)

	oh := &orders.Handler{
		Store:     &orders.Repo{DB: db},
		Idem:      &idempotency.Store{DB: db},
		Customers: gateway.NewCustomersClient(cfg.CustomersBaseURL, cfg.ServiceToken, 5*time.Second),
		Cache:     &redisx.Cache{R: rdb},
		Events:    prod,
		Log:       log,
		Service:   cfg.ServiceName,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Infof("%s listening", cfg.ServiceName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
