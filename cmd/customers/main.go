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
	"github.com/ariefcatur/go-order-pipeline.git/internal/customers"
	"github.com/ariefcatur/go-order-pipeline.git/internal/httpx"
	"github.com/ariefcatur/go-order-pipeline.git/internal/postgres"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadCustomers()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	if err := postgres.Migrate(cfg.PostgresDSN, customers.Migrations, "migrations"); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	router := httpx.NewRouter()
	h := &customers.Handler{Store: &customers.Repo{DB: db}, Log: log}
	h.Register(router, cfg.ServiceToken)

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
}
