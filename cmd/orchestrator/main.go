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
	"github.com/ariefcatur/go-order-pipeline.git/internal/orchestrator"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadOrchestrator()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	svc := &orchestrator.Service{
		Customers: gateway.NewCustomersClient(cfg.CustomersBaseURL, cfg.ServiceToken, 5*time.Second),
		Orders:    gateway.NewOrdersClient(cfg.OrdersBaseURL, 10*time.Second),
		Log:       log,
	}

	router := httpx.NewRouter()
	h := &orchestrator.Handler{Service: svc, Log: log}
	h.Register(router)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
