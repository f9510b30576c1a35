//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"notifysync/internal/app"
	"notifysync/internal/config"
	"notifysync/internal/gamification"
	"notifysync/internal/http"
	"notifysync/internal/http/controller"
	"notifysync/internal/logging"
	"notifysync/internal/metrics"
	"notifysync/internal/queue/rabbitmq"
	"notifysync/internal/remote"
	"notifysync/internal/service/notify"
	"notifysync/internal/sse"
	"notifysync/internal/store"
)

func InitializeApp() (*app.App, error) {
	wire.Build(
		config.New,
		logging.New,
		metrics.New,
		store.NewStore,
		sse.NewHub,
		remote.NewClient,
		gamification.NewClient,
		rabbitmq.NewPublisher,
		notify.NewService,
		rabbitmq.NewConsumer,
		controller.NewHandler,
		http.NewRouter,
		app.NewApp,
	)
	return &app.App{}, nil
}
