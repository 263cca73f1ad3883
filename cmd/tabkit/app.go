package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/tabkit/bus"
	"github.com/kbukum/tabkit/bus/kafka"
	"github.com/kbukum/tabkit/bus/redis"
	"github.com/kbukum/tabkit/component"
	"github.com/kbukum/tabkit/httpclient"
	"github.com/kbukum/tabkit/ingest"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/observability"
	"github.com/kbukum/tabkit/source"
	"github.com/kbukum/tabkit/storage"
)

// app holds the started components of one command invocation.
type app struct {
	cfg        *Config
	log        *logger.Logger
	registry   *component.Registry
	storage    *storage.Component
	emitter    *bus.Emitter
	dispatcher *ingest.Dispatcher
	shutdown   []func(context.Context) error
}

// newApp builds every component named by cfg and starts them. Logs go to
// logOut. The caller must call close.
func newApp(ctx context.Context, cfg *Config, logOut io.Writer) (*app, error) {
	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, logOut)
	logger.SetGlobalLogger(log)
	for _, name := range []string{"registry", "storage", "source", "bus", "ingest"} {
		logger.Register(name, log.WithComponent(name))
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		registry: component.NewRegistry(logger.Get("registry")),
		storage:  storage.NewComponent(cfg.Storage, logger.Get("storage")),
		emitter:  bus.NewEmitter(logger.Get("bus")),
	}
	if err := a.registry.Register(a.storage); err != nil {
		return nil, err
	}

	var remote func() bus.Bus
	switch cfg.Bus.Backend {
	case BackendKafka:
		kc := kafka.NewComponent(cfg.Bus.Kafka, logger.Get("bus"))
		if err := a.registry.Register(kc); err != nil {
			return nil, err
		}
		remote = func() bus.Bus {
			if b := kc.Bus(); b != nil {
				return b
			}
			return nil
		}
	case BackendRedis:
		rc := redis.NewComponent(cfg.Bus.Redis, logger.Get("bus"))
		if err := a.registry.Register(rc); err != nil {
			return nil, err
		}
		remote = func() bus.Bus {
			if b := rc.Bus(); b != nil {
				return b
			}
			return nil
		}
	}

	start := time.Now()
	if err := a.registry.StartAll(ctx); err != nil {
		return nil, fmt.Errorf("starting components: %w", err)
	}
	for _, d := range a.registry.Describe() {
		log.Debug("component ready", map[string]interface{}{
			logger.FieldComponent: d.Name,
			"type":                d.Type,
			"details":             d.Details,
		})
	}

	metrics, err := a.initObservability(ctx)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	client, err := httpclient.New(cfg.HTTP)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	loader, err := source.NewLoader(
		source.WithStorage(a.storage.Storage(), a.storage.MaxBytes()),
		source.WithFetcher(client),
		source.WithLogger(logger.Get("source")),
	)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	buses := []bus.Bus{a.emitter}
	if remote != nil {
		buses = append(buses, remote())
	}
	a.dispatcher, err = ingest.New(
		ingest.WithBus(bus.NewFanout(buses...)),
		ingest.WithLoader(loader),
		ingest.WithMetrics(metrics),
		ingest.WithLogger(logger.Get("ingest")),
	)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	log.Info("started", map[string]interface{}{
		logger.FieldService:  cfg.Name,
		"version":            cfg.Version,
		"bus":                cfg.Bus.Backend,
		logger.FieldDuration: time.Since(start).Milliseconds(),
	})
	return a, nil
}

func (a *app) initObservability(ctx context.Context) (*observability.Metrics, error) {
	if !a.cfg.Observability.Enabled {
		return observability.NopMetrics(), nil
	}
	tp, err := observability.InitTracer(ctx, a.cfg.Observability.TracerConfig())
	if err != nil {
		return nil, err
	}
	a.shutdown = append(a.shutdown, tp.Shutdown)

	mp, err := observability.InitMeter(ctx, a.cfg.Observability.MeterConfig())
	if err != nil {
		return nil, err
	}
	a.shutdown = append(a.shutdown, mp.Shutdown)

	return observability.NewMetrics(observability.Meter("github.com/kbukum/tabkit"))
}

// close waits for in-flight requests, flushes telemetry and stops the
// components in reverse order.
func (a *app) close(ctx context.Context) error {
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.registry.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
