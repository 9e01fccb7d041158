package main

import (
	"context"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"stockhub/internal/config"
	"stockhub/internal/http/handlers"
	"stockhub/internal/idempotency"
	applog "stockhub/internal/log"
	"stockhub/internal/notify"
	"stockhub/internal/repos"
	"stockhub/internal/rpc"
	"stockhub/internal/services"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	log.SetOutput(out)
	applog.SetOutput(out, cfg.LogLevel)

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to open %s database: %v", cfg.DBDriver, err)
	}
	if cfg.DBSeed {
		if err := db.Seed(ctx); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
	}

	// Optional Redis idempotency keys
	var guard services.IdempotencyGuard
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = idempotency.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		guard = idempotency.NewRedisGuard(rdb, cfg.IdempotencyTTL)
		log.Println("connected to redis")
	}

	// Optional RabbitMQ low-stock notifications
	var pub services.AlertPublisher
	var amqpPub *notify.AMQPPublisher
	if cfg.RabbitURL != "" {
		amqpPub, err = notify.NewAMQPPublisher(cfg.RabbitURL, cfg.AlertQueue)
		if err != nil {
			log.Fatalf("failed to connect rabbitmq: %v", err)
		}
		pub = amqpPub
		log.Printf("publishing low-stock alerts to %s", cfg.AlertQueue)
	}

	deps := handlers.NewDeps(db, cfg, guard, pub)
	app := handlers.NewApp(cfg, deps)

	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		grpcServer = rpc.NewServer(&rpc.Server{
			Transfers: deps.Transfers,
			Alerts:    deps.Alerts,
			Inventory: deps.Inventory,
		})
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("failed to listen: %v", err)
		}
		go func() {
			log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				log.Printf("gRPC server error: %v", err)
			}
		}()
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	cancel()

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	log.Println("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		log.Println("gRPC server stopped")
	}

	if amqpPub != nil {
		amqpPub.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = db.Close()
	log.Println("connections closed")
}
