package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/carpetpalace/storefront-api/internal/aws"
	"github.com/carpetpalace/storefront-api/internal/cart"
	"github.com/carpetpalace/storefront-api/internal/catalog"
	"github.com/carpetpalace/storefront-api/internal/checkout"
	"github.com/carpetpalace/storefront-api/internal/config"
	"github.com/carpetpalace/storefront-api/internal/handlers"
	"github.com/carpetpalace/storefront-api/internal/idempotency"
	"github.com/carpetpalace/storefront-api/internal/metrics"
	"github.com/carpetpalace/storefront-api/internal/orderid"
	"github.com/carpetpalace/storefront-api/internal/orders"
	"github.com/carpetpalace/storefront-api/internal/payments"
	"github.com/carpetpalace/storefront-api/internal/pricing"
	"github.com/carpetpalace/storefront-api/internal/tracking"
)

func setupRouter(cfg handlers.HandlerConfig, rec *metrics.Recorder) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), rec.Middleware())

	r.GET("/metrics", gin.WrapH(rec.Handler()))
	handlers.New(cfg).Register(r)

	return r
}

func loadTables(cfg *config.Config) (*pricing.Tables, error) {
	if cfg.PricingFile != "" {
		return pricing.LoadFile(cfg.PricingFile)
	}
	return pricing.Load()
}

func newCartStore(cfg *config.Config) cart.Store {
	if cfg.Redis.Addr == "" {
		log.Printf("[api] cart store=memory")
		return cart.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Printf("[api] cart store=redis addr=%s", cfg.Redis.Addr)
	return cart.NewRedisStore(client, cfg.Redis.CartTTL)
}

func newGateway(cfg *config.Config) payments.Gateway {
	if cfg.UseSandbox() {
		log.Printf("[api] payments gateway=sandbox")
		return payments.NewSandbox(cfg.Server.BaseURL)
	}
	return payments.NewStripe(cfg.Payments.StripeSecretKey)
}

func main() {
	ctx := context.Background()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	tables, err := loadTables(cfg)
	if err != nil {
		log.Fatalf("failed to load pricing tables: %v", err)
	}
	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	rec := metrics.New(cfg.AWS.MetricsNamespace)
	gateway := newGateway(cfg)

	deps := checkout.Deps{
		Tables:  tables,
		Gateway: gateway,
		IDs:     orderid.NewGenerator(),
		Metrics: rec,
		BaseURL: cfg.Server.BaseURL,
	}
	var index tracking.OrderIndex

	if cfg.AWSEnabled() {
		clients, err := aws.NewAWSClients(ctx)
		if err != nil {
			log.Fatalf("failed to init aws clients: %v", err)
		}
		if cfg.Dynamo.IdempotencyTable != "" {
			deps.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.Dynamo.IdempotencyTable, cfg.Dynamo.IdempotencyTTL)
		}
		if cfg.Dynamo.OrdersTable != "" {
			store := orders.NewStore(clients.DynamoDB, cfg.Dynamo.OrdersTable).
				WithIdempotencyTable(cfg.Dynamo.IdempotencyTable)
			deps.Orders = store
			index = store
		}
		if cfg.Queue.OrdersQueueURL != "" {
			deps.Publisher = aws.NewPublisher(clients.SQS, cfg.Queue.OrdersQueueURL)
		}
	}

	hcfg := handlers.HandlerConfig{
		Checkout: checkout.NewService(deps),
		Tracker:  tracking.NewService(gateway, index, rec, cfg.Tracking.Window),
		Carts:    cart.NewService(newCartStore(cfg), cat),
		Catalog:  cat,
		Tables:   tables,
	}

	r := setupRouter(hcfg, rec)

	if cfg.Server.RunLocal {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
