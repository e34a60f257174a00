package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/carpetpalace/storefront-api/internal/aws"
	"github.com/carpetpalace/storefront-api/internal/config"
	"github.com/carpetpalace/storefront-api/internal/orders"
	"github.com/carpetpalace/storefront-api/internal/payments"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	var gateway payments.Gateway
	if cfg.UseSandbox() {
		gateway = payments.NewSandbox(cfg.Server.BaseURL)
	} else {
		gateway = payments.NewStripe(cfg.Payments.StripeSecretKey)
	}

	p := NewProcessor(
		gateway,
		orders.NewStore(clients.DynamoDB, cfg.Dynamo.OrdersTable),
		aws.NewMetricsSink(clients.CloudWatch, cfg.AWS.MetricsNamespace),
		cfg.Worker.MaxAttempts,
	)

	// RUN_LOCAL=true feeds a single message from LOCAL_SQS_BODY.
	if cfg.Server.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			log.Fatalf("LOCAL_SQS_BODY is required when RUN_LOCAL=true")
		}
		event := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "local", Body: body}}}
		if err := p.Handle(ctx, event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
