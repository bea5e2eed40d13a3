// Package main implements the Lambda handler for asynchronous network
// construction. Large datasets exceed what the API path can build inside
// a request timeout, so clients (or an upstream pipeline) invoke this
// function and poll or subscribe for the result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"crosstalk/application/commands"
	"crosstalk/infrastructure/config"
	"crosstalk/infrastructure/di"
	"crosstalk/pkg/observability"
)

// Global dependencies for Lambda performance optimization
var (
	container *di.Container
	tracer    *observability.Tracer
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	tracer = observability.NewTracer("crosstalk-build-network")

	log.Println("Build-network handler initialized successfully")
}

// BuildResponse reports the outcome of an asynchronous build
type BuildResponse struct {
	NetworkID    string `json:"network_id"`
	Name         string `json:"name"`
	ClusterCount int    `json:"cluster_count"`
	GeneCount    int    `json:"gene_count"`
	DurationMS   int64  `json:"duration_ms"`
}

// HandleBuild runs a full network construction for one dataset
func HandleBuild(ctx context.Context, cmd commands.BuildNetworkCommand) (*BuildResponse, error) {
	log.Printf("Building network %q for user %s (%d genes, %d cells)",
		cmd.Name, cmd.UserID, len(cmd.Genes), len(cmd.Cells))

	start := time.Now()

	var resp *BuildResponse
	err := tracer.TracePhase(ctx, "build_network", func(ctx context.Context) error {
		network, err := container.BuildHandler.Handle(ctx, cmd)
		if err != nil {
			return err
		}

		tracer.AnnotateNetwork(ctx, network.ID().String(), cmd.UserID)

		resp = &BuildResponse{
			NetworkID:    network.ID().String(),
			Name:         network.Name(),
			ClusterCount: len(network.Levels()),
			GeneCount:    len(cmd.Genes),
			DurationMS:   time.Since(start).Milliseconds(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Flush stored events now so subscribers hear about the build
	// before this invocation freezes.
	if err := container.OutboxProcessor.Drain(ctx); err != nil {
		log.Printf("Failed to drain outbox: %v", err)
	}

	log.Printf("Built network %s in %dms", resp.NetworkID, resp.DurationMS)
	return resp, nil
}

// handler dispatches the supported invocation shapes
func handler(ctx context.Context, event json.RawMessage) (*BuildResponse, error) {
	// EventBridge invocation: an upstream pipeline announced a dataset
	var cloudWatchEvent awsevents.CloudWatchEvent
	if err := json.Unmarshal(event, &cloudWatchEvent); err == nil && cloudWatchEvent.DetailType == "dataset.ready" {
		var cmd commands.BuildNetworkCommand
		if err := json.Unmarshal(cloudWatchEvent.Detail, &cmd); err != nil {
			return nil, fmt.Errorf("failed to parse dataset.ready detail: %w", err)
		}
		return HandleBuild(ctx, cmd)
	}

	// Direct invocation with the command as the payload
	var cmd commands.BuildNetworkCommand
	if err := json.Unmarshal(event, &cmd); err != nil {
		return nil, fmt.Errorf("unable to parse event: %w", err)
	}
	if cmd.UserID == "" || cmd.Name == "" {
		return nil, fmt.Errorf("unable to parse event: missing user_id or name")
	}

	return HandleBuild(ctx, cmd)
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Println("Starting build-network Lambda")
		lambda.Start(handler)
		return
	}

	// Local testing mode: read a command from stdin
	log.Println("Running in local test mode, reading command from stdin")

	var cmd commands.BuildNetworkCommand
	if err := json.NewDecoder(os.Stdin).Decode(&cmd); err != nil {
		log.Fatalf("Failed to decode command: %v", err)
	}

	response, err := HandleBuild(context.Background(), cmd)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	responseJSON, _ := json.MarshalIndent(response, "", "  ")
	log.Printf("Build response:\n%s", responseJSON)
}
