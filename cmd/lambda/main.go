package main

import (
	"context"
	"log"
	"strings"
	"time"

	"crosstalk/infrastructure/config"
	"crosstalk/infrastructure/di"
	"crosstalk/interfaces/http/rest"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Global variables for Lambda lifecycle management
var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	// container holds the dependency injection container
	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart = true

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	router := rest.NewRouter(
		container.CommandBus,
		container.QueryBus,
		container.BuildHandler,
		container.Logger,
	)

	handler := router.Setup()

	// Lambda adapter needs the concrete chi mux
	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	log.Printf("Lambda cold start completed in %v", time.Since(coldStartTime))
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	container.Logger.Debug("Lambda received request",
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("request_id", req.RequestContext.RequestID),
	)

	// API Gateway's JWT authorizer validates tokens before invoking us.
	// Carry the verified identity into headers the in-process auth
	// middleware trusts, so claims are not re-validated per invocation.
	propagateAuthorizerClaims(&req)

	// In-process limiters reset on every cold start, so the shared
	// DynamoDB-backed limiter enforces the per-user quota here.
	if userID := req.Headers["X-User-ID"]; userID != "" {
		allowed, limitErr := container.RateLimiter.Allow(ctx, userID)
		if limitErr != nil {
			container.Logger.Warn("Rate limit check failed, allowing request",
				zap.String("user_id", userID),
				zap.Error(limitErr),
			)
		} else if !allowed {
			container.Logger.Info("Request rate limited",
				zap.String("user_id", userID),
				zap.String("path", req.RequestContext.HTTP.Path),
			)
			return events.APIGatewayV2HTTPResponse{
				StatusCode: 429,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"success":false,"error":{"code":"TOO_MANY_REQUESTS","message":"rate limit exceeded"}}`,
			}, nil
		}
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}

	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}

	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if resp.StatusCode >= 400 {
		container.Logger.Error("Lambda error response",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", resp.Body),
		)
	}

	return resp, err
}

// propagateAuthorizerClaims lifts the JWT authorizer's verified claims
// into identity headers for downstream middleware.
func propagateAuthorizerClaims(req *events.APIGatewayV2HTTPRequest) {
	auth := req.RequestContext.Authorizer
	if auth == nil || auth.JWT == nil || len(auth.JWT.Claims) == 0 {
		return
	}

	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	claims := auth.JWT.Claims
	req.Headers["X-API-Gateway-Authorized"] = "true"

	if sub, ok := claims["sub"]; ok {
		req.Headers["X-User-ID"] = sub
	}
	if email, ok := claims["email"]; ok {
		req.Headers["X-User-Email"] = email
	}
	if roles, ok := claims["roles"]; ok {
		req.Headers["X-User-Roles"] = strings.TrimSpace(roles)
	}
}

// main is the entry point for the Lambda function
func main() {
	lambda.Start(Handler)
}
