// main.go - The entry point and router setup.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/settleloop/payment-ai-service/configs"
	"github.com/settleloop/payment-ai-service/internal/ai"
	"github.com/settleloop/payment-ai-service/internal/api"
	"github.com/settleloop/payment-ai-service/internal/guardrail"
	"github.com/settleloop/payment-ai-service/internal/parser"
)

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()

	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Create the AI provider selected by AI_PROVIDER
	provider, err := ai.CreateProvider()
	if err != nil {
		log.Fatalf("Failed to create AI provider: %v", err)
	}

	// Step 2: Wire the guardrails and the orchestrator
	quota := guardrail.NewQuotaCounter(configs.DAILY_REQUEST_LIMIT)
	gate := guardrail.NewGate(configs.AI_SERVICE_ENABLED, configs.AllowedFreeModels, quota)
	service := parser.NewService(provider, gate)
	handlers := api.NewHandlers(service)

	// Step 3: Initialize the Gin router
	router := gin.Default()

	// CORS middleware - configure allowed origins for production
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", configs.ALLOWED_ORIGINS)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Step 4: Define the API routes
	router.GET("/", handlers.RootHandler)
	router.GET("/health", handlers.HealthHandler)
	router.GET("/status", handlers.StatusHandler)
	router.POST("/parse-payment", handlers.ParsePaymentHandler)

	// Step 5: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        router,
		ReadTimeout:    30 * time.Second, // base64 payloads can be several MB
		WriteTimeout:   2 * time.Minute,  // allow for multi-model fallback
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting server on :%s", configs.PORT)
		log.Println("API Endpoints:")
		log.Println("  GET  /health")
		log.Println("  GET  /status")
		log.Println("  POST /parse-payment")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
