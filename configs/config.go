// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// Master kill switch - when false every parse request is refused
	AI_SERVICE_ENABLED bool

	// Provider Configuration
	AI_PROVIDER              string
	GOOGLE_AI_STUDIO_API_KEY string
	OPENROUTER_API_KEY       string

	// Optional model override. Must be in the free whitelist or the
	// provider silently falls back to its default model.
	AI_MODEL string

	// Cost guardrails
	DAILY_REQUEST_LIMIT int

	// Validation thresholds
	MIN_CONFIDENCE_THRESHOLD float64

	// Per-candidate-model timeout in seconds for provider calls
	MODEL_CALL_TIMEOUT int

	// Image preprocessing settings
	ENABLE_IMAGE_PREPROCESSING bool
	MAX_IMAGE_DIMENSION        int

	// Server Configuration
	PORT            string
	ALLOWED_ORIGINS string
)

// AllowedFreeModels is the whitelist of known-free model identifiers.
// Any model not in this set is BLOCKED before a request is issued.
// Extending it requires a redeploy - it is never read from the environment.
var AllowedFreeModels = map[string]bool{
	// Google AI Studio free models (Gemini)
	"gemini-1.5-flash":        true,
	"gemini-1.5-flash-latest": true,
	"gemini-1.5-pro":          true,
	"gemini-1.5-pro-latest":   true,
	"gemini-pro":              true,
	"gemini-pro-vision":       true,
	"gemini-1.5-flash-8b":     true,
	"gemini-2.0-flash-exp":    true,
	"gemini-2.0-flash":        true,
	"gemini-2.0-flash-lite":   true,
	// Gemma models
	"gemma-3-27b-it":             true,
	"google/gemma-3-27b-it:free": true,
	"google/gemma-2-9b-it:free":  true,
	// OpenRouter free models
	"meta-llama/llama-3.2-11b-vision-instruct:free": true,
	"meta-llama/llama-3.2-90b-vision-instruct:free": true,
}

// IsModelAllowed reports whether the model is in the free whitelist.
func IsModelAllowed(modelID string) bool {
	return AllowedFreeModels[modelID]
}

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AI_SERVICE_ENABLED = getEnvBool("AI_SERVICE_ENABLED", true)

	AI_PROVIDER = getEnv("AI_PROVIDER", "google_ai_studio")
	GOOGLE_AI_STUDIO_API_KEY = getEnv("GOOGLE_AI_STUDIO_API_KEY", "")
	OPENROUTER_API_KEY = getEnv("OPENROUTER_API_KEY", "")
	AI_MODEL = getEnv("AI_MODEL", "")

	if GOOGLE_AI_STUDIO_API_KEY == "" && AI_PROVIDER == "google_ai_studio" {
		log.Println("⚠️  GOOGLE_AI_STUDIO_API_KEY not set - provider calls will fail")
	}

	DAILY_REQUEST_LIMIT = getEnvInt("DAILY_REQUEST_LIMIT", 500)
	MIN_CONFIDENCE_THRESHOLD = getEnvFloat("MIN_CONFIDENCE_THRESHOLD", 0.7)
	MODEL_CALL_TIMEOUT = getEnvInt("MODEL_CALL_TIMEOUT", 20)

	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", true)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2000)

	PORT = getEnv("PORT", "8080")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
