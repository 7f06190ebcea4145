// google_ai_studio.go - Google AI Studio (Gemini/Gemma) provider

package ai

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/settleloop/payment-ai-service/configs"
	"github.com/settleloop/payment-ai-service/internal/common"
	"github.com/settleloop/payment-ai-service/internal/ratelimit"
)

// DefaultGoogleModel is used when no model is configured or the configured
// one is not whitelisted. Gemma-3-27B handles multilingual UPI screenshots
// well and sits on the free tier.
const DefaultGoogleModel = "gemma-3-27b-it"

// googleFallbackModels is the fixed ordered fallback chain, tried after the
// requested model. Every entry must stay inside the free whitelist.
var googleFallbackModels = []string{
	"gemma-3-27b-it",
	"gemini-2.0-flash-exp",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// generateFunc performs one model call and returns the raw response text.
// It is a field so tests can stub the network.
type generateFunc func(ctx context.Context, modelID, prompt string, imageBytes []byte, mimeType string) (string, *common.TokenUsage, error)

// GoogleAIStudioProvider calls Gemini/Gemma vision models through the
// Google AI Studio API, free-tier models only.
type GoogleAIStudioProvider struct {
	mu      sync.Mutex
	modelID string
	apiKey  string

	generate generateFunc
}

// NewGoogleAIStudioProvider builds the provider. A model id outside the free
// whitelist is never accepted as the active model - the constructor silently
// substitutes the safe default and logs the substitution.
func NewGoogleAIStudioProvider(apiKey, modelID string) *GoogleAIStudioProvider {
	if modelID == "" {
		modelID = DefaultGoogleModel
	}
	if !configs.IsModelAllowed(modelID) {
		log.Printf("⚠️  Model %s not in free whitelist, falling back to %s", modelID, DefaultGoogleModel)
		modelID = DefaultGoogleModel
	}

	p := &GoogleAIStudioProvider{
		modelID: modelID,
		apiKey:  apiKey,
	}
	p.generate = p.generateWithGemini
	return p
}

// ModelID returns the active model (the one that last answered).
func (p *GoogleAIStudioProvider) ModelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modelID
}

// ProviderName returns "google_ai_studio"
func (p *GoogleAIStudioProvider) ProviderName() string {
	return "google_ai_studio"
}

// IsFreeTier reports whether the active model is whitelisted as free.
func (p *GoogleAIStudioProvider) IsFreeTier() bool {
	return configs.IsModelAllowed(p.ModelID())
}

func (p *GoogleAIStudioProvider) setModelID(modelID string) {
	p.mu.Lock()
	p.modelID = modelID
	p.mu.Unlock()
}

// candidateModels builds the ordered fallback list: the requested model
// first, then the fixed chain, deduplicated preserving first occurrence.
func candidateModels(requested string, fallbacks []string) []string {
	seen := map[string]bool{}
	candidates := make([]string, 0, len(fallbacks)+1)
	for _, id := range append([]string{requested}, fallbacks...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, id)
	}
	return candidates
}

// ParsePaymentImage walks the fallback chain until one whitelisted model
// answers. The whitelist is re-checked per candidate - the chain can never
// smuggle in a paid model. Each candidate gets one attempt with a bounded
// timeout; the same model id is never retried.
func (p *GoogleAIStudioProvider) ParsePaymentImage(ctx context.Context, imageBytes []byte, mimeType string, reqCtx *common.RequestContext) (*ExtractionResult, error) {
	candidates := candidateModels(p.ModelID(), googleFallbackModels)

	var lastErr error
	for _, modelID := range candidates {
		if !configs.IsModelAllowed(modelID) {
			reqCtx.LogWarning("Skipping non-whitelisted model: %s", modelID)
			continue
		}

		reqCtx.LogInfo("Attempting model: %s", modelID)

		if err := ratelimit.WaitForRateLimit(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, time.Duration(configs.MODEL_CALL_TIMEOUT)*time.Second)
		text, usage, err := p.generate(callCtx, modelID, PaymentExtractionPrompt, imageBytes, mimeType)
		cancel()

		if err != nil {
			provErr := CategorizeProviderError(err)
			reqCtx.LogWarning("❌ Model %s failed: %s", modelID, provErr.Error())
			lastErr = provErr
			continue
		}

		// Report the model that actually answered, not the requested one.
		p.setModelID(modelID)
		reqCtx.LogInfo("✅ Success with model: %s", modelID)

		result, perr := ParseModelResponse(text)
		if perr != nil {
			reqCtx.LogError("Model %s returned unparseable JSON: %v", modelID, perr)
			return nil, perr
		}
		result.Usage = usage
		return result, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no whitelisted candidate models available")
	}
	return nil, fmt.Errorf("all models failed: %w", lastErr)
}

// generateWithGemini performs the real API call.
func (p *GoogleAIStudioProvider) generateWithGemini(ctx context.Context, modelID, prompt string, imageBytes []byte, mimeType string) (string, *common.TokenUsage, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(modelID)
	// Near-deterministic extraction with a bounded output budget.
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(1024)

	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: imageBytes},
	)
	if err != nil {
		return "", nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil, fmt.Errorf("empty response from model %s", modelID)
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text = string(t)
			break
		}
	}
	if text == "" {
		return "", nil, fmt.Errorf("no text part in response from model %s", modelID)
	}

	var usage *common.TokenUsage
	if resp.UsageMetadata != nil {
		usage = &common.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return text, usage, nil
}

// CheckBillingStatus reports free-tier status. Google AI Studio's free tier
// has no billing API, so this relies on the whitelist alone.
func (p *GoogleAIStudioProvider) CheckBillingStatus() BillingStatus {
	if p.IsFreeTier() {
		return BillingStatus{
			IsFree:  true,
			Details: fmt.Sprintf("Using model %s (free tier)", p.ModelID()),
		}
	}
	return BillingStatus{
		IsFree:  false,
		Details: "Model may incur costs",
	}
}
