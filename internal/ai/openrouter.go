// openrouter.go - OpenRouter chat-completions provider

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/settleloop/payment-ai-service/configs"
	"github.com/settleloop/payment-ai-service/internal/common"
	"github.com/settleloop/payment-ai-service/internal/guardrail"
	"github.com/settleloop/payment-ai-service/internal/ratelimit"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// DefaultOpenRouterModel is the free vision model used when nothing is
// configured.
const DefaultOpenRouterModel = "meta-llama/llama-3.2-11b-vision-instruct:free"

var openRouterFallbackModels = []string{
	"meta-llama/llama-3.2-11b-vision-instruct:free",
	"meta-llama/llama-3.2-90b-vision-instruct:free",
	"google/gemma-3-27b-it:free",
}

// OpenRouterProvider implements Provider over OpenRouter's OpenAI-style
// chat-completions HTTP API. Free ":free" model variants only.
type OpenRouterProvider struct {
	mu      sync.Mutex
	modelID string
	apiKey  string
	client  *http.Client
}

// NewOpenRouterProvider builds the provider, substituting the safe default
// when the configured model is not whitelisted.
func NewOpenRouterProvider(apiKey, modelID string) *OpenRouterProvider {
	if modelID == "" {
		modelID = DefaultOpenRouterModel
	}
	if !configs.IsModelAllowed(modelID) {
		log.Printf("⚠️  Model %s not in free whitelist, falling back to %s", modelID, DefaultOpenRouterModel)
		modelID = DefaultOpenRouterModel
	}
	return &OpenRouterProvider{
		modelID: modelID,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ModelID returns the active model.
func (p *OpenRouterProvider) ModelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modelID
}

// ProviderName returns "openrouter"
func (p *OpenRouterProvider) ProviderName() string {
	return "openrouter"
}

// IsFreeTier reports whether the active model is whitelisted as free.
func (p *OpenRouterProvider) IsFreeTier() bool {
	return configs.IsModelAllowed(p.ModelID())
}

func (p *OpenRouterProvider) setModelID(modelID string) {
	p.mu.Lock()
	p.modelID = modelID
	p.mu.Unlock()
}

// Request/response wire structures (OpenAI chat-completions shape).

type openRouterContentPart struct {
	Type     string              `json:"type"` // "text" or "image_url"
	Text     string              `json:"text,omitempty"`
	ImageURL *openRouterImageURL `json:"image_url,omitempty"`
}

type openRouterImageURL struct {
	URL string `json:"url"` // data URL with base64 payload
}

type openRouterMessage struct {
	Role    string                  `json:"role"`
	Content []openRouterContentPart `json:"content"`
}

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type openRouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// ParsePaymentImage walks the OpenRouter fallback chain with the same rules
// as the Google provider: whitelist re-checked per candidate, one bounded
// attempt each, first success wins.
func (p *OpenRouterProvider) ParsePaymentImage(ctx context.Context, imageBytes []byte, mimeType string, reqCtx *common.RequestContext) (*ExtractionResult, error) {
	candidates := candidateModels(p.ModelID(), openRouterFallbackModels)

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
		text, usage, err := p.complete(callCtx, modelID, PaymentExtractionPrompt, imageBytes, mimeType, reqCtx)
		cancel()

		if err != nil {
			provErr := CategorizeProviderError(err)
			reqCtx.LogWarning("❌ Model %s failed: %s", modelID, provErr.Error())
			lastErr = provErr
			continue
		}

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

// complete performs one chat-completions call.
func (p *OpenRouterProvider) complete(ctx context.Context, modelID, prompt string, imageBytes []byte, mimeType string, reqCtx *common.RequestContext) (string, *common.TokenUsage, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageBytes))

	payload := openRouterRequest{
		Model: modelID,
		Messages: []openRouterMessage{
			{
				Role: "user",
				Content: []openRouterContentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &openRouterImageURL{URL: dataURL}},
				},
			},
		},
		Temperature: 0.1,
		MaxTokens:   1024,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Defense in depth: a billing indicator on the response means a free
	// model was charged anyway. Fail the candidate loudly rather than
	// silently accepting a paid answer.
	if blocked, reason := guardrail.CheckBillingHeaders(resp.Header); blocked {
		reqCtx.LogError("🚨 Billing indicator on response from %s, discarding result", modelID)
		return "", nil, fmt.Errorf("response blocked: %s", reason)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed openRouterResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", nil, fmt.Errorf("openrouter error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", nil, fmt.Errorf("empty response from model %s", modelID)
	}

	usage := &common.TokenUsage{
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
		TotalTokens:  parsed.Usage.TotalTokens,
	}

	return parsed.Choices[0].Message.Content, usage, nil
}

// CheckBillingStatus reports free-tier status based on the whitelist.
func (p *OpenRouterProvider) CheckBillingStatus() BillingStatus {
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
