// interface.go - AI provider interface for supporting multiple vision providers

package ai

import (
	"context"

	"github.com/settleloop/payment-ai-service/internal/common"
)

// Provider is implemented by every AI backend. Adding a provider means
// adding a variant here and registering it in factory.go - the orchestrator
// never changes.
type Provider interface {
	// ModelID returns the identifier of the active model. After a
	// successful call this reflects the model that actually answered,
	// which may differ from the requested one due to fallback.
	ModelID() string

	// ProviderName returns the provider identifier (e.g. "google_ai_studio").
	ProviderName() string

	// IsFreeTier reports whether the active model is in the free whitelist.
	IsFreeTier() bool

	// ParsePaymentImage sends the screenshot to the model and returns the
	// normalized extraction. The implementation walks its fallback chain;
	// a non-nil error means every whitelisted candidate failed or the
	// winning response was not parseable JSON.
	ParsePaymentImage(ctx context.Context, imageBytes []byte, mimeType string, reqCtx *common.RequestContext) (*ExtractionResult, error)

	// CheckBillingStatus reports whether the active model can incur costs.
	CheckBillingStatus() BillingStatus
}

// BillingStatus is the answer to "could this configuration cost money".
type BillingStatus struct {
	IsFree  bool    `json:"is_free"`
	Cost    float64 `json:"cost"`
	Details string  `json:"details"`
}
