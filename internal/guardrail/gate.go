// gate.go - Cost guardrail evaluation

package guardrail

import (
	"net/http"
	"strings"
)

// Block reasons returned by the gate. They double as error codes in the
// response envelope.
const (
	BlockServiceDisabled    = "service_disabled"
	BlockModelNotFree       = "model_not_free"
	BlockDailyLimitExceeded = "daily_limit_exceeded"
	BlockBillingDetected    = "billing_detected"
)

// Gate evaluates the cost guardrails for a requested model. It performs
// no I/O and has no side effects - the quota counter is only read.
type Gate struct {
	enabled       bool
	allowedModels map[string]bool
	quota         *QuotaCounter
}

// NewGate builds a gate from the kill switch, the free-model whitelist and
// the shared quota counter.
func NewGate(enabled bool, allowedModels map[string]bool, quota *QuotaCounter) *Gate {
	return &Gate{
		enabled:       enabled,
		allowedModels: allowedModels,
		quota:         quota,
	}
}

// Evaluate runs the checks in fixed order, short-circuiting on the first
// failure: kill switch, model whitelist, daily limit. The whitelist check
// runs again for every fallback candidate inside the provider - this gate
// is the request-level enforcement.
func (g *Gate) Evaluate(modelID string) (blocked bool, reason string) {
	if !g.enabled {
		return true, BlockServiceDisabled
	}
	if !g.allowedModels[modelID] {
		return true, BlockModelNotFree
	}
	if !g.quota.WithinLimit() {
		return true, BlockDailyLimitExceeded
	}
	return false, ""
}

// Enabled reports the kill-switch state.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// Quota exposes the shared counter for status reporting.
func (g *Gate) Quota() *QuotaCounter {
	return g.quota
}

// billingIndicators are response headers that signal a charged request.
var billingIndicators = []string{
	"x-billing-charged",
	"x-cost",
	"x-usage-cost",
}

// CheckBillingHeaders is a defense-in-depth post-hoc check: if a provider
// response carries billing-indicator headers the request should have been
// blocked. Only providers with access to raw HTTP headers can call this.
func CheckBillingHeaders(headers http.Header) (blocked bool, reason string) {
	if headers == nil {
		return false, ""
	}
	for key := range headers {
		lower := strings.ToLower(key)
		for _, indicator := range billingIndicators {
			if lower == indicator {
				return true, BlockBillingDetected
			}
		}
	}
	return false, ""
}
