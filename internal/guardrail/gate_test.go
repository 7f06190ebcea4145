package guardrail

import (
	"net/http"
	"testing"
)

var testWhitelist = map[string]bool{
	"gemini-2.0-flash": true,
	"gemma-3-27b-it":   true,
}

func TestGateEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		modelID     string
		usedToday   int
		limit       int
		wantBlocked bool
		wantReason  string
	}{
		{
			name:    "all checks pass",
			enabled: true, modelID: "gemini-2.0-flash", usedToday: 0, limit: 500,
			wantBlocked: false, wantReason: "",
		},
		{
			name:    "kill switch off",
			enabled: false, modelID: "gemini-2.0-flash", usedToday: 0, limit: 500,
			wantBlocked: true, wantReason: BlockServiceDisabled,
		},
		{
			// Kill switch wins even when later checks would also fail.
			name:    "kill switch checked before whitelist",
			enabled: false, modelID: "gpt-4-vision", usedToday: 500, limit: 500,
			wantBlocked: true, wantReason: BlockServiceDisabled,
		},
		{
			name:    "model not whitelisted",
			enabled: true, modelID: "gpt-4-vision", usedToday: 0, limit: 500,
			wantBlocked: true, wantReason: BlockModelNotFree,
		},
		{
			name:    "whitelist checked before daily limit",
			enabled: true, modelID: "gpt-4-vision", usedToday: 500, limit: 500,
			wantBlocked: true, wantReason: BlockModelNotFree,
		},
		{
			name:    "daily limit reached",
			enabled: true, modelID: "gemini-2.0-flash", usedToday: 500, limit: 500,
			wantBlocked: true, wantReason: BlockDailyLimitExceeded,
		},
		{
			name:    "one request left",
			enabled: true, modelID: "gemma-3-27b-it", usedToday: 499, limit: 500,
			wantBlocked: false, wantReason: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quota := NewQuotaCounter(tt.limit)
			for i := 0; i < tt.usedToday; i++ {
				quota.Increment()
			}
			gate := NewGate(tt.enabled, testWhitelist, quota)

			blocked, reason := gate.Evaluate(tt.modelID)
			if blocked != tt.wantBlocked {
				t.Errorf("Evaluate(%q) blocked = %v, want %v", tt.modelID, blocked, tt.wantBlocked)
			}
			if reason != tt.wantReason {
				t.Errorf("Evaluate(%q) reason = %q, want %q", tt.modelID, reason, tt.wantReason)
			}
		})
	}
}

func TestGateEvaluateHasNoSideEffects(t *testing.T) {
	quota := NewQuotaCounter(500)
	gate := NewGate(true, testWhitelist, quota)

	for i := 0; i < 10; i++ {
		gate.Evaluate("gemini-2.0-flash")
	}
	if got := quota.CountToday(); got != 0 {
		t.Errorf("Evaluate incremented the quota: count = %d, want 0", got)
	}
}

func TestCheckBillingHeaders(t *testing.T) {
	tests := []struct {
		name        string
		headers     http.Header
		wantBlocked bool
	}{
		{"nil headers", nil, false},
		{"no billing headers", http.Header{"Content-Type": {"application/json"}}, false},
		{"x-billing-charged", http.Header{"X-Billing-Charged": {"true"}}, true},
		{"x-cost", http.Header{"X-Cost": {"0.002"}}, true},
		{"x-usage-cost", http.Header{"X-Usage-Cost": {"0.01"}}, true},
		{"unrelated x-usage header", http.Header{"X-Usage": {"42"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, reason := CheckBillingHeaders(tt.headers)
			if blocked != tt.wantBlocked {
				t.Errorf("CheckBillingHeaders() blocked = %v, want %v", blocked, tt.wantBlocked)
			}
			if tt.wantBlocked && reason != BlockBillingDetected {
				t.Errorf("reason = %q, want %q", reason, BlockBillingDetected)
			}
		})
	}
}
