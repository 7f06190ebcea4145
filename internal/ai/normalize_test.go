package ai

import (
	"errors"
	"strings"
	"testing"
)

const fullResponse = `{
	"is_payment_screenshot": true,
	"detected_type": "payment_screenshot",
	"confidence": 0.95,
	"amount": 1500.50,
	"currency": "INR",
	"payer_name": "Rahul Sharma",
	"payee_name": "Amit Traders",
	"date": "2024-01-15",
	"time": "14:32:05",
	"transaction_status": "completed",
	"transaction_id": "T2401151432051234567890",
	"payment_method": "UPI",
	"upi_id": "rahul@oksbi"
}`

func TestParseModelResponse(t *testing.T) {
	result, err := ParseModelResponse(fullResponse)
	if err != nil {
		t.Fatalf("ParseModelResponse error: %v", err)
	}

	if !result.IsPaymentScreenshot {
		t.Error("IsPaymentScreenshot = false, want true")
	}
	if result.Amount != 1500.50 {
		t.Errorf("Amount = %v, want 1500.50", result.Amount)
	}
	if result.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", result.Confidence)
	}
	if result.PayerName != "Rahul Sharma" {
		t.Errorf("PayerName = %q", result.PayerName)
	}
	if result.UPIID != "rahul@oksbi" {
		t.Errorf("UPIID = %q", result.UPIID)
	}
	if result.RawResponse != fullResponse {
		t.Error("RawResponse must carry the original text")
	}
}

func TestParseModelResponseStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + fullResponse + "\n```"
	result, err := ParseModelResponse(fenced)
	if err != nil {
		t.Fatalf("fenced response should parse: %v", err)
	}
	if result.Amount != 1500.50 {
		t.Errorf("Amount = %v, want 1500.50", result.Amount)
	}
}

func TestParseModelResponseDefaults(t *testing.T) {
	// Missing fields are filled with the declared defaults, never errors.
	result, err := ParseModelResponse(`{"is_payment_screenshot": true, "amount": 250}`)
	if err != nil {
		t.Fatalf("ParseModelResponse error: %v", err)
	}

	if result.Currency != "INR" {
		t.Errorf("Currency default = %q, want INR", result.Currency)
	}
	if result.TransactionStatus != "unknown" {
		t.Errorf("TransactionStatus default = %q, want unknown", result.TransactionStatus)
	}
	if result.PaymentMethod != "unknown" {
		t.Errorf("PaymentMethod default = %q, want unknown", result.PaymentMethod)
	}
	if result.PayerName != "" || result.Date != "" {
		t.Error("missing text fields must default to empty strings")
	}
	if result.Confidence != 0 {
		t.Errorf("Confidence default = %v, want 0", result.Confidence)
	}
}

func TestParseModelResponseCoercion(t *testing.T) {
	// Models occasionally emit numbers as strings and vice versa.
	result, err := ParseModelResponse(`{
		"is_payment_screenshot": "true",
		"amount": "1500.50",
		"confidence": "0.8",
		"transaction_id": 12345
	}`)
	if err != nil {
		t.Fatalf("ParseModelResponse error: %v", err)
	}

	if !result.IsPaymentScreenshot {
		t.Error(`"true" string should coerce to bool true`)
	}
	if result.Amount != 1500.50 {
		t.Errorf("string amount coerced to %v, want 1500.50", result.Amount)
	}
	if result.Confidence != 0.8 {
		t.Errorf("string confidence coerced to %v, want 0.8", result.Confidence)
	}
	if result.TransactionID != "12345" {
		t.Errorf("numeric transaction_id coerced to %q, want \"12345\"", result.TransactionID)
	}
}

func TestParseModelResponseWrongTypesFallBack(t *testing.T) {
	result, err := ParseModelResponse(`{"amount": {"value": 100}, "payer_name": ["a"]}`)
	if err != nil {
		t.Fatalf("ParseModelResponse error: %v", err)
	}
	if result.Amount != 0 {
		t.Errorf("object amount = %v, want default 0", result.Amount)
	}
	if result.PayerName != "" {
		t.Errorf("array payer_name = %q, want default empty", result.PayerName)
	}
}

func TestParseModelResponseSyntaxError(t *testing.T) {
	raw := "Sorry, I cannot process this image."
	_, err := ParseModelResponse(raw)
	if err == nil {
		t.Fatal("expected parse error for non-JSON text")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.RawResponse != raw {
		t.Error("ParseError must carry the raw response for diagnostics")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseModelResponseNonPayment(t *testing.T) {
	result, err := ParseModelResponse(`{
		"is_payment_screenshot": false,
		"detected_type": "meme",
		"confidence": 0.99
	}`)
	if err != nil {
		t.Fatalf("ParseModelResponse error: %v", err)
	}
	if result.IsPaymentScreenshot {
		t.Error("IsPaymentScreenshot = true, want false")
	}
	if result.DetectedType != "meme" {
		t.Errorf("DetectedType = %q, want meme", result.DetectedType)
	}
	if !strings.Contains(result.RawResponse, "meme") {
		t.Error("RawResponse should carry the original text")
	}
}
