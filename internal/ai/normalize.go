// normalize.go - Model response normalization

package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/settleloop/payment-ai-service/internal/common"
)

// ExtractionResult is the strongly-typed form of the model's JSON answer.
// Coercion and defaulting happen here, at the earliest boundary - downstream
// code never re-validates shape.
type ExtractionResult struct {
	IsPaymentScreenshot bool
	DetectedType        string
	Confidence          float64
	Amount              float64
	Currency            string
	PayerName           string
	PayeeName           string
	Date                string
	Time                string
	TransactionStatus   string
	TransactionID       string
	PaymentMethod       string
	UPIID               string
	RawResponse         string
	Usage               *common.TokenUsage
}

// ParseError means the model's answer was not syntactically valid JSON.
// The raw text is kept for diagnostics.
type ParseError struct {
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON parse error: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// stripCodeFence removes a surrounding ``` fence if the model wrapped its
// JSON in a markdown code block despite the prompt.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseModelResponse turns the raw model text into an ExtractionResult.
// It fails only on JSON syntax errors; a missing or wrong-typed field is
// coerced to its declared default, never an error.
func ParseModelResponse(responseText string) (*ExtractionResult, error) {
	text := stripCodeFence(responseText)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &ParseError{RawResponse: responseText, Cause: err}
	}

	return &ExtractionResult{
		IsPaymentScreenshot: asBool(raw["is_payment_screenshot"], false),
		DetectedType:        asString(raw["detected_type"], ""),
		Confidence:          asFloat(raw["confidence"], 0),
		Amount:              asFloat(raw["amount"], 0),
		Currency:            asString(raw["currency"], "INR"),
		PayerName:           asString(raw["payer_name"], ""),
		PayeeName:           asString(raw["payee_name"], ""),
		Date:                asString(raw["date"], ""),
		Time:                asString(raw["time"], ""),
		TransactionStatus:   asString(raw["transaction_status"], "unknown"),
		TransactionID:       asString(raw["transaction_id"], ""),
		PaymentMethod:       asString(raw["payment_method"], "unknown"),
		UPIID:               asString(raw["upi_id"], ""),
		RawResponse:         responseText,
	}, nil
}

// --- Coercion helpers ---
// Models occasionally emit numbers as strings or booleans as "true"; the
// helpers absorb that instead of failing the whole request.

func asString(v interface{}, def string) string {
	switch val := v.(type) {
	case nil:
		return def
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return def
	}
}

func asFloat(v interface{}, def float64) float64 {
	switch val := v.(type) {
	case nil:
		return def
	case float64:
		return val
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
		return def
	default:
		return def
	}
}

func asBool(v interface{}, def bool) bool {
	switch val := v.(type) {
	case nil:
		return def
	case bool:
		return val
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return parsed
		}
		return def
	default:
		return def
	}
}
