// schemas.go - Response contract shared with the reconciliation backend.
//
// IMPORTANT: this schema is a CONTRACT with the caller. The structure must
// stay static - only values change. Never add or remove fields without
// coordinating with the backend team. Absence of information is represented
// by the field's zero value, never by omission.

package models

// PaymentData is the payment extracted from the screenshot.
// All fields are always present: empty string for missing text fields,
// 0 for a missing amount.
type PaymentData struct {
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	PayerName         string  `json:"payer_name"`
	PayeeName         string  `json:"payee_name"`
	Date              string  `json:"date"` // YYYY-MM-DD or ""
	Time              string  `json:"time"` // HH:MM:SS or ""
	TransactionStatus string  `json:"transaction_status"` // completed|failed|pending|unknown
	TransactionID     string  `json:"transaction_id"`
	PaymentMethod     string  `json:"payment_method"` // UPI|NEFT|IMPS|unknown
	UPIID             string  `json:"upi_id"`
}

// NewPaymentData returns a zero-valued record with the contract defaults.
func NewPaymentData() PaymentData {
	return PaymentData{
		Currency:          "INR",
		TransactionStatus: "unknown",
		PaymentMethod:     "unknown",
	}
}

// Valid review_reason values (closed enumeration).
const (
	ReviewLowConfidence        = "low_confidence"
	ReviewDateMismatch         = "date_mismatch"
	ReviewAIUncertain          = "ai_uncertain"
	ReviewNotPaymentScreenshot = "not_payment_screenshot"
	ReviewValidationFailed     = "validation_failed"
	ReviewServiceError         = "service_error"
	ReviewServiceDisabled      = "service_disabled"
)

// Valid error_code values (closed enumeration).
const (
	ErrNotPaymentScreenshot = "not_payment_screenshot"
	ErrPaymentDateInvalid   = "payment_date_invalid"
	ErrAIFailed             = "ai_failed"
	ErrValidationFailed     = "validation_failed"
	ErrServiceDisabled      = "service_disabled"
	ErrServiceError         = "service_error"
	ErrDailyLimitExceeded   = "daily_limit_exceeded"
	ErrModelNotFree         = "model_not_free"
	ErrInvalidImage         = "invalid_image"
)

// ResponseMetadata describes the act of parsing, not the payment itself.
type ResponseMetadata struct {
	Confidence          float64 `json:"confidence"` // 0..1
	IsPaymentScreenshot bool    `json:"is_payment_screenshot"`
	ProcessingTimeMs    int64   `json:"processing_time_ms"`
	Provider            string  `json:"provider"`
	Model               string  `json:"model"` // the model that actually answered
	ModelCostTier       string  `json:"model_cost_tier"` // free|paid|unknown
	ImageHash           string  `json:"image_hash"` // hex SHA-256 of decoded bytes
	RequiresReview      bool    `json:"requires_review"`
	ReviewReason        string  `json:"review_reason,omitempty"`
}

// ParsePaymentResponse is the uniform envelope returned for every request.
// Invariants: success=true ⇔ error_code absent;
// requires_review=true ⇔ review_reason present;
// success=false ⇒ requires_review=true.
type ParsePaymentResponse struct {
	Success      bool             `json:"success"`
	ErrorCode    string           `json:"error_code,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Data         PaymentData      `json:"data"`
	Metadata     ResponseMetadata `json:"metadata"`
}

// ErrorResponse builds a failure envelope. Data is zero-valued and
// requires_review is always set.
func ErrorResponse(errorCode, errorMessage, reviewReason, provider, model, costTier, imageHash string, processingTimeMs int64, isPaymentScreenshot bool) ParsePaymentResponse {
	if reviewReason == "" {
		reviewReason = errorCode
	}
	return ParsePaymentResponse{
		Success:      false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		Data:         NewPaymentData(),
		Metadata: ResponseMetadata{
			Confidence:          0,
			IsPaymentScreenshot: isPaymentScreenshot,
			ProcessingTimeMs:    processingTimeMs,
			Provider:            provider,
			Model:               model,
			ModelCostTier:       costTier,
			ImageHash:           imageHash,
			RequiresReview:      true,
			ReviewReason:        reviewReason,
		},
	}
}

// SuccessResponse builds a success envelope.
func SuccessResponse(data PaymentData, confidence float64, provider, model, costTier, imageHash string, processingTimeMs int64, requiresReview bool, reviewReason string) ParsePaymentResponse {
	return ParsePaymentResponse{
		Success: true,
		Data:    data,
		Metadata: ResponseMetadata{
			Confidence:          confidence,
			IsPaymentScreenshot: true,
			ProcessingTimeMs:    processingTimeMs,
			Provider:            provider,
			Model:               model,
			ModelCostTier:       costTier,
			ImageHash:           imageHash,
			RequiresReview:      requiresReview,
			ReviewReason:        reviewReason,
		},
	}
}

// ParsePaymentRequest is the inbound request body.
type ParsePaymentRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	MatchDate   string `json:"match_date"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string `json:"status"` // healthy|unhealthy
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	Enabled                bool    `json:"enabled"`
	Provider               string  `json:"provider"`
	DailyLimit             int     `json:"daily_limit"`
	RequestsToday          int     `json:"requests_today"`
	RequestsRemaining      int     `json:"requests_remaining"`
	MinConfidenceThreshold float64 `json:"min_confidence_threshold"`
}
