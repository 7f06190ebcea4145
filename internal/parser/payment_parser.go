// payment_parser.go - Orchestration of the parse pipeline

package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/settleloop/payment-ai-service/configs"
	"github.com/settleloop/payment-ai-service/internal/ai"
	"github.com/settleloop/payment-ai-service/internal/common"
	"github.com/settleloop/payment-ai-service/internal/guardrail"
	"github.com/settleloop/payment-ai-service/internal/models"
	"github.com/settleloop/payment-ai-service/internal/processor"
)

// errorToReviewReason maps error codes onto the closed review-reason
// enumeration used when constructing an error envelope.
var errorToReviewReason = map[string]string{
	models.ErrAIFailed:             models.ReviewAIUncertain,
	models.ErrInvalidImage:         models.ReviewValidationFailed,
	models.ErrPaymentDateInvalid:   models.ReviewDateMismatch,
	models.ErrNotPaymentScreenshot: models.ReviewNotPaymentScreenshot,
	models.ErrValidationFailed:     models.ReviewValidationFailed,
	models.ErrServiceError:         models.ReviewServiceError,
	models.ErrServiceDisabled:      models.ReviewServiceDisabled,
	models.ErrDailyLimitExceeded:   models.ReviewServiceDisabled,
	models.ErrModelNotFree:         models.ReviewServiceDisabled,
}

// Service orchestrates one parse request: guardrails, image validation,
// quota accounting, the provider call, cross-validation and envelope
// assembly. Requests run concurrently; the quota counter is the only shared
// mutable state.
type Service struct {
	provider      ai.Provider
	gate          *guardrail.Gate
	minConfidence float64
	preprocess    bool
	maxDimension  int
}

// NewService wires the orchestrator from configuration.
func NewService(provider ai.Provider, gate *guardrail.Gate) *Service {
	return &Service{
		provider:      provider,
		gate:          gate,
		minConfidence: configs.MIN_CONFIDENCE_THRESHOLD,
		preprocess:    configs.ENABLE_IMAGE_PREPROCESSING,
		maxDimension:  configs.MAX_IMAGE_DIMENSION,
	}
}

// Read accessors for the /status endpoint.

func (s *Service) Enabled() bool                { return s.gate.Enabled() }
func (s *Service) ProviderName() string         { return s.provider.ProviderName() }
func (s *Service) DailyLimit() int              { return s.gate.Quota().Limit() }
func (s *Service) RequestsToday() int           { return s.gate.Quota().CountToday() }
func (s *Service) RequestsRemaining() int       { return s.gate.Quota().Remaining() }
func (s *Service) ConfidenceThreshold() float64 { return s.minConfidence }

// ParsePaymentScreenshot runs the full pipeline and always returns a
// well-formed envelope - no failure escapes as an error or a panic.
func (s *Service) ParsePaymentScreenshot(ctx context.Context, imageBase64, matchDate string) (resp models.ParsePaymentResponse) {
	reqCtx := common.NewRequestContext()

	providerName := s.provider.ProviderName()
	modelID := s.provider.ModelID()
	costTier := s.costTier()

	// An unanticipated panic anywhere below becomes service_error.
	defer func() {
		if r := recover(); r != nil {
			reqCtx.LogError("Panic during parsing: %v", r)
			resp = s.errorResponse(models.ErrServiceError,
				fmt.Sprintf("Unexpected error: %v", r),
				providerName, modelID, costTier, "", reqCtx)
		}
	}()

	// The hash is attached to every response, success or failure, so the
	// caller can correlate results with the submitted image.
	imageHash, imageBytes, hashErr := processor.GenerateImageHash(imageBase64)
	if hashErr != nil {
		reqCtx.LogWarning("Could not hash image: %v", hashErr)
	}

	// 1. Cost guardrails: kill switch, whitelist, daily limit - in order.
	if blocked, reason := s.gate.Evaluate(modelID); blocked {
		return s.errorResponse(reason,
			fmt.Sprintf("Request blocked: %s", reason),
			providerName, modelID, costTier, imageHash, reqCtx)
	}

	// 2. Image validation. Terminal - never retried.
	if ok, validationError := processor.ValidateImage(imageBase64); !ok {
		return s.errorResponse(models.ErrInvalidImage, validationError,
			providerName, modelID, costTier, imageHash, reqCtx)
	}

	// 3. Count the request only once it is actually going to the provider.
	count := s.gate.Quota().Increment()
	reqCtx.LogInfo("Request #%d/%d - processing image", count, s.DailyLimit())

	// 4. Optional downscale of oversized screenshots. Failure here falls
	// back to the original bytes - preprocessing is an optimization.
	payload := imageBytes
	mimeType := processor.DetectMIMEType(imageBytes)
	if s.preprocess {
		if resized, resizedMIME, err := processor.PreprocessImage(imageBytes, s.maxDimension); err == nil {
			payload, mimeType = resized, resizedMIME
		} else {
			reqCtx.LogWarning("Preprocessing failed, using original image: %v", err)
		}
	}

	// 5. Provider call (internal multi-model fallback).
	reqCtx.StartStep("provider_call")
	result, err := s.provider.ParsePaymentImage(ctx, payload, mimeType, reqCtx)
	if err != nil {
		reqCtx.EndStep("failed", nil, err)
		return s.errorResponse(models.ErrAIFailed,
			fmt.Sprintf("AI processing failed: %v", err),
			providerName, s.provider.ModelID(), s.costTier(), imageHash, reqCtx)
	}
	reqCtx.EndStep("success", result.Usage, nil)

	// Fallback may have answered with a different model than requested.
	modelID = s.provider.ModelID()
	costTier = s.costTier()

	// 6. Screenshot classification.
	if !result.IsPaymentScreenshot {
		detected := result.DetectedType
		if detected == "" {
			detected = "unknown"
		}
		return s.errorResponse(models.ErrNotPaymentScreenshot,
			fmt.Sprintf("Image is not a payment screenshot. Detected: %s", detected),
			providerName, modelID, costTier, imageHash, reqCtx)
	}

	// 7. Build the payment record, normalizing free-text enums.
	data := models.PaymentData{
		Amount:            result.Amount,
		Currency:          result.Currency,
		PayerName:         result.PayerName,
		PayeeName:         result.PayeeName,
		Date:              result.Date,
		Time:              result.Time,
		TransactionStatus: normalizeStatus(result.TransactionStatus),
		TransactionID:     result.TransactionID,
		PaymentMethod:     normalizePaymentMethod(result.PaymentMethod),
		UPIID:             result.UPIID,
	}

	// 8. Post-success review triggers, in evaluation order: amount, date,
	// confidence. The first reason set wins - later checks never overwrite.
	requiresReview := false
	reviewReason := ""

	if data.Amount <= 0 {
		requiresReview = true
		reviewReason = models.ReviewValidationFailed
		reqCtx.LogWarning("Amount is 0 or negative - flagging for review")
	}

	if matchDate != "" && data.Date != "" {
		if valid, reason := processor.ValidatePaymentDate(data.Date, matchDate); !valid {
			requiresReview = true
			if reviewReason == "" {
				reviewReason = reason
			}
			reqCtx.LogWarning("Date validation failed: %s", reason)
		}
	}

	if result.Confidence < s.minConfidence {
		requiresReview = true
		if reviewReason == "" {
			reviewReason = models.ReviewLowConfidence
		}
		reqCtx.LogWarning("Low confidence: %.2f", result.Confidence)
	}

	reqCtx.LogInfo("Parsed payment: amount=%.2f confidence=%.2f review=%v",
		data.Amount, result.Confidence, requiresReview)

	return models.SuccessResponse(data, result.Confidence,
		providerName, modelID, costTier, imageHash,
		reqCtx.ElapsedMs(), requiresReview, reviewReason)
}

// costTier maps the provider's free-tier flag onto the metadata enum.
func (s *Service) costTier() string {
	if s.provider.IsFreeTier() {
		return "free"
	}
	return "paid"
}

// errorResponse assembles a failure envelope with the mapped review reason.
func (s *Service) errorResponse(errorCode, errorMessage, providerName, modelID, costTier, imageHash string, reqCtx *common.RequestContext) models.ParsePaymentResponse {
	reviewReason, ok := errorToReviewReason[errorCode]
	if !ok {
		reviewReason = models.ReviewServiceError
	}
	reqCtx.LogWarning("Parse failed: %s - %s", errorCode, errorMessage)
	return models.ErrorResponse(errorCode, errorMessage, reviewReason,
		providerName, modelID, costTier, imageHash, reqCtx.ElapsedMs(), false)
}

// normalizeStatus maps free-text transaction status onto the closed enum.
func normalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "success", "successful", "done":
		return "completed"
	case "failed", "failure", "rejected":
		return "failed"
	case "pending", "processing", "in progress":
		return "pending"
	default:
		return "unknown"
	}
}

// normalizePaymentMethod maps free-text payment method onto the closed enum.
// The UPI app brand names all collapse to UPI.
func normalizePaymentMethod(method string) string {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case "UPI", "BHIM", "GPAY", "PHONEPE", "PAYTM":
		return "UPI"
	case "NEFT":
		return "NEFT"
	case "IMPS":
		return "IMPS"
	default:
		return "unknown"
	}
}
