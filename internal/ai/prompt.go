// prompt.go - Extraction prompt shared by all providers

package ai

// PaymentExtractionPrompt instructs the model to classify the image and, for
// payment screenshots, emit only a JSON object matching the extraction
// schema. The rules about empty strings and zero defaults keep the
// normalization step trivial; nulls never appear.
const PaymentExtractionPrompt = `You are analyzing an image. First determine if this is a UPI/bank payment screenshot.

If this is NOT a payment screenshot (e.g., selfie, document, random image, chat screenshot), respond with ONLY this JSON:
{"is_payment_screenshot": false, "detected_type": "describe what the image is"}

If this IS a payment screenshot, extract the following information and respond with ONLY valid JSON (no markdown, no explanation):
{
    "is_payment_screenshot": true,
    "amount": <number - the payment amount, use 0 if not found>,
    "currency": "INR",
    "payer_name": "<string - name of person who paid, empty string if not found>",
    "payee_name": "<string - name of recipient, empty string if not found>",
    "date": "<string in YYYY-MM-DD format, empty string if not found>",
    "time": "<string in HH:MM:SS format, empty string if not found>",
    "transaction_status": "<completed|failed|pending|unknown>",
    "transaction_id": "<string - UPI ref or transaction ID, empty string if not found>",
    "payment_method": "<UPI|NEFT|IMPS|unknown>",
    "upi_id": "<string - UPI ID if visible, empty string if not found>",
    "confidence": <number between 0 and 1 indicating how confident you are>
}

Important rules:
1. Return ONLY the JSON object, no other text
2. All string fields should be empty strings "" if not found, never null
3. Amount should be 0 if not clearly visible
4. Date must be in YYYY-MM-DD format
5. Time must be in HH:MM:SS format (use 00:00:00 if only date is visible)
6. Be conservative with confidence - if anything is unclear, lower the confidence`
