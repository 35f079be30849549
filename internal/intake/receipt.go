package intake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"vibeledger/internal/core"
	"vibeledger/internal/log"
)

// ReceiptReader extracts a transaction suggestion from a receipt photo
// using a vision-capable chat model.
type ReceiptReader struct {
	client *openai.Client
	model  string
	logger *log.Logger
}

// NewReceiptReader builds a receipt reader. baseURL may be empty; model
// defaults to gpt-4o-mini.
func NewReceiptReader(apiKey, baseURL, model string, logger *log.Logger) *ReceiptReader {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &ReceiptReader{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.WithComponent(log.ComponentIntake),
	}
}

var acceptedImages = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/webp": "webp",
}

// receiptPrompt pins the model to our category vocabulary and a strict
// JSON shape so the response can be unmarshalled directly.
const receiptPrompt = `You read photos of receipts for a bookkeeping app.
Return only minified JSON, no markdown, with this exact shape:
{"kind":"expense","category":string,"amount":string,"description":string}
Rules:
- kind is almost always "expense"; use "income" only for payout slips.
- category MUST be one of: %s (for expenses) or %s (for income).
- amount is the receipt grand total as a plain decimal string, e.g. "12.50".
- description is a short vendor or purchase summary, max 80 characters.
- If the image is not a receipt, return {"kind":"","category":"","amount":"","description":""}.`

type receiptPayload struct {
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// FromImage sends the photo to the vision model and maps its answer onto
// a suggestion.
func (r *ReceiptReader) FromImage(ctx context.Context, image []byte, contentType string) (core.Suggested, error) {
	if _, ok := acceptedImages[contentType]; !ok {
		return core.Suggested{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))
	prompt := fmt.Sprintf(receiptPrompt, joinCategories(core.ExpenseCategories()), joinCategories(core.IncomeCategories()))

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Extract this receipt."},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "receipt extraction request failed",
			log.FieldOperation, log.OpExtract, log.FieldError, err)
		return core.Suggested{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if len(resp.Choices) == 0 {
		return core.Suggested{}, ErrExtraction
	}

	var payload receiptPayload
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		r.logger.WarnContext(ctx, "model returned unparseable payload",
			log.FieldOperation, log.OpExtract, log.FieldError, err)
		return core.Suggested{}, ErrExtraction
	}
	if payload.Kind == "" || payload.Amount == "" {
		return core.Suggested{}, ErrExtraction
	}

	suggestion := core.Suggested{
		Kind:        core.Kind(payload.Kind),
		Category:    core.Category(payload.Category),
		AmountText:  payload.Amount,
		Description: payload.Description,
		Source:      "receipt",
	}
	// The model occasionally invents kinds and categories; fall back to
	// the catch-all rather than surfacing an invalid pre-fill.
	if !suggestion.Kind.Valid() {
		suggestion.Kind = core.KindExpense
	}
	if !suggestion.Category.BelongsTo(suggestion.Kind) {
		if suggestion.Kind == core.KindIncome {
			suggestion.Category = core.CategoryOtherIncome
		} else {
			suggestion.Category = core.CategoryOtherExpense
		}
	}

	r.logger.InfoContext(ctx, "receipt extracted",
		log.FieldOperation, log.OpExtract,
		log.FieldKind, payload.Kind,
		log.FieldCategory, string(suggestion.Category))
	return suggestion, nil
}

func joinCategories(cats []core.Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
