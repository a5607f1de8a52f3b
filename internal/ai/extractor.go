package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Extractor turns free text into structured marketplace drafts and answers
// general questions.
type Extractor interface {
	ExtractProduct(ctx context.Context, text string) (*ProductDraft, error)
	ExtractHarvest(ctx context.Context, text string) (*HarvestDraft, error)
	ExtractQuote(ctx context.Context, text string) (*QuoteDraft, error)
	ExtractOrderAction(ctx context.Context, text string) (*OrderActionDraft, error)
	Answer(ctx context.Context, question, locale string) (string, error)
}

var ErrEmptyCompletion = errors.New("empty completion")

const (
	productPrompt = `Extract a product listing from the farmer's message. Reply with a JSON object with keys
"name", "category" (one of: vegetables, fruits, grains, livestock, dairy, other), "description",
"price" (number per unit), "quantity" (number), "unit" (kg, ton, lb, crate, bunch, dozen, unit).
Use null or "" for anything not stated. Never guess.`

	harvestPrompt = `Extract a buyer's harvest request from the message. Reply with a JSON object with keys
"crop", "quantity" (number), "unit", "needed_by" (YYYY-MM-DD), "notes".
Use null or "" for anything not stated. Never guess.`

	quotePrompt = `Extract a seller's quote for a buyer request from the message. Reply with a JSON object with keys
"request_ref" (the request reference or id), "price" (number per unit), "currency" (ISO 4217 code),
"quantity" (number). Use null or "" for anything not stated. Never guess.`

	orderPrompt = `Extract an action on an existing order from the message. Reply with a JSON object with keys
"order_ref" (order reference), "action" (accept, reject or status), "eta" (YYYY-MM-DD when accepting),
"reason" (when rejecting), "status" (shipped, delivered or cancelled when updating).
Use "" for anything not stated. Never guess.`

	answerPrompt = `You are the WhatsApp assistant of an agricultural marketplace where farmers list produce and
buyers post harvest requests. Answer briefly in plain text (no markdown), at most 3 sentences.
Reply in %s. If the question is unrelated to the marketplace, say you can only help with marketplace topics.`
)

// OpenAIExtractor implements Extractor with chat completions in JSON mode.
type OpenAIExtractor struct {
	client openai.Client
	model  string
}

func NewOpenAIExtractor(apiKey, model string, opts ...option.RequestOption) *OpenAIExtractor {
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIExtractor{
		client: openai.NewClient(options...),
		model:  model,
	}
}

func (e *OpenAIExtractor) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       e.model,
		Temperature: openai.Float(0),
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func extract[T any](ctx context.Context, e *OpenAIExtractor, prompt, text string) (*T, error) {
	content, err := e.complete(ctx, prompt, text, true)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	return &out, nil
}

func (e *OpenAIExtractor) ExtractProduct(ctx context.Context, text string) (*ProductDraft, error) {
	return extract[ProductDraft](ctx, e, productPrompt, text)
}

func (e *OpenAIExtractor) ExtractHarvest(ctx context.Context, text string) (*HarvestDraft, error) {
	return extract[HarvestDraft](ctx, e, harvestPrompt, text)
}

func (e *OpenAIExtractor) ExtractQuote(ctx context.Context, text string) (*QuoteDraft, error) {
	return extract[QuoteDraft](ctx, e, quotePrompt, text)
}

func (e *OpenAIExtractor) ExtractOrderAction(ctx context.Context, text string) (*OrderActionDraft, error) {
	d, err := extract[OrderActionDraft](ctx, e, orderPrompt, text)
	if err != nil {
		return nil, err
	}
	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	return d, nil
}

func (e *OpenAIExtractor) Answer(ctx context.Context, question, locale string) (string, error) {
	language := "English"
	if locale == "es" {
		language = "Spanish"
	}
	return e.complete(ctx, fmt.Sprintf(answerPrompt, language), question, false)
}

// Noop recognizes nothing. It stands in when no API key is configured.
type Noop struct{}

func (Noop) ExtractProduct(context.Context, string) (*ProductDraft, error)         { return nil, nil }
func (Noop) ExtractHarvest(context.Context, string) (*HarvestDraft, error)         { return nil, nil }
func (Noop) ExtractQuote(context.Context, string) (*QuoteDraft, error)             { return nil, nil }
func (Noop) ExtractOrderAction(context.Context, string) (*OrderActionDraft, error) { return nil, nil }
func (Noop) Answer(context.Context, string, string) (string, error)                { return "", nil }
