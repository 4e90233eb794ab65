// Package openai provides a model.Invoker backed by the OpenAI Chat
// Completions API. The same adapter serves any OpenAI-compatible endpoint
// (e.g. Groq) via the WithGroq / BaseURL options, and implements
// model.Embedder through the embeddings API.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/chronosynth/chronosynth/model"
)

// GroqBaseURL is the OpenAI-compatible endpoint served by Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Options configure the OpenAI invoker. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	EmbeddingModel      string
	Temperature         float64
	MaxCompletionTokens int64
	Provider            string
	APIKey              string
	BaseURL             string
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		EmbeddingModel:      string(openai.EmbeddingModelTextEmbedding3Small),
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		Provider:            "openai",
	}
}

// Invoker wraps the OpenAI Chat Completions API behind the generic
// model.Invoker interface.
type Invoker struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI invoker using the official client. Credentials
// come from the options or the ambient environment.
func New(optFns ...func(o *Options)) *Invoker {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)

	return &Invoker{client: &client, opts: opts}
}

// NewFromClient creates a new OpenAI invoker from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Invoker {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Invoker{client: client, opts: opts}
}

// WithGroq points the adapter at Groq's OpenAI-compatible endpoint.
func WithGroq(apiKey, modelName string) func(o *Options) {
	return func(o *Options) {
		o.Provider = "groq"
		o.APIKey = apiKey
		o.BaseURL = GroqBaseURL
		if modelName != "" {
			o.Model = modelName
		}
	}
}

// Invoke implements model.Invoker with a single non-streaming completion.
func (m *Invoker) Invoke(ctx context.Context, req model.Request) (*model.Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, m.wrapErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, model.NewInvocationError(model.ErrKindMalformed, m.opts.Provider, m.opts.Model, errors.New("no choices returned"))
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return nil, model.NewInvocationError(model.ErrKindMalformed, m.opts.Provider, m.opts.Model, errors.New("empty completion"))
	}

	out := &model.Response{Text: text, Model: m.opts.Model}
	if resp.Model != "" {
		out.Model = resp.Model
	}
	if resp.Usage.TotalTokens > 0 {
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}
	}

	return out, nil
}

// Embed implements model.Embedder via the embeddings API.
func (m *Invoker) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := m.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(m.opts.EmbeddingModel),
	})
	if err != nil {
		return nil, m.wrapErr(err)
	}
	if len(resp.Data) == 0 {
		return nil, model.NewInvocationError(model.ErrKindMalformed, m.opts.Provider, m.opts.EmbeddingModel, errors.New("no embedding returned"))
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}

	return vec, nil
}

func (m *Invoker) wrapErr(err error) error {
	kind := model.ErrKindTransport
	if errors.Is(err, context.DeadlineExceeded) {
		kind = model.ErrKindTimeout
	}
	return model.NewInvocationError(kind, m.opts.Provider, m.opts.Model, err)
}

// Info returns metadata describing this OpenAI invoker.
func (m *Invoker) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: m.opts.Provider,
	}
}
