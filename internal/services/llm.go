package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-analyzer/internal/logger"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1/"

var ErrEmptyResponse = errors.New("no text content in response")

// ChatProvider sends a single user message and returns the reply text.
type ChatProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}

// NewChatProvider builds the provider named by provider ("groq", "openai",
// "gemini" or "anthropic"). SDK retries stay off: one request per report.
func NewChatProvider(ctx context.Context, provider, apiKey, model, baseURL string, maxTokens int) (ChatProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required for %s", provider)
	}

	switch provider {
	case "groq":
		if baseURL == "" {
			baseURL = GroqBaseURL
		}
		return newOpenAIChatProvider(provider, apiKey, model, baseURL, maxTokens), nil
	case "openai":
		return newOpenAIChatProvider(provider, apiKey, model, baseURL, maxTokens), nil
	case "gemini":
		return newGeminiChatProvider(ctx, apiKey, model, maxTokens)
	case "anthropic":
		return newAnthropicChatProvider(apiKey, model, baseURL, maxTokens), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", provider)
	}
}

type openAIChatProvider struct {
	client    openai.Client
	name      string
	model     string
	maxTokens int
}

func newOpenAIChatProvider(name, apiKey, model, baseURL string, maxTokens int) *openAIChatProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &openAIChatProvider{
		client:    openai.NewClient(opts...),
		name:      name,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (p *openAIChatProvider) Name() string  { return p.name }
func (p *openAIChatProvider) Model() string { return p.model }

// Complete implements ChatProvider.
func (p *openAIChatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

type geminiChatProvider struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func newGeminiChatProvider(ctx context.Context, apiKey, model string, maxTokens int) (*geminiChatProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiChatProvider{client: client, model: model, maxTokens: maxTokens}, nil
}

func (g *geminiChatProvider) Name() string  { return "gemini" }
func (g *geminiChatProvider) Model() string { return g.model }

// Complete implements ChatProvider.
func (g *geminiChatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = int32(g.maxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

type anthropicChatProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

func newAnthropicChatProvider(apiKey, model, baseURL string, maxTokens int) *anthropicChatProvider {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(baseURL))
	}

	// Anthropic requires an explicit output budget.
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &anthropicChatProvider{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (a *anthropicChatProvider) Name() string  { return "anthropic" }
func (a *anthropicChatProvider) Model() string { return a.model }

// Complete implements ChatProvider.
func (a *anthropicChatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}

	return text.String(), nil
}

type ReportService interface {
	Generate(ctx context.Context, resume, jobDescription string) ReportResult
}

// ReportResult is the LLM report. When Err is set Text holds the
// "Error generating report: ..." message shown in place of the report.
type ReportResult struct {
	Text string
	Err  error
}

func (r ReportResult) Degraded() bool {
	return r.Err != nil
}

type reportService struct {
	provider      ChatProvider
	promptBuilder *PromptBuilder
	timeout       time.Duration
	log           *zap.Logger
}

func NewReportService(provider ChatProvider, timeout time.Duration, log *zap.Logger) ReportService {
	return &reportService{
		provider:      provider,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
		log:           logger.WithCommonFields(log, provider.Name(), provider.Model()),
	}
}

// Generate implements ReportService.
func (r *reportService) Generate(ctx context.Context, resume, jobDescription string) ReportResult {
	prompt := r.promptBuilder.BuildResumeAnalysisPrompt(resume, jobDescription)
	r.log.Debug("📝 Report prompt built", zap.Int("prompt_chars", len(prompt)))

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := r.provider.Complete(ctx, prompt)
	if err != nil {
		r.log.Error("❌ Report generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return ReportResult{
			Text: fmt.Sprintf("Error generating report: %v", err),
			Err:  err,
		}
	}

	r.log.Info("✅ Report generated",
		zap.Int("report_chars", len(text)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return ReportResult{Text: text}
}
