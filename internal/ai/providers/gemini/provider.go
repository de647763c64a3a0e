package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/yildizm/nexus/internal/ai"
)

type Provider struct {
	config     *Config
	httpClient *http.Client

	mu     sync.Mutex
	client *genai.Client
}

// Option customizes a Provider
type Option func(*Provider)

// WithHTTPClient sets the transport used by the SDK
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// New returns a provider for config. The SDK client is created on first use,
// so an incomplete config is only reported by ValidateConfig or Generate.
func New(config *Config, opts ...Option) *Provider {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Provider{config: config}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) ValidateConfig() error {
	return p.config.Validate()
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = nil
	return nil
}

func (p *Provider) Generate(ctx context.Context, req *ai.GenerateRequest) (*ai.GenerateResponse, error) {
	if err := p.config.Validate(); err != nil {
		return nil, err
	}
	if err := ai.ValidateGenerateRequest(req); err != nil {
		return nil, err
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = p.config.DefaultModel
	}

	resp, err := client.Models.GenerateContent(ctx, model, buildContents(req), p.buildConfig(req))
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	return toResponse(resp, model)
}

func (p *Provider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     p.config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, ai.NewConfigurationError(ProviderName, "client", fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	p.client = client
	return client, nil
}

func buildContents(req *ai.GenerateRequest) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, part := range req.Parts {
		if part.IsInline() {
			parts = append(parts, genai.NewPartFromBytes(part.Data, part.MIMEType))
			continue
		}
		parts = append(parts, genai.NewPartFromText(part.Text))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func (p *Provider) buildConfig(req *ai.GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(p.config.ThinkingBudget),
		},
	}

	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toSchema(req.ResponseSchema)
	}

	return cfg
}

func toResponse(resp *genai.GenerateContentResponse, model string) (*ai.GenerateResponse, error) {
	if resp == nil {
		return nil, ai.NewUpstreamError(ai.ErrTypeEmptyResponse, "no response returned", ProviderName)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		msg := fmt.Sprintf("prompt blocked: %s", fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			msg += ": " + fb.BlockReasonMessage
		}
		return nil, ai.NewUpstreamError(ai.ErrTypeInvalidRequest, msg, ProviderName)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ai.NewUpstreamError(ai.ErrTypeEmptyResponse, "response contained no text", ProviderName)
	}

	out := &ai.GenerateResponse{
		Content:   text,
		Model:     model,
		CreatedAt: time.Now(),
	}

	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}

	if u := resp.UsageMetadata; u != nil {
		out.Usage = &ai.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	return out, nil
}

// classifyError maps SDK and transport failures onto UpstreamError
func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ai.NewUpstreamErrorWithCause(ai.ErrTypeTimeout, "request timed out", ProviderName, err)
	}
	if errors.Is(err, context.Canceled) {
		return ai.NewUpstreamErrorWithCause(ai.ErrTypeNetwork, "request canceled", ProviderName, err)
	}

	if apiErr, ok := asAPIError(err); ok {
		ue := ai.NewUpstreamErrorWithCause(apiErrorType(apiErr), apiErr.Message, ProviderName, err)
		ue.StatusCode = apiErr.Code
		return ue
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ai.NewUpstreamErrorWithCause(ai.ErrTypeTimeout, "request timed out", ProviderName, err)
		}
		return ai.NewUpstreamErrorWithCause(ai.ErrTypeNetwork, "request failed", ProviderName, err)
	}

	return ai.NewUpstreamErrorWithCause(ai.ErrTypeProvider, "request failed", ProviderName, err)
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

func apiErrorType(e genai.APIError) ai.ErrorType {
	msg := strings.ToLower(e.Message)

	switch {
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return ai.ErrTypeAuthentication
	case e.Code == http.StatusBadRequest && strings.Contains(msg, "api key"):
		return ai.ErrTypeAuthentication
	case e.Code == http.StatusTooManyRequests && (strings.Contains(msg, "billing") || strings.Contains(msg, "exceeded your current quota")):
		return ai.ErrTypeQuota
	case e.Code == http.StatusTooManyRequests:
		return ai.ErrTypeRateLimit
	case e.Code == http.StatusNotFound || e.Code == http.StatusServiceUnavailable:
		return ai.ErrTypeModelUnavailable
	case e.Code == http.StatusGatewayTimeout:
		return ai.ErrTypeTimeout
	case e.Code >= 400 && e.Code < 500:
		return ai.ErrTypeInvalidRequest
	default:
		return ai.ErrTypeProvider
	}
}
