package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/logger"
)

// Options configures the analysis client
type Options struct {
	// Model overrides the provider default
	Model string

	// StrictValidation rejects replies that break the schema and clamps
	// out-of-range scores. When false replies are trusted as decoded.
	StrictValidation bool

	// Pattern builds the system instruction; nil means DueDiligence()
	Pattern *DueDiligencePattern

	Logger *logger.Logger
}

// DefaultOptions returns strict validation with the default pattern
func DefaultOptions() *Options {
	return &Options{StrictValidation: true}
}

// Client turns one startup description into an AnalysisResult with a single model call
type Client struct {
	provider  ai.Provider
	options   *Options
	system    string
	validator *Validator
	logger    *logger.Logger
	tracer    trace.Tracer
}

// NewClient creates an analysis client. A nil provider is allowed; Analyze
// then reports a ConfigurationError.
func NewClient(provider ai.Provider, options *Options) (*Client, error) {
	if options == nil {
		options = DefaultOptions()
	}

	pattern := options.Pattern
	if pattern == nil {
		pattern = DueDiligence()
	}

	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	log := options.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		provider:  provider,
		options:   options,
		system:    SystemInstruction(pattern.Build()),
		validator: validator,
		logger:    log.WithComponent("analyzer"),
		tracer:    otel.Tracer("github.com/yildizm/nexus/internal/analyzer"),
	}, nil
}

// SystemPrompt returns the fixed instruction sent with every request
func (c *Client) SystemPrompt() string {
	return c.system
}

// CheckConfig reports a ConfigurationError when no usable provider is configured
func (c *Client) CheckConfig() error {
	if c.provider == nil {
		return ai.NewConfigurationError("", "provider", "no AI provider configured")
	}
	return c.provider.ValidateConfig()
}

// Analyze validates input, issues exactly one request and decodes the reply.
// Preconditions are checked before any network activity.
func (c *Client) Analyze(ctx context.Context, text string, file *common.FileInput) (*common.AnalysisResult, error) {
	if err := c.CheckConfig(); err != nil {
		return nil, err
	}

	req, err := c.buildRequest(text, file)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "analyzer.Analyze", trace.WithAttributes(
		attribute.String("ai.provider", c.provider.Name()),
		attribute.Int("input.text_length", len(text)),
		attribute.Bool("input.has_file", file != nil),
	))
	defer span.End()

	start := time.Now()
	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		c.logger.ErrorWithFields("analysis request failed", []logger.Field{
			logger.F("provider", c.provider.Name()),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream")
		return nil, err
	}

	fields := []logger.Field{logger.F("model", resp.Model), logger.Duration(time.Since(start))}
	if resp.Usage != nil {
		fields = append(fields, logger.F("tokens", resp.Usage.TotalTokens))
		span.SetAttributes(attribute.Int("ai.tokens.total", resp.Usage.TotalTokens))
	}
	c.logger.InfoWithFields("analysis response received", fields)

	result, err := c.decode(resp.Content)
	if err != nil {
		c.logger.ErrorWithFields("analysis response rejected", []logger.Field{logger.Error(err)})
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (c *Client) buildRequest(text string, file *common.FileInput) (*ai.GenerateRequest, error) {
	text = strings.TrimSpace(text)
	hasFile := file.HasData()

	if text == "" && !hasFile {
		return nil, ai.NewInputError("input", "", "no input provided (text or file)")
	}

	var parts []ai.Part
	if text != "" {
		parts = append(parts, ai.Part{Text: text})
	}

	if hasFile {
		if file.MIMEType == "" {
			return nil, ai.NewInputError("file.mimeType", file.Name, "file media type is required")
		}
		data, err := DecodePayload(file.Data)
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			parts = append(parts, ai.Part{MIMEType: file.MIMEType, Data: data})
		}
	}

	if len(parts) == 0 {
		return nil, ai.NewInputError("file.data", file.Name, "file payload decodes to no bytes")
	}

	return &ai.GenerateRequest{
		SystemPrompt:   c.system,
		Parts:          parts,
		ResponseSchema: common.ResultSchema(),
		Model:          c.options.Model,
	}, nil
}

func (c *Client) decode(content string) (*common.AnalysisResult, error) {
	payload := []byte(strings.TrimSpace(content))

	// The whole payload must be one JSON value; no prose or trailing data
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, ai.NewParseError("response is not valid JSON", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, ai.NewParseError("response is not a JSON object", fmt.Errorf("top-level value is %T", doc))
	}

	var result common.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, ai.NewParseError("response is not a valid analysis result", err)
	}

	if c.options.StrictValidation {
		if violations := c.validator.Validate(doc); len(violations) > 0 {
			return nil, ai.NewParseError("response does not conform to the result schema", nil, violations...)
		}
		if clamped := ClampScores(&result); len(clamped) > 0 {
			c.logger.WarnWithFields("scores outside 0-100 were clamped", []logger.Field{
				logger.F("fields", strings.Join(clamped, ",")),
			})
		}
	}

	normalizeSlices(&result)
	return &result, nil
}
