package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestValidateGenerateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *GenerateRequest
		wantErr bool
	}{
		{
			name:    "nil request",
			req:     nil,
			wantErr: true,
		},
		{
			name:    "no parts",
			req:     &GenerateRequest{SystemPrompt: "persona"},
			wantErr: true,
		},
		{
			name:    "empty part",
			req:     &GenerateRequest{Parts: []Part{{Text: "deck"}, {}}},
			wantErr: true,
		},
		{
			name:    "inline without media type",
			req:     &GenerateRequest{Parts: []Part{{Data: []byte("%PDF")}}},
			wantErr: true,
		},
		{
			name:    "text only",
			req:     &GenerateRequest{Parts: []Part{{Text: "deck"}}},
			wantErr: false,
		},
		{
			name: "text and file",
			req: &GenerateRequest{Parts: []Part{
				{Text: "deck"},
				{MIMEType: "application/pdf", Data: []byte("%PDF")},
			}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGenerateRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGenerateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsInputError(err) {
				t.Errorf("expected InputError, got %T", err)
			}
		})
	}
}

func TestErrorHelpersSeeThroughWrapping(t *testing.T) {
	upstream := NewUpstreamErrorWithCause(ErrTypeRateLimit, "slow down", "gemini", errors.New("429"))
	wrapped := fmt.Errorf("analysis failed: %w", upstream)

	if !IsUpstreamError(wrapped) {
		t.Error("IsUpstreamError should unwrap")
	}
	if !IsRateLimitError(wrapped) {
		t.Error("IsRateLimitError should unwrap")
	}
	if !IsRetryableError(wrapped) {
		t.Error("rate limit should be retryable")
	}
	if got := UpstreamErrorType(wrapped); got != ErrTypeRateLimit {
		t.Errorf("UpstreamErrorType = %s", got)
	}
	if !errors.Is(wrapped, &UpstreamError{Type: ErrTypeRateLimit}) {
		t.Error("errors.Is should match on type")
	}

	parse := fmt.Errorf("decode: %w", NewParseError("bad json", errors.New("eof")))
	if !IsParseError(parse) || IsUpstreamError(parse) {
		t.Error("parse error misclassified")
	}
	if !IsConfigurationError(fmt.Errorf("x: %w", NewConfigurationError("gemini", "api_key", "missing"))) {
		t.Error("configuration error not detected")
	}
	if IsRetryableError(NewUpstreamError(ErrTypeAuthentication, "denied", "gemini")) {
		t.Error("authentication should not be retryable")
	}
}

func TestErrorMessages(t *testing.T) {
	ue := &UpstreamError{Type: ErrTypeProvider, Provider: "gemini", StatusCode: 500, Message: "boom"}
	if got, want := ue.Error(), "provider=gemini: type=provider: status=500: boom"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	pe := NewParseError("schema mismatch", nil, "/financials: missing ruleOf40")
	if got, want := pe.Error(), "parse error: schema mismatch (/financials: missing ruleOf40)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type stubProvider struct{ cfg *ProviderConfig }

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Generate(context.Context, *GenerateRequest) (*GenerateResponse, error) {
	return &GenerateResponse{Content: "{}"}, nil
}
func (s *stubProvider) ValidateConfig() error { return nil }
func (s *stubProvider) Close() error          { return nil }

type stubFactory struct{}

func (stubFactory) Create(cfg *ProviderConfig) (Provider, error) { return &stubProvider{cfg: cfg}, nil }
func (stubFactory) Type() string                                 { return "stub" }
func (stubFactory) DefaultConfig() *ProviderConfig               { return &ProviderConfig{Name: "stub"} }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("stub", stubFactory{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("stub", stubFactory{}); err == nil {
		t.Error("duplicate registration should fail")
	}
	if !r.IsRegistered("stub") || r.IsRegistered("missing") {
		t.Error("IsRegistered wrong")
	}

	p, err := r.Create("stub", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := p.(*stubProvider).cfg.Name; got != "stub" {
		t.Errorf("default config not applied, got %q", got)
	}

	if _, err := r.Create("missing", nil); !IsConfigurationError(err) {
		t.Errorf("unknown provider should be a configuration error, got %v", err)
	}
	if names := r.List(); len(names) != 1 || names[0] != "stub" {
		t.Errorf("List = %v", names)
	}
}
