// Package lambda implements the ai.Provider interface against the
// monitoring chatbot Lambda behind API Gateway. The handler answers a
// single question per request and cites its retrieval sources.
package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/ai"
)

const modelName = "lambda-wfm-chatbot-handler"

type Provider struct {
	config *Config
	client *http.Client
}

// questionRequest is the API Gateway payload.
type questionRequest struct {
	Question string `json:"question"`
}

// handlerResponse covers both the success and the Lambda runtime error
// shapes; the two never share fields.
type handlerResponse struct {
	Answer  *string  `json:"answer"`
	Sources []string `json:"sources"`

	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

func (p *Provider) Name() string {
	return "lambda"
}

func (p *Provider) ValidateConfig() error {
	return p.config.Validate()
}

// HealthCheck only verifies the configuration. The API Gateway route
// answers POST with a full model invocation, so a connectivity probe
// would burn a real completion.
func (p *Provider) HealthCheck(_ context.Context) error {
	return p.config.Validate()
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "nil", "completion request is required")
	}

	question := req.Prompt
	if req.SystemPrompt != "" {
		question = req.SystemPrompt + "\n\n" + req.Prompt
	}

	body, err := json.Marshal(questionRequest{Question: question})
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeValidation, "failed to marshal request", "lambda", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "failed to create request", "lambda", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, fmt.Sprintf("request timed out after %s", p.config.Timeout), "lambda", err)
		}
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "request failed", "lambda", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "failed to read response", "lambda", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.errorFromStatus(resp.StatusCode, raw)
	}

	content, err := parseHandlerResponse(raw)
	if err != nil {
		return nil, err
	}

	return &ai.CompletionResponse{
		Content:   content,
		Model:     modelName,
		RequestID: req.RequestID,
		CreatedAt: time.Now(),
	}, nil
}

func (p *Provider) errorFromStatus(status int, body []byte) error {
	message := fmt.Sprintf("request failed with status %d", status)
	if len(body) > 0 {
		message += ": " + strings.TrimSpace(string(body))
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ai.ProviderError{Type: ai.ErrTypeAuthentication, Message: "invalid API key", Provider: "lambda", StatusCode: status}
	default:
		return &ai.ProviderError{Type: ai.ErrTypeProvider, Message: message, Provider: "lambda", StatusCode: status}
	}
}

// parseHandlerResponse extracts the answer text. Valid retrieval sources
// are appended as a numbered Markdown list.
func parseHandlerResponse(raw []byte) (string, error) {
	var parsed handlerResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// A plain-text body is a valid answer unless it is the handler's
		// generic failure string.
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return "", ai.NewProviderError(ai.ErrTypeProvider, "empty response", "lambda")
		}
		if text == "Error processing your request" {
			return "", ai.NewProviderError(ai.ErrTypeProvider, "handler returned: Error processing your request", "lambda")
		}
		return text, nil
	}

	if parsed.ErrorMessage != "" && parsed.ErrorType != "" {
		return "", ai.NewProviderError(ai.ErrTypeProvider,
			fmt.Sprintf("Lambda %s: %s", parsed.ErrorType, parsed.ErrorMessage), "lambda")
	}

	if parsed.Answer == nil {
		return "", ai.NewProviderError(ai.ErrTypeProvider, "no 'answer' field in response", "lambda")
	}

	answer := *parsed.Answer
	if strings.TrimSpace(answer) == "" {
		return "", ai.NewProviderError(ai.ErrTypeProvider, "empty response", "lambda")
	}
	if answer == "Error processing your request" {
		return "", ai.NewProviderError(ai.ErrTypeProvider, "handler returned: Error processing your request", "lambda")
	}

	var valid []string
	for _, s := range parsed.Sources {
		if s != "" && s != "No sources found" && s != "Error occurred" {
			valid = append(valid, s)
		}
	}
	if len(valid) > 0 {
		var b strings.Builder
		b.WriteString(answer)
		b.WriteString("\n\n**Sources:**\n")
		for i, s := range valid {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		answer = b.String()
	}

	return answer, nil
}
