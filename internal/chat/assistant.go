package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"

	maxErrorBodyBytes = 1024
)

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

// CompletionsClient talks to an OpenAI compatible chat completions endpoint.
type CompletionsClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewCompletionsClient(baseURL, apiKey, model string, httpClient *http.Client) *CompletionsClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &CompletionsClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

func (c *CompletionsClient) Reply(ctx context.Context, instruction, message string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "assistant.completions.reply")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("model", c.model))

	reqBytes, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []completionMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: message},
		},
	})
	if err != nil {
		return "", apperr.Collaborator("marshal completion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return "", apperr.Collaborator("new completion request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Collaborator("http client do", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		log.Debugf("completions api error response: %s", body)
		return "", apperr.Collaborator("completions api", fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", apperr.Collaborator("decode completion response", err)
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", apperr.Collaborator("completions api", errors.New("empty completion"))
	}

	return completion.Choices[0].Message.Content, nil
}
