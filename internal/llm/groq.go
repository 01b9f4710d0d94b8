package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint; the go-openai client
// speaks to it unchanged.
const groqBaseURL = "https://api.groq.com/openai/v1"

// Generation parameters for patient chat. Conversational temperature, capped
// reply length.
const (
	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// GroqClient calls the Groq chat completion API.
type GroqClient struct {
	client *openai.Client
	model  string
}

// NewGroqClient constructs a Groq-backed completion client for the given
// model.
func NewGroqClient(apiKey, model string) *GroqClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the assembled conversation to the chat completion API and
// returns the first generated reply.
func (c *GroqClient) Complete(ctx context.Context, messages []Message) (string, error) {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindModel, Message: "completion returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps an API failure onto a Kind by HTTP status. Anything without
// a recognizable status is treated as a transport failure.
func classify(err error) *Error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	kind := KindTransport
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindCredential
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		kind = KindQuota
	case http.StatusNotFound:
		kind = KindModel
	}
	return &Error{Kind: kind, Message: err.Error()}
}
