package generative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	apiKeyRequiredMessageConstant       = "gemini api key required"
	modelRequiredMessageConstant        = "gemini model required"
	emptyResponseMessageConstant        = "gemini returned an empty response"
	clientCreationErrorTemplateConstant = "unable to create gemini client: %w"
	generationErrorTemplateConstant     = "gemini generation with model %s failed: %w"
	generationStartedMessageConstant    = "requesting gemini completion"
	generationFinishedMessageConstant   = "gemini completion received"
	logFieldModelConstant               = "model"
	logFieldPromptLengthConstant        = "prompt_length"
	logFieldResponseLengthConstant      = "response_length"
	logFieldDurationConstant            = "duration"
)

var (
	// ErrAPIKeyRequired indicates that NewClient was called without an API key.
	ErrAPIKeyRequired = errors.New(apiKeyRequiredMessageConstant)
	// ErrModelRequired indicates that the configuration names no model.
	ErrModelRequired = errors.New(modelRequiredMessageConstant)
	// ErrEmptyResponse indicates that the service answered without any text.
	ErrEmptyResponse = errors.New(emptyResponseMessageConstant)
)

// TextGenerator produces free-form text for a prompt.
type TextGenerator interface {
	Generate(executionContext context.Context, prompt string) (string, error)
}

// contentGenerator is the slice of the genai models service used by Client.
type contentGenerator interface {
	GenerateContent(executionContext context.Context, model string, contents []*genai.Content, configuration *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends prompts to the Gemini API. Construct it once per process and share it.
type Client struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient validates the configuration and builds the underlying genai client.
func NewClient(executionContext context.Context, apiKey string, configuration Configuration, logger *zap.Logger) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if len(trimmedKey) == 0 {
		return nil, ErrAPIKeyRequired
	}

	sanitized := configuration.sanitize()
	if len(sanitized.Model) == 0 {
		return nil, ErrModelRequired
	}

	clientConfiguration := &genai.ClientConfig{
		APIKey:  trimmedKey,
		Backend: genai.BackendGeminiAPI,
	}
	if len(sanitized.BaseURL) > 0 {
		clientConfiguration.HTTPOptions = genai.HTTPOptions{BaseURL: sanitized.BaseURL}
	}

	genaiClient, creationError := genai.NewClient(executionContext, clientConfiguration)
	if creationError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, creationError)
	}

	return newClientWithGenerator(genaiClient.Models, sanitized, logger), nil
}

func newClientWithGenerator(models contentGenerator, configuration Configuration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		models:  models,
		model:   configuration.Model,
		timeout: configuration.Timeout,
		logger:  logger,
	}
}

// Model returns the configured model name.
func (client *Client) Model() string {
	return client.model
}

// Generate sends the prompt and returns the response text. The configured timeout bounds each call.
func (client *Client) Generate(executionContext context.Context, prompt string) (string, error) {
	requestContext := executionContext
	if client.timeout > 0 {
		var cancel context.CancelFunc
		requestContext, cancel = context.WithTimeout(executionContext, client.timeout)
		defer cancel()
	}

	client.logger.Debug(generationStartedMessageConstant,
		zap.String(logFieldModelConstant, client.model),
		zap.Int(logFieldPromptLengthConstant, len(prompt)),
	)

	startTime := time.Now()
	response, generationError := client.models.GenerateContent(requestContext, client.model, genai.Text(prompt), nil)
	if generationError != nil {
		return "", fmt.Errorf(generationErrorTemplateConstant, client.model, generationError)
	}
	if response == nil {
		return "", ErrEmptyResponse
	}

	responseText := response.Text()
	client.logger.Debug(generationFinishedMessageConstant,
		zap.String(logFieldModelConstant, client.model),
		zap.Int(logFieldResponseLengthConstant, len(responseText)),
		zap.Duration(logFieldDurationConstant, time.Since(startTime)),
	)

	if len(strings.TrimSpace(responseText)) == 0 {
		return "", ErrEmptyResponse
	}
	return responseText, nil
}
