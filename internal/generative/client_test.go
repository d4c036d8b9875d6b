package generative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"
)

type recordingContentGenerator struct {
	response         *genai.GenerateContentResponse
	err              error
	observedModel    string
	observedPrompt   string
	observedDeadline bool
}

func (generator *recordingContentGenerator) GenerateContent(executionContext context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	generator.observedModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		generator.observedPrompt = contents[0].Parts[0].Text
	}
	_, generator.observedDeadline = executionContext.Deadline()
	return generator.response, generator.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestClientGenerate(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	generator := &recordingContentGenerator{response: textResponse("resolved text")}
	client := newClientWithGenerator(generator, Configuration{Model: "gemini-test", Timeout: time.Minute}, zap.New(observedCore))

	responseText, generateError := client.Generate(context.Background(), "prompt body")
	require.NoError(testInstance, generateError)
	require.Equal(testInstance, "resolved text", responseText)
	require.Equal(testInstance, "gemini-test", generator.observedModel)
	require.Equal(testInstance, "prompt body", generator.observedPrompt)
	require.True(testInstance, generator.observedDeadline)
	require.Equal(testInstance, 2, observedLogs.Len())
}

func TestClientGenerateFailures(testInstance *testing.T) {
	serviceFailure := errors.New("quota exceeded")

	testCases := []struct {
		name          string
		generator     *recordingContentGenerator
		expectedError error
	}{
		{name: "service_error", generator: &recordingContentGenerator{err: serviceFailure}, expectedError: serviceFailure},
		{name: "nil_response", generator: &recordingContentGenerator{}, expectedError: ErrEmptyResponse},
		{name: "blank_text", generator: &recordingContentGenerator{response: textResponse("  \n")}, expectedError: ErrEmptyResponse},
		{name: "no_candidates", generator: &recordingContentGenerator{response: &genai.GenerateContentResponse{}}, expectedError: ErrEmptyResponse},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client := newClientWithGenerator(testCase.generator, Configuration{Model: "gemini-test"}, nil)
			_, generateError := client.Generate(context.Background(), "prompt")
			require.ErrorIs(testInstance, generateError, testCase.expectedError)
			require.False(testInstance, testCase.generator.observedDeadline)
		})
	}
}

func TestNewClientValidatesConfiguration(testInstance *testing.T) {
	_, missingKeyError := NewClient(context.Background(), "  ", DefaultConfiguration(), zap.NewNop())
	require.ErrorIs(testInstance, missingKeyError, ErrAPIKeyRequired)

	_, missingModelError := NewClient(context.Background(), "key", Configuration{Model: " "}, zap.NewNop())
	require.ErrorIs(testInstance, missingModelError, ErrModelRequired)

	client, clientError := NewClient(context.Background(), "key", DefaultConfiguration(), zap.NewNop())
	require.NoError(testInstance, clientError)
	require.Equal(testInstance, defaultModelConstant, client.Model())
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	values := DefaultConfigurationValues("tools.ai")
	require.Equal(testInstance, defaultModelConstant, values["tools.ai.model"])
	require.Equal(testInstance, "1m30s", values["tools.ai.timeout"])
	require.Equal(testInstance, "", values["tools.ai.base_url"])
}
