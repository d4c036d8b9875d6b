package assistant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/mergix/internal/assistant"
	"github.com/temirov/mergix/internal/generative"
)

type stubGenerator struct {
	answer    string
	err       error
	questions []string
}

func (generator *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	generator.questions = append(generator.questions, prompt)
	return generator.answer, generator.err
}

func newAskBuilder(generator *stubGenerator, providerError error) *assistant.AskCommandBuilder {
	return &assistant.AskCommandBuilder{
		GeneratorProvider: func(context.Context) (generative.TextGenerator, error) {
			if providerError != nil {
				return nil, providerError
			}
			return generator, nil
		},
	}
}

func TestAskCommand(testInstance *testing.T) {
	testCases := []struct {
		name             string
		input            string
		arguments        []string
		expectedQuestion string
	}{
		{name: "arguments", arguments: []string{"what", "is", "rebase?"}, expectedQuestion: "what is rebase?"},
		{name: "standard_input", input: "  explain cherry-pick \n", expectedQuestion: "explain cherry-pick"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			generator := &stubGenerator{answer: "It rewrites history."}
			output, executionError := runCommand(subtest, newAskBuilder(generator, nil).Build, testCase.input, testCase.arguments...)
			require.NoError(subtest, executionError)
			require.Equal(subtest, []string{testCase.expectedQuestion}, generator.questions)
			require.Contains(subtest, output, "\nGemini's Response:\nIt rewrites history.\n")
		})
	}
}

func TestAskCommandFailures(testInstance *testing.T) {
	_, emptyError := runCommand(testInstance, newAskBuilder(&stubGenerator{}, nil).Build, "\n")
	require.ErrorIs(testInstance, emptyError, assistant.ErrQuestionRequired)

	providerFailure := errors.New("gemini api key not found")
	_, providerError := runCommand(testInstance, newAskBuilder(nil, providerFailure).Build, "", "hello")
	require.ErrorIs(testInstance, providerError, providerFailure)

	generationFailure := errors.New("quota exceeded")
	_, generationError := runCommand(testInstance, newAskBuilder(&stubGenerator{err: generationFailure}, nil).Build, "", "hello")
	require.ErrorIs(testInstance, generationError, generationFailure)
	require.Contains(testInstance, generationError.Error(), "error getting response from Gemini")

	unconfigured := &assistant.AskCommandBuilder{}
	_, unconfiguredError := runCommand(testInstance, unconfigured.Build, "", "hello")
	require.ErrorIs(testInstance, unconfiguredError, assistant.ErrGeneratorNotConfigured)
}

type namedGenerator struct {
	stubGenerator
	model string
}

func (generator *namedGenerator) Model() string {
	return generator.model
}

func TestAskCommandLogsAnsweringModel(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	generator := &namedGenerator{stubGenerator: stubGenerator{answer: "Use git bisect."}, model: "gemini-2.5-flash"}
	builder := &assistant.AskCommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.New(observedCore) },
		GeneratorProvider: func(context.Context) (generative.TextGenerator, error) {
			return generator, nil
		},
	}

	_, executionError := runCommand(testInstance, builder.Build, "", "how", "to", "find", "a", "regression?")
	require.NoError(testInstance, executionError)

	entries := observedLogs.FilterMessage("gemini answer received").All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "gemini-2.5-flash", entries[0].ContextMap()["model"])
	require.Equal(testInstance, int64(len("Use git bisect.")), entries[0].ContextMap()["answer_length"])
}
