package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/prompt"
)

const (
	askCommandUseConstant                 = "ask [question...]"
	askCommandShortDescriptionConstant    = "Ask Gemini a question"
	askCommandLongDescriptionConstant     = "ask sends a free-form question to Gemini and prints the answer. Without arguments the question is read from standard input."
	questionPromptConstant                = "Enter your question for Gemini: "
	responseHeaderConstant                = "Gemini's Response:"
	generatorNotConfiguredMessageConstant = "gemini client not configured"
	questionRequiredMessageConstant       = "a question is required"
	askErrorTemplateConstant              = "error getting response from Gemini: %w"
	questionReadErrorTemplateConstant     = "unable to read question: %w"
	answerReceivedLogMessageConstant      = "gemini answer received"
	logFieldQuestionLengthConstant        = "question_length"
	logFieldAnswerLengthConstant          = "answer_length"
	logFieldModelConstant                 = "model"
)

var (
	// ErrGeneratorNotConfigured indicates that no text generator provider was supplied.
	ErrGeneratorNotConfigured = errors.New(generatorNotConfiguredMessageConstant)
	// ErrQuestionRequired indicates an empty question.
	ErrQuestionRequired = errors.New(questionRequiredMessageConstant)
)

// modelReporter is implemented by generators that know which model answers.
type modelReporter interface {
	Model() string
}

// AskCommandBuilder assembles the ask command.
type AskCommandBuilder struct {
	LoggerProvider    LoggerProvider
	GeneratorProvider TextGeneratorProvider
}

// Build constructs the ask command.
func (builder *AskCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   askCommandUseConstant,
		Short: askCommandShortDescriptionConstant,
		Long:  askCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *AskCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if builder.GeneratorProvider == nil {
		return ErrGeneratorNotConfigured
	}

	console := prompt.NewConsole(command.InOrStdin(), command.OutOrStdout())
	question := strings.TrimSpace(strings.Join(arguments, " "))
	if len(question) == 0 {
		response, readError := console.ReadLine(questionPromptConstant)
		if readError != nil && !errors.Is(readError, prompt.ErrInputClosed) {
			return fmt.Errorf(questionReadErrorTemplateConstant, readError)
		}
		question = strings.TrimSpace(response)
	}
	if len(question) == 0 {
		return ErrQuestionRequired
	}

	generator, generatorError := builder.GeneratorProvider(command.Context())
	if generatorError != nil {
		return generatorError
	}

	answer, generateError := generator.Generate(command.Context(), question)
	if generateError != nil {
		return fmt.Errorf(askErrorTemplateConstant, generateError)
	}
	logFields := []zap.Field{
		zap.Int(logFieldQuestionLengthConstant, len(question)),
		zap.Int(logFieldAnswerLengthConstant, len(answer)),
	}
	if reporter, reportsModel := generator.(modelReporter); reportsModel {
		logFields = append(logFields, zap.String(logFieldModelConstant, reporter.Model()))
	}
	resolveLogger(builder.LoggerProvider).Debug(answerReceivedLogMessageConstant, logFields...)

	if printError := console.Println("\n" + console.Styles().Header.Render(responseHeaderConstant)); printError != nil {
		return printError
	}
	return console.Println(answer)
}
