package prompt

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	confirmationPromptConstant = "Proceed? (y/n): "
	secretPromptConstant       = "Gemini API key: "
)

func TestConsoleConfirm(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "short_yes", input: "y\n", expected: true},
		{name: "long_yes_mixed_case", input: " YES \n", expected: true},
		{name: "no", input: "n\n", expected: false},
		{name: "blank", input: "\n", expected: false},
		{name: "closed_input", input: "", expected: false},
		{name: "yes_without_newline", input: "yes", expected: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			console := NewConsole(strings.NewReader(testCase.input), outputBuffer)

			confirmed, confirmError := console.Confirm(confirmationPromptConstant)
			require.NoError(testInstance, confirmError)
			require.Equal(testInstance, testCase.expected, confirmed)
			require.Equal(testInstance, confirmationPromptConstant, outputBuffer.String())
		})
	}
}

func TestConsoleReadLine(testInstance *testing.T) {
	console := NewConsole(strings.NewReader("first\r\nsecond\n"), &bytes.Buffer{})

	firstLine, firstError := console.ReadLine("> ")
	require.NoError(testInstance, firstError)
	require.Equal(testInstance, "first", firstLine)

	secondLine, secondError := console.ReadLine("")
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, "second", secondLine)

	_, closedError := console.ReadLine("")
	require.ErrorIs(testInstance, closedError, ErrInputClosed)
}

func TestConsoleReadLinesUntil(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedLines []string
		remaining     string
	}{
		{
			name:          "terminator_consumed",
			input:         "one\n  two\nEND\nafter\n",
			expectedLines: []string{"one", "  two"},
			remaining:     "after",
		},
		{
			name:          "immediate_terminator",
			input:         "END\n",
			expectedLines: []string{},
		},
		{
			name:          "terminator_must_match_exactly",
			input:         "END \nend\nEND\n",
			expectedLines: []string{"END ", "end"},
		},
		{
			name:          "input_ends_first",
			input:         "partial",
			expectedLines: []string{"partial"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			console := NewConsole(strings.NewReader(testCase.input), &bytes.Buffer{})

			lines, readError := console.ReadLinesUntil("END")
			require.NoError(testInstance, readError)
			require.Equal(testInstance, testCase.expectedLines, lines)

			if len(testCase.remaining) > 0 {
				remainingLine, remainingError := console.ReadLine("")
				require.NoError(testInstance, remainingError)
				require.Equal(testInstance, testCase.remaining, remainingLine)
			}
		})
	}
}

func TestConsoleReadSecretFallsBackToLineInput(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	console := NewConsole(strings.NewReader("  secret-value  \n"), outputBuffer)

	secret, secretError := console.ReadSecret(secretPromptConstant)
	require.NoError(testInstance, secretError)
	require.Equal(testInstance, "secret-value", secret)
	require.Equal(testInstance, secretPromptConstant, outputBuffer.String())
}

func TestConsoleReadSecretUsesTerminalReader(testInstance *testing.T) {
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)
	testInstance.Cleanup(func() {
		_ = pipeReader.Close()
		_ = pipeWriter.Close()
	})

	outputBuffer := &bytes.Buffer{}
	console := NewConsole(pipeReader, outputBuffer)
	console.terminalDetect = func(int) bool { return true }

	observedDescriptor := -1
	console.secretReader = func(fileDescriptor int) ([]byte, error) {
		observedDescriptor = fileDescriptor
		return []byte("hidden\n"), nil
	}

	secret, secretError := console.ReadSecret(secretPromptConstant)
	require.NoError(testInstance, secretError)
	require.Equal(testInstance, "hidden", secret)
	require.Equal(testInstance, int(pipeReader.Fd()), observedDescriptor)
	require.Equal(testInstance, secretPromptConstant+"\n", outputBuffer.String())

	terminalFailure := errors.New("terminal unavailable")
	console.secretReader = func(int) ([]byte, error) { return nil, terminalFailure }
	_, failedError := console.ReadSecret(secretPromptConstant)
	require.ErrorIs(testInstance, failedError, terminalFailure)
}

func TestConsoleFlushesBufferedOutputBeforeReading(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	bufferedOutput := bufio.NewWriterSize(outputBuffer, 4096)
	console := NewConsole(strings.NewReader("answer\n"), bufferedOutput)

	response, readError := console.ReadLine(confirmationPromptConstant)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "answer", response)
	require.Equal(testInstance, confirmationPromptConstant, outputBuffer.String())
	require.Same(testInstance, console.Writer(), NewConsole(strings.NewReader(""), console.Writer()).Writer())
}
