package prompt

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	affirmativeShortResponseConstant = "y"
	affirmativeLongResponseConstant  = "yes"
	newlineConstant                  = "\n"
	inputClosedMessageConstant       = "input closed before a response was read"
)

// ErrInputClosed indicates that the input stream ended before any response was entered.
var ErrInputClosed = errors.New(inputClosedMessageConstant)

// SecretReader reads a line without echoing it to the terminal.
type SecretReader func(fileDescriptor int) ([]byte, error)

// Console reads operator responses from an io.Reader and writes prompts to an io.Writer.
type Console struct {
	reader         *bufio.Reader
	writer         io.Writer
	terminalInput  *os.File
	secretReader   SecretReader
	terminalDetect func(fileDescriptor int) bool
	styles         Styles
}

// NewConsole constructs a console from the provided reader and writer. Prompts are flushed
// before input is read so buffered writers never hide a question.
func NewConsole(input io.Reader, output io.Writer) *Console {
	if output == nil {
		output = io.Discard
	}

	console := &Console{
		reader:         bufio.NewReader(input),
		writer:         newFlushingWriter(output),
		secretReader:   term.ReadPassword,
		terminalDetect: term.IsTerminal,
		styles:         NewStyles(output),
	}
	if inputFile, isFile := input.(*os.File); isFile {
		console.terminalInput = inputFile
	}
	return console
}

// Writer exposes the flushing output stream.
func (console *Console) Writer() io.Writer {
	return console.writer
}

// Styles returns the styles detected for the output stream.
func (console *Console) Styles() Styles {
	return console.styles
}

// Print writes text without a trailing newline.
func (console *Console) Print(text string) error {
	_, writeError := io.WriteString(console.writer, text)
	return writeError
}

// Println writes text followed by a newline.
func (console *Console) Println(text string) error {
	return console.Print(text + newlineConstant)
}

// Confirm writes the prompt and interprets affirmative responses (y/yes).
func (console *Console) Confirm(prompt string) (bool, error) {
	response, readError := console.ReadLine(prompt)
	if readError != nil {
		if errors.Is(readError, ErrInputClosed) {
			return false, nil
		}
		return false, readError
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	default:
		return false, nil
	}
}

// ReadLine writes the prompt and returns the next line without its line terminator.
// An input stream that ends without any characters yields ErrInputClosed.
func (console *Console) ReadLine(prompt string) (string, error) {
	if len(prompt) > 0 {
		if writeError := console.Print(prompt); writeError != nil {
			return "", writeError
		}
	}

	response, readError := console.reader.ReadString('\n')
	if readError != nil {
		if !errors.Is(readError, io.EOF) {
			return "", readError
		}
		if len(response) == 0 {
			return "", ErrInputClosed
		}
	}

	return strings.TrimRight(response, "\r\n"), nil
}

// ReadLinesUntil collects lines until one equals the terminator exactly. The terminator
// line is consumed and not returned. End of input also finishes collection.
func (console *Console) ReadLinesUntil(terminator string) ([]string, error) {
	collectedLines := []string{}
	for {
		line, readError := console.ReadLine("")
		if readError != nil {
			if errors.Is(readError, ErrInputClosed) {
				return collectedLines, nil
			}
			return nil, readError
		}
		if line == terminator {
			return collectedLines, nil
		}
		collectedLines = append(collectedLines, line)
	}
}

// ReadSecret prompts for a value without echo when input is an interactive terminal and
// falls back to a plain line read otherwise.
func (console *Console) ReadSecret(prompt string) (string, error) {
	if console.terminalInput == nil || !console.terminalDetect(int(console.terminalInput.Fd())) {
		response, readError := console.ReadLine(prompt)
		if readError != nil {
			return "", readError
		}
		return strings.TrimSpace(response), nil
	}

	if writeError := console.Print(prompt); writeError != nil {
		return "", writeError
	}
	secretBytes, readError := console.secretReader(int(console.terminalInput.Fd()))
	if printError := console.Println(""); printError != nil {
		return "", printError
	}
	if readError != nil {
		return "", readError
	}
	return strings.TrimSpace(string(secretBytes)), nil
}
