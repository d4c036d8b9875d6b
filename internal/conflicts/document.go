package conflicts

import "strings"

const lineSeparatorConstant = "\n"

// Document holds text as the ordered lines the extractor and splicer operate on.
// Splitting on the newline separator keeps a trailing empty element when the text
// ends with a newline, so Text reproduces the original bytes exactly.
type Document struct {
	Lines []string
}

// NewDocument splits text into lines.
func NewDocument(text string) Document {
	return Document{Lines: strings.Split(text, lineSeparatorConstant)}
}

// Text joins the document lines back into a single string.
func (document Document) Text() string {
	return strings.Join(document.Lines, lineSeparatorConstant)
}
