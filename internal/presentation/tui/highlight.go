package tui

import (
	"io"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// Highlight writes source to w with syntax highlighting picked from filename.
// Unknown file types are written unchanged.
func Highlight(w io.Writer, source, filename string) error {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		_, err := io.WriteString(w, source)
		return err
	}
	return quick.Highlight(w, source, lexer.Config().Name, "terminal256", "monokai")
}
