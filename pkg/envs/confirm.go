package envs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PromptConfirm returns a Confirm that writes the prompt to out and reads one
// line from in. Only "y" (any case, no surrounding blanks) confirms; EOF
// counts as "no".
func PromptConfirm(in io.Reader, out io.Writer) Confirm {
	reader := bufio.NewReader(in)
	return func(prompt string) (bool, error) {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}
		return strings.EqualFold(strings.TrimRight(line, "\r\n"), "y"), nil
	}
}
