package buildsys

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// InvalidAnswerError is returned by PromptConfirmer for anything but y or n
type InvalidAnswerError struct {
	Answer string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("%s is not valid", e.Answer)
}

// PromptConfirmer reads the answer from a line-based input such as stdin
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements Confirmer. Only "y" and "n" are accepted (case-insensitive).
func (c *PromptConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(c.Out, "%s\n\ty=YES, n=NO\n", question)

	reader := bufio.NewReader(c.In)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, eris.Wrap(err, "failed to read answer")
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	switch answer {
	case "y":
		return true, nil
	case "n":
		return false, nil
	default:
		return false, &InvalidAnswerError{Answer: strings.TrimSpace(line)}
	}
}

// FixedConfirmer always gives the same answer without asking
type FixedConfirmer bool

// Confirm implements Confirmer
func (c FixedConfirmer) Confirm(context.Context, string) (bool, error) {
	return bool(c), nil
}
