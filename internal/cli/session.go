package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// AnswerFunc answers one question, writing its output itself.
type AnswerFunc func(ctx context.Context, question string) error

// Session is an interactive question loop.
type Session struct {
	in     *LineReader
	out    io.Writer
	answer AnswerFunc
}

// NewSession creates a session reading questions from in.
func NewSession(in io.Reader, out io.Writer, answer AnswerFunc) *Session {
	return &Session{in: NewLineReader(in), out: out, answer: answer}
}

// Run prompts until the input ends, the user types exit or quit, or ctx is
// canceled. A failed answer is reported and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	if _, err := fmt.Fprintln(s.out, FormatInfo("Ask about your finances. Type exit to quit.")); err != nil {
		return err
	}

	for {
		if _, err := fmt.Fprint(s.out, FormatPrompt("spice")); err != nil {
			return err
		}

		line, err := s.in.ReadLine(ctx)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, ErrInputCancelled):
			_, _ = fmt.Fprintln(s.out)
			return nil
		case err != nil:
			return fmt.Errorf("failed to read question: %w", err)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := s.answer(ctx, line); err != nil {
			if _, werr := fmt.Fprintln(s.out, FormatError(err.Error())); werr != nil {
				return werr
			}
		}
	}
}
