package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/code-payments/code-minter/pkg/mint"
)

var errNotInteractive = errors.New("stdin is not a terminal")

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// requireTerminal fails unless stdin is interactive, so piped input can't
// answer confirmations that move funds.
func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errNotInteractive
	}
	return nil
}

// line reads one answer, falling back to def when it's empty.
func (p *prompter) line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s] ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return "", errors.Wrap(err, "failed to read answer")
	}

	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return def, nil
	}
	return line, nil
}

// ask repeats a question until its answer validates.
func (p *prompter) ask(q mint.Question) (string, error) {
	for {
		answer, err := p.line(q.Prompt, q.Default)
		if err != nil {
			return "", err
		}

		if err := q.Validate(answer); err != nil {
			fmt.Fprintf(p.out, "  %s\n", strings.TrimSuffix(err.Error(), ": "+mint.ErrInvalidParameters.Error()))
			continue
		}
		return answer, nil
	}
}

// collect asks every mint question in order.
func (p *prompter) collect(network string) (*mint.Answers, error) {
	answers := &mint.Answers{}
	for _, q := range mint.Questions() {
		if q.Answer(answers) == &answers.NetworkConfirmation {
			q.Prompt = fmt.Sprintf("Confirm the network is %s (Y/N):", network)
		}

		answer, err := p.ask(q)
		if err != nil {
			return nil, err
		}
		*q.Answer(answers) = answer
	}
	return answers, nil
}

// confirmDestination requires the operator to type the sweep destination
// back exactly.
func (p *prompter) confirmDestination(destination string) error {
	fmt.Fprintf(p.out, "The sweep watcher will transfer the wallet's SOL balance to %s on every new slot.\n", destination)

	answer, err := p.line("Type the destination address to confirm:", "")
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) != destination {
		return errors.New("destination was not confirmed")
	}
	return nil
}
