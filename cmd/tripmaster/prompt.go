package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompter asks questions on one line-oriented input. Confirm and Overwrite
// share the reader so buffered input is not lost between prompts.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// Confirm asks the user to type "yes". Anything else, including end of
// input, declines.
func (p *prompter) Confirm() (bool, error) {
	fmt.Fprint(p.out, "Please verify the settings above. Type 'yes' to continue: ")
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	return answer == "yes", nil
}

// Overwrite asks whether an existing trip file should be replaced. It is
// used as the ffmpeg.Decider.
func (p *prompter) Overwrite(path string) (bool, error) {
	fmt.Fprintf(p.out, "File '%s' already exists. Overwrite? [y/N] ", path)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// readLine returns the next trimmed line. End of input yields "".
func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
	}
	return strings.TrimSpace(line), nil
}
