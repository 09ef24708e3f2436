/*
Package input reads interactive user input such as wallet passwords.
*/
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal is a terminal used for input. If `nil`, stdin is used.
var Terminal *term.Terminal

// ReadWriter combines separate reader and writer to be used as a terminal
// backend.
type ReadWriter struct {
	io.Reader
	io.Writer
}

// ReadLine reads a line from the input without trailing '\n'.
func ReadLine(prompt string) (string, error) {
	if Terminal != nil {
		_, err := Terminal.Write([]byte(prompt))
		if err != nil {
			return "", err
		}
		return Terminal.ReadLine()
	}
	fmt.Fprint(os.Stdout, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword reads the user's password with prompt. Input isn't echoed
// if stdin is a terminal.
func ReadPassword(prompt string) (string, error) {
	if Terminal != nil {
		return Terminal.ReadPassword(prompt)
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadLine(prompt)
	}
	fmt.Fprint(os.Stdout, prompt)
	pass, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(os.Stdout)
	return string(pass), nil
}

// ConfirmPassword reads a new password twice and checks that both inputs
// are the same.
func ConfirmPassword(prompt string) (string, error) {
	pass, err := ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	again, err := ReadPassword("Confirm password > ")
	if err != nil {
		return "", err
	}
	if pass != again {
		return "", errors.New("the passwords do not match")
	}
	return pass, nil
}
