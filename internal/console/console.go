// Package console watches standard input for the operator's stop command.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompt is printed at startup and after every unrecognised line.
const Prompt = "Stop to shutdown the server: "

const stopCommand = "stop"

// WaitForStop reads lines from in until one equals "stop" (trimmed,
// case-insensitive) and then returns true. It returns false when in is
// exhausted or fails, in which case the caller keeps running.
func WaitForStop(in io.Reader, out io.Writer) bool {
	fmt.Fprintln(out, Prompt)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), stopCommand) {
			fmt.Fprintln(out, "Shutting down the server")
			return true
		}
		fmt.Fprintln(out, Prompt)
	}
	return false
}
