package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptAPIKey asks the user for their OpenWeatherMap API key. The caller is
// responsible for only calling this when stdin is a terminal. Returns an
// empty string when the user provides nothing.
func PromptAPIKey(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter your OpenWeatherMap API key: ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read API key: %w", err)
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}
