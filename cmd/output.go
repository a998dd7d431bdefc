package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

const ruleWidth = 72

func rule() string {
	return strings.Repeat("─", ruleWidth)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// readAnswers loads a JSON array of answers from path, or stdin for "-".
func readAnswers(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse answers: %w", err)
	}
	return nil
}
