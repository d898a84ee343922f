package controller

import (
	"errors"
	"fmt"
)

// Format is the rendering of findings on stdout.
type Format string

// Available formats.
const (
	// FormatText prints one defective path per line.
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported values.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatTable, FormatJSON, FormatYAML}

// ParseFormat converts a configuration value into a Format.
func ParseFormat(value string) (Format, error) {
	for _, f := range Formats {
		if string(f) == value {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
}
