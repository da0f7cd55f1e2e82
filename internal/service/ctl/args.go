package ctl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errMalformedArg is returned for arguments without a key=value shape.
var errMalformedArg = errors.New("argument must look like key=value")

// ParseArgs converts key=value pairs into bridge arguments. Whole numbers
// and booleans keep their type; everything else stays a string.
func ParseArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, fmt.Errorf("%q: %w", pair, errMalformedArg)
		}

		args[key] = parseValue(value)
	}

	return args, nil
}

func parseValue(value string) any {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return value
}
