// Package cliargs supplies default command line arguments from the
// environment. Slicers run post-processing scripts with a fixed command
// line; SPP_OPTS lets the user add flags without editing the profile.
package cliargs

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// EnvOpts holds default arguments, split like a POSIX shell would.
const EnvOpts = "SPP_OPTS"

var (
	// ErrUnclosedQuote is returned when a quoted string is not properly closed
	ErrUnclosedQuote = errors.New("unclosed quote in SPP_OPTS")

	// ErrTrailingEscape is returned when a backslash ends the input
	ErrTrailingEscape = errors.New("trailing escape character in SPP_OPTS")
)

// legacyShort maps the multi-letter single-dash options slicer profiles
// still carry to their long form.
var legacyShort = map[string]string{
	"-cwt": "--cwt",
	"-ost": "--ost",
}

// Expand returns the words of opts followed by args. Explicit arguments
// come last so they override the defaults. Legacy single-dash options are
// rewritten up to a "--" terminator.
func Expand(opts string, args []string) ([]string, error) {
	words, err := Split(opts)
	if err != nil {
		return nil, err
	}
	words = append(words, args...)
	for i, w := range words {
		if w == "--" {
			break
		}
		if long, ok := legacyShort[w]; ok {
			words[i] = long
		}
	}
	return words, nil
}

// Split parses s into words.
//
//   - Words are separated by unquoted whitespace
//   - Single quotes preserve everything literally
//   - Inside double quotes a backslash escapes only " \ $ and `
//   - Outside quotes a backslash escapes any character
//   - "" and '' produce an empty word
func Split(s string) ([]string, error) {
	words := []string{}
	var (
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range s {
		switch {
		case escaped:
			if quote == '"' && !strings.ContainsRune("\"\\$`", r) {
				word.WriteRune('\\')
			}
			word.WriteRune(r)
			escaped = false

		case r == '\\' && quote != '\'':
			escaped, inWord = true, true

		case quote != 0 && r == quote:
			quote = 0

		case quote != 0:
			word.WriteRune(r)

		case r == '\'' || r == '"':
			quote, inWord = r, true

		case unicode.IsSpace(r):
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}

		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	if escaped {
		return nil, ErrTrailingEscape
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: %c", ErrUnclosedQuote, quote)
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}

// Join renders args for a log line, single-quoting words that need it.
func Join(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch {
		case a == "":
			parts[i] = "''"
		case strings.ContainsAny(a, " \t\n'\"\\$`"):
			parts[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		default:
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
