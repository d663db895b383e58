package chain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Separators of the plugin argument grammar.
const (
	TokenSeparator  = ";"
	PresetSeparator = ","
)

// ErrMalformedToken is returned for plugin tokens that cannot be parsed.
var ErrMalformedToken = errors.New("malformed plugin token")

// Token is one parsed "name[,preset]" entry.
type Token struct {
	// Name is the plugin name, possibly with a sub-plugin selector.
	Name string
	// Preset is the preset file name exactly as given, or empty.
	Preset string
}

// String renders the token in argument form.
func (t Token) String() string {
	if t.Preset == "" {
		return t.Name
	}

	return t.Name + PresetSeparator + t.Preset
}

// ParseToken parses "name[,preset]". The name is split off at the first comma and
// trimmed. The preset is kept verbatim, embedded spaces included.
func ParseToken(s string) (Token, error) {
	name, presetName, hasPreset := strings.Cut(s, PresetSeparator)

	name = strings.TrimSpace(name)
	if name == "" {
		return Token{}, errors.Wrapf(ErrMalformedToken, "%q has no plugin name", s)
	}

	if hasPreset && strings.TrimSpace(presetName) == "" {
		return Token{}, errors.Wrapf(ErrMalformedToken, "%q has an empty preset", s)
	}

	return Token{Name: name, Preset: presetName}, nil
}

// ParseArgument parses a ';' separated list of tokens. Empty entries are skipped.
// Every malformed token is reported; the valid ones are still returned.
func ParseArgument(arg string) ([]Token, error) {
	var (
		tokens []Token
		errs   error
	)

	for _, part := range strings.Split(arg, TokenSeparator) {
		if strings.TrimSpace(part) == "" {
			continue
		}

		token, err := ParseToken(part)
		if err != nil {
			errs = errors.CombineErrors(errs, err)

			continue
		}

		tokens = append(tokens, token)
	}

	if len(tokens) == 0 && errs == nil {
		return nil, errors.Wrap(ErrMalformedToken, "no plugins given")
	}

	return tokens, errs
}
