package generate

import (
	"strings"

	"github.com/apparentlymart/go-textseg/v15/textseg"

	"github.com/jsvensson/tokentest/internal/tokens"
)

// DisplayName converts a kebab-case short name to its display form by
// upper-casing the first character of every hyphen-delimited word:
// "profile-img" becomes "ProfileImg".
func DisplayName(short string) string {
	var b strings.Builder
	for _, word := range strings.Split(short, "-") {
		b.WriteString(capitalize(word))
	}
	return b.String()
}

// capitalize upper-cases the first grapheme cluster of word so combining
// marks stay attached to their base character.
func capitalize(word string) string {
	if word == "" {
		return ""
	}
	advance, first, err := textseg.ScanGraphemeClusters([]byte(word), true)
	if err != nil || advance == 0 {
		return word
	}
	return strings.ToUpper(string(first)) + word[advance:]
}

// Identity names one node for generation.
type Identity struct {
	Key         string
	ShortName   string
	DisplayName string
	// Frame adds the debug-mode visible-name assertion.
	Frame bool
}

// NewIdentity derives the identity of the node stored under key.
func NewIdentity(key string, n *tokens.Node) Identity {
	short := tokens.ShortName(key)
	return Identity{
		Key:         key,
		ShortName:   short,
		DisplayName: DisplayName(short),
		Frame:       n.IsFrame(),
	}
}
