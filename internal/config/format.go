package config

import (
	"regexp"

	"github.com/hashicorp/hcl/v2/hclwrite"
)

var (
	multipleBlankLines        = regexp.MustCompile(`\n{3,}`)
	blankLineAfterOpenBrace   = regexp.MustCompile(`\{\n\s*\n`)
	blankLineBeforeCloseBrace = regexp.MustCompile(`\n\s*\n(\s*\})`)
)

// Format returns project file source in canonical HCL style. Runs of blank
// lines collapse to one and blocks never open or close on a blank line.
//
// Partial or invalid input is formatted as far as possible and never fails,
// so editors can format while typing.
func Format(content string) (string, error) {
	formatted := string(hclwrite.Format([]byte(content)))
	formatted = multipleBlankLines.ReplaceAllString(formatted, "\n\n")
	formatted = blankLineAfterOpenBrace.ReplaceAllString(formatted, "{\n")
	formatted = blankLineBeforeCloseBrace.ReplaceAllString(formatted, "\n${1}")
	return formatted, nil
}

// IsFormatted reports whether content is already in canonical style.
func IsFormatted(content string) bool {
	formatted, err := Format(content)
	return err == nil && formatted == content
}
