package visualizer

import (
	"regexp"
	"strings"
)

// CodeBlock is a fenced code block taken from a model response.
type CodeBlock struct {
	Language string
	Code     string
}

// CodeBlockParser finds fenced blocks tagged with a single language.
type CodeBlockParser struct {
	language string
	pattern  *regexp.Regexp
}

// NewCodeBlockParser creates a parser for ```<language> blocks.
func NewCodeBlockParser(language string) *CodeBlockParser {
	return &CodeBlockParser{
		language: language,
		pattern:  regexp.MustCompile("(?s)```" + regexp.QuoteMeta(language) + `\r?\n(.*?)\r?\n` + "```"),
	}
}

// Extract returns the first matching block, or false when the text has none
// or the block is blank.
func (p *CodeBlockParser) Extract(text string) (CodeBlock, bool) {
	match := p.pattern.FindStringSubmatch(text)
	if match == nil || strings.TrimSpace(match[1]) == "" {
		return CodeBlock{}, false
	}
	return CodeBlock{Language: p.language, Code: match[1]}, true
}
