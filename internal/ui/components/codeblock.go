// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// CODE BLOCK HIGHLIGHTING
// =============================================================================
// Used when markdown rendering is disabled: fenced code in assistant replies
// still gets syntax colors even though the rest of the text stays plain.

// HighlightFences scans text for ``` fences and replaces each block's body
// with a syntax-highlighted rendering. Text outside fences passes through
// untouched. An unterminated fence is left as-is.
func HighlightFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}

	var out strings.Builder
	lines := strings.Split(text, "\n")
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			out.WriteString(line)
			out.WriteByte('\n')
			i++
			continue
		}

		lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
		body, next, closed := collectFence(lines, i+1)
		if !closed {
			// Mid-stream: the closing fence has not arrived yet.
			for ; i < len(lines); i++ {
				out.WriteString(lines[i])
				out.WriteByte('\n')
			}
			break
		}
		out.WriteString(highlight(strings.Join(body, "\n"), lang))
		out.WriteByte('\n')
		i = next
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func collectFence(lines []string, start int) (body []string, next int, closed bool) {
	for j := start; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "```" {
			return lines[start:j], j + 1, true
		}
	}
	return nil, start, false
}

// highlight renders source through chroma for a 256-color terminal. On any
// failure the raw source is returned; highlighting is cosmetic.
func highlight(source, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	style := chromastyles.Get("monokai")
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return source
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
