// Package htmlmd converts residual HTML markup to markdown.
//
// Layout analysis output is mostly markdown with fragments of HTML (tables,
// figures, emphasis). Text outside tags is kept verbatim so that markdown
// already present survives conversion, and input without markup is returned
// unchanged.
package htmlmd

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	markupPattern = regexp.MustCompile(`<(?:!--|/?[a-zA-Z][a-zA-Z0-9]*(?:\s[^>]*)?/?>)`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
)

// HasMarkup reports whether s contains an HTML tag or comment.
func HasMarkup(s string) bool {
	return markupPattern.MatchString(s)
}

type listState struct {
	ordered bool
	n       int
}

type tableState struct {
	rows   int
	cells  int
	header bool
	inCell bool
}

type converter struct {
	out   strings.Builder
	skip  int
	pre   int
	lists []listState
	links []string
	table tableState
}

// Convert returns the markdown rendering of s.
// On a tokenizer failure the input is returned together with the error.
func Convert(s string) (string, error) {
	if !HasMarkup(s) {
		return s, nil
	}

	c := &converter{}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return c.result(), nil
			}
			return s, fmt.Errorf("htmlmd: %w", z.Err())
		case html.TextToken:
			if c.skip == 0 {
				c.text(string(z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			attrs := make(map[string]string)
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				attrs[string(key)] = string(val)
			}
			c.start(string(name), attrs)
		case html.EndTagToken:
			name, _ := z.TagName()
			c.end(string(name))
		}
	}
}

func (c *converter) write(s string) {
	c.out.WriteString(s)
}

// block ensures the output ends with a blank line.
func (c *converter) block() {
	s := c.out.String()
	if s == "" {
		return
	}
	switch {
	case strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		c.write("\n")
	default:
		c.write("\n\n")
	}
}

// newline ensures the output ends with a line break.
func (c *converter) newline() {
	s := c.out.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		c.write("\n")
	}
}

// text writes decoded character data. Decoded text that reads as markup,
// such as "&lt;b&gt;", keeps its "<" escaped so the output stays free of tags.
func (c *converter) text(t string) {
	if HasMarkup(t) {
		t = strings.ReplaceAll(t, "<", "&lt;")
	}
	if c.table.inCell {
		t = strings.Join(strings.Fields(t), " ")
		if t != "" {
			c.write(t)
		}
		return
	}
	if c.pre == 0 && strings.TrimSpace(t) == "" {
		s := c.out.String()
		if s == "" || strings.HasSuffix(s, "\n") {
			return
		}
	}
	c.write(t)
}

func headingLevel(name string) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}

func (c *converter) start(name string, attrs map[string]string) {
	if n := headingLevel(name); n > 0 {
		c.block()
		c.write(strings.Repeat("#", n) + " ")
		return
	}

	switch name {
	case "script", "style", "head", "title", "noscript":
		c.skip++
	case "p", "div", "section", "article", "header", "footer", "figure":
		c.block()
	case "blockquote":
		c.block()
		c.write("> ")
	case "br":
		if c.table.inCell {
			c.write(" ")
		} else {
			c.write("\n")
		}
	case "hr":
		c.block()
		c.write("---")
		c.block()
	case "ul", "ol":
		c.newline()
		c.lists = append(c.lists, listState{ordered: name == "ol"})
	case "li":
		c.newline()
		depth := len(c.lists)
		if depth == 0 {
			c.write("- ")
			return
		}
		c.write(strings.Repeat("  ", depth-1))
		l := &c.lists[depth-1]
		if l.ordered {
			l.n++
			c.write(fmt.Sprintf("%d. ", l.n))
		} else {
			c.write("- ")
		}
	case "strong", "b":
		c.write("**")
	case "em", "i":
		c.write("*")
	case "code":
		if c.pre == 0 {
			c.write("`")
		}
	case "pre":
		c.block()
		c.write("```\n")
		c.pre++
	case "a":
		c.links = append(c.links, attrs["href"])
		c.write("[")
	case "img":
		if alt := attrs["alt"]; alt != "" {
			c.write(fmt.Sprintf("![%s](%s)", alt, attrs["src"]))
		}
	case "table":
		c.block()
		c.table = tableState{}
	case "tr":
		c.newline()
		c.write("|")
		c.table.cells = 0
	case "th":
		c.table.header = true
		c.table.inCell = true
		c.write(" ")
	case "td":
		c.table.inCell = true
		c.write(" ")
	}
}

func (c *converter) end(name string) {
	if headingLevel(name) > 0 {
		c.block()
		return
	}

	switch name {
	case "script", "style", "head", "title", "noscript":
		if c.skip > 0 {
			c.skip--
		}
	case "p", "div", "section", "article", "header", "footer", "figure", "blockquote":
		c.block()
	case "ul", "ol":
		if len(c.lists) > 0 {
			c.lists = c.lists[:len(c.lists)-1]
		}
		if len(c.lists) == 0 {
			c.block()
		} else {
			c.newline()
		}
	case "strong", "b":
		c.write("**")
	case "em", "i":
		c.write("*")
	case "code":
		if c.pre == 0 {
			c.write("`")
		}
	case "pre":
		if c.pre > 0 {
			c.pre--
		}
		c.newline()
		c.write("```")
		c.block()
	case "a":
		href := ""
		if n := len(c.links); n > 0 {
			href = c.links[n-1]
			c.links = c.links[:n-1]
		}
		if href == "" {
			c.write("]")
		} else {
			c.write("](" + href + ")")
		}
	case "th", "td":
		c.write(" |")
		c.table.inCell = false
		c.table.cells++
	case "tr":
		if c.table.header && c.table.rows == 0 {
			c.write("\n|" + strings.Repeat(" --- |", c.table.cells))
		}
		c.table.header = false
		c.table.rows++
	case "table":
		c.table = tableState{}
		c.block()
	}
}

func (c *converter) result() string {
	lines := strings.Split(c.out.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}
