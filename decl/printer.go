package decl

import (
	"fmt"
	"strings"
)

// CodePrinter writes indented text line by line.  Indentation applies to
// each line as it starts.
type CodePrinter interface {
	Indent(n int)
	Unindent(n int)
	Print(str string)
	Printf(fmt string, args ...any)
	Println(str string)
	String() string
}

// WithIndent runs block with the printer indented by n more levels.
func WithIndent(n int, cp CodePrinter, block func(cp CodePrinter)) {
	cp.Indent(n)
	defer cp.Unindent(n)
	block(cp)
}

type codePrinter struct {
	indent  int
	midLine bool
	out     strings.Builder
}

func NewCodePrinter() CodePrinter {
	return &codePrinter{}
}

func (c *codePrinter) Indent(n int) { c.indent += n }

func (c *codePrinter) Unindent(n int) {
	c.indent = max(c.indent-n, 0)
}

func (c *codePrinter) Print(str string) {
	for i, line := range strings.Split(str, "\n") {
		if i > 0 {
			c.out.WriteByte('\n')
			c.midLine = false
		}
		if line == "" {
			continue
		}
		if !c.midLine {
			c.out.WriteString(strings.Repeat("  ", c.indent))
			c.midLine = true
		}
		c.out.WriteString(line)
	}
}

func (c *codePrinter) Println(str string) { c.Print(str + "\n") }

func (c *codePrinter) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

// String returns everything printed so far, including an unterminated last line.
func (c *codePrinter) String() string { return c.out.String() }

// Sprint renders node with its PrettyPrint method.
func Sprint(node Node) string {
	cp := NewCodePrinter()
	node.PrettyPrint(cp)
	return cp.String()
}
