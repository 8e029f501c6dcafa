package flow

import (
	"strings"

	"github.com/panyam/luaty/decl"
)

// Dump prints the log with labels shown before the instruction they point at
// and one level of indentation per scope depth.
func Dump(pc *PseudoCode, cp decl.CodePrinter) {
	labelsAt := map[int][]string{}
	for _, l := range pc.Labels() {
		if offset, ok := l.Offset(); ok {
			labelsAt[offset] = append(labelsAt[offset], l.Name())
		}
	}
	printLabels := func(offset int) {
		if names, ok := labelsAt[offset]; ok {
			cp.Println(strings.Join(names, ", ") + ":")
		}
	}
	for _, inst := range pc.Instructions() {
		printLabels(inst.Index())
		depth := inst.Scope().Depth()
		decl.WithIndent(depth, cp, func(cp decl.CodePrinter) {
			cp.Println(inst.String())
		})
	}
	printLabels(pc.Len())
}

// String renders the log with Dump.
func (p *PseudoCode) String() string {
	cp := decl.NewCodePrinter()
	Dump(p, cp)
	return cp.String()
}
