package flow

import (
	"fmt"
	"slices"

	"github.com/panyam/luaty/decl"
)

// Scope mirrors one block of the source while its instructions are emitted.
type Scope struct {
	parent *Scope
	depth  int
	block  *decl.Block
}

func (s *Scope) Parent() *Scope     { return s.parent }
func (s *Scope) Depth() int         { return s.depth }
func (s *Scope) Block() *decl.Block { return s.block }
func (s *Scope) String() string     { return fmt.Sprintf("scope#%d", s.depth) }

// Label names an instruction offset that may be bound after it is referenced.
type Label struct {
	name   string
	owner  *PseudoCode
	offset int
	bound  bool
}

// Offset returns the bound offset, or false while the label is still pending.
func (l *Label) Offset() (int, bool) {
	return l.offset, l.bound
}

func (l *Label) Name() string   { return l.name }
func (l *Label) String() string { return l.name }

// Jump is a pair of labels allocated together, typically the start of an
// alternate branch and the end of the whole construct.
type Jump struct {
	Start *Label
	End   *Label
}

type labelGen struct {
	counter int
}

func (g *labelGen) next() string {
	name := fmt.Sprintf("L%d", g.counter)
	g.counter++
	return name
}

// PseudoCode is an append-only instruction log for one function body or chunk.
type PseudoCode struct {
	parent       *PseudoCode
	instructions []*Instruction
	labels       []*Label
	labelGen     labelGen
	scopes       []*Scope // stack of active scopes
	allScopes    []*Scope
}

// NewPseudoCode creates an empty unit.  parent is the enclosing unit for nested functions.
func NewPseudoCode(parent *PseudoCode) *PseudoCode {
	return &PseudoCode{parent: parent}
}

func (p *PseudoCode) Parent() *PseudoCode { return p.parent }
func (p *PseudoCode) Len() int            { return len(p.instructions) }

// Instruction returns the i-th instruction of the log.
func (p *PseudoCode) Instruction(i int) *Instruction { return p.instructions[i] }

// Instructions returns a copy of the log.
func (p *PseudoCode) Instructions() []*Instruction { return slices.Clone(p.instructions) }

// Labels returns a copy of every label created so far.
func (p *PseudoCode) Labels() []*Label { return slices.Clone(p.labels) }

// Scopes returns every scope entered so far, in entry order.
func (p *PseudoCode) Scopes() []*Scope { return slices.Clone(p.allScopes) }

// CurrentScope returns the innermost active scope or nil.
func (p *PseudoCode) CurrentScope() *Scope {
	if len(p.scopes) == 0 {
		return nil
	}
	return p.scopes[len(p.scopes)-1]
}

func (p *PseudoCode) EnterScope(block *decl.Block) *Scope {
	parent := p.CurrentScope()
	depth := 1
	if parent != nil {
		depth = parent.depth + 1
	}
	scope := &Scope{parent: parent, depth: depth, block: block}
	p.scopes = append(p.scopes, scope)
	p.allScopes = append(p.allScopes, scope)
	return scope
}

func (p *PseudoCode) ExitScope(block *decl.Block) {
	top := p.CurrentScope()
	if top == nil {
		panic("ExitScope called with no active scope")
	}
	if top.block != block {
		panic(fmt.Sprintf("ExitScope block mismatch at depth %d", top.depth))
	}
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// AddInstruction appends the instruction described by op.  Its index, owner
// and scope are fixed here and never change.
func (p *PseudoCode) AddInstruction(op Op) {
	scope := p.CurrentScope()
	if scope == nil {
		panic("AddInstruction called with no active scope")
	}
	if op.kind == OpGoto || op.kind == OpConditionalGoto {
		if op.label == nil || op.label.owner != p {
			panic(fmt.Sprintf("%s needs a label created by this unit", op.kind))
		}
	}
	p.instructions = append(p.instructions, &Instruction{
		op:    op,
		index: len(p.instructions),
		owner: p,
		scope: scope,
	})
}

// CreateJump allocates two fresh labels.
func (p *PseudoCode) CreateJump() Jump {
	return Jump{Start: p.newLabel(), End: p.newLabel()}
}

func (p *PseudoCode) newLabel() *Label {
	l := &Label{name: p.labelGen.next(), owner: p}
	p.labels = append(p.labels, l)
	return l
}

// BindLabel points label at the next instruction to be appended.
func (p *PseudoCode) BindLabel(label *Label) {
	if label.owner != p {
		panic(fmt.Sprintf("label %s belongs to another unit", label.name))
	}
	if label.bound {
		panic(fmt.Sprintf("label %s is already bound at %d", label.name, label.offset))
	}
	label.offset = len(p.instructions)
	label.bound = true
}
