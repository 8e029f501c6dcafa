package loader

import (
	"strconv"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/types"
	"gopkg.in/yaml.v3"
)

// syntaxBuilder turns the YAML rendering of a chunk into syntax nodes.
// Declared local types found along the way are recorded by name definition.
type syntaxBuilder struct {
	types    *typeBuilder
	declared map[*decl.NameDef]types.Ty
}

func (s *syntaxBuilder) fail(n *yaml.Node, format string, args ...any) {
	s.types.fail(n, format, args...)
}

func at(n *yaml.Node) decl.NodeInfo {
	return decl.NodeInfo{StartPos: n.Line, StopPos: n.Line}
}

func exprAt(n *yaml.Node) decl.ExprBase { return decl.ExprBase{NodeInfo: at(n)} }
func stmtAt(n *yaml.Node) decl.StmtBase { return decl.StmtBase{NodeInfo: at(n)} }

func (s *syntaxBuilder) chunk(name string, n *yaml.Node) *decl.Chunk {
	if n == nil || n.Kind == 0 {
		return nil
	}
	return &decl.Chunk{NodeInfo: at(n), Name: name, Body: s.block(n)}
}

func (s *syntaxBuilder) block(n *yaml.Node) *decl.Block {
	b := &decl.Block{}
	if n == nil || n.Kind == 0 {
		return b
	}
	b.NodeInfo = at(n)
	items, err := sequence(n)
	if err != nil {
		s.fail(n, "a block is a list of statements")
		return b
	}
	for _, item := range items {
		if st := s.stmt(item); st != nil {
			b.Statements = append(b.Statements, st)
		}
	}
	return b
}

func (s *syntaxBuilder) stmt(n *yaml.Node) decl.Stmt {
	f, err := mappingFields(n)
	if err != nil {
		s.fail(n, "statement: %v", err)
		return nil
	}
	switch {
	case f.has("local"):
		return s.local(n, f)
	case f.has("assign"):
		return &decl.AssignStmt{StmtBase: stmtAt(n), Targets: s.exprs(f.get("assign")), Exprs: s.exprs(f.get("values"))}
	case f.has("do"):
		return &decl.DoStmt{StmtBase: stmtAt(n), Body: s.block(f.get("do"))}
	case f.has("if"):
		st := &decl.IfStmt{StmtBase: stmtAt(n), Cond: s.expr(f.get("if")), Then: s.block(f.get("then"))}
		if f.has("else") {
			st.Else = s.block(f.get("else"))
		}
		return st
	case f.has("expr"):
		return &decl.ExprStmt{StmtBase: stmtAt(n), Expr: s.expr(f.get("expr"))}
	}
	s.fail(n, "unknown statement, expected one of local, assign, do, if, expr")
	return nil
}

func (s *syntaxBuilder) local(n *yaml.Node, f *fields) decl.Stmt {
	st := &decl.LocalStmt{StmtBase: stmtAt(n), Exprs: s.exprs(f.get("values"))}
	names, err := sequence(f.get("local"))
	if err != nil {
		s.fail(n, "local expects a list of names")
		return nil
	}
	declared, err := sequence(f.get("types"))
	if err != nil {
		s.fail(n, "local types expect a list of types")
	}
	for i, nn := range names {
		def := &decl.NameDef{NodeInfo: at(nn), Name: nn.Value}
		st.Names = append(st.Names, def)
		if i < len(declared) {
			if t := s.types.build(declared[i], nil); t != nil {
				s.declared[def] = t
			}
		}
	}
	if len(declared) > len(names) {
		s.fail(n, "%d declared types for %d names", len(declared), len(names))
	}
	return st
}

func (s *syntaxBuilder) exprs(n *yaml.Node) []decl.Expr {
	items, err := sequence(n)
	if err != nil {
		s.fail(n, "expected a list of expressions")
		return nil
	}
	out := make([]decl.Expr, 0, len(items))
	for _, item := range items {
		out = append(out, s.expr(item))
	}
	return out
}

// expr builds one expression.  Plain scalars are names, quoted scalars are
// strings and YAML numbers, booleans and null are literals.
func (s *syntaxBuilder) expr(n *yaml.Node) decl.Expr {
	if n == nil || n.Kind == 0 {
		return nil
	}
	if n.Kind == yaml.AliasNode {
		return s.expr(n.Alias)
	}
	if n.Kind == yaml.ScalarNode {
		return s.scalar(n)
	}
	f, err := mappingFields(n)
	if err != nil {
		s.fail(n, "expression: %v", err)
		return nil
	}
	switch {
	case f.has("binary"):
		parts, err := sequence(f.get("binary"))
		if err != nil || len(parts) != 3 {
			s.fail(n, "binary expects [left, operator, right]")
			return nil
		}
		return &decl.BinaryExpr{ExprBase: exprAt(n), Left: s.expr(parts[0]), Operator: parts[1].Value, Right: s.expr(parts[2])}
	case f.has("unary"):
		parts, err := sequence(f.get("unary"))
		if err != nil || len(parts) != 2 {
			s.fail(n, "unary expects [operator, operand]")
			return nil
		}
		return &decl.UnaryExpr{ExprBase: exprAt(n), Operator: parts[0].Value, Operand: s.expr(parts[1])}
	case f.has("paren"):
		return &decl.ParenExpr{ExprBase: exprAt(n), Inner: s.expr(f.get("paren"))}
	case f.has("call"):
		call := &decl.CallExpr{ExprBase: exprAt(n), Callee: s.expr(f.get("call")), Args: s.exprs(f.get("args"))}
		if m := f.get("method"); m != nil {
			call.Method = m.Value
		}
		return call
	case f.has("index"):
		ix := &decl.IndexExpr{ExprBase: exprAt(n), Prefix: s.expr(f.get("index"))}
		switch {
		case f.has("name"):
			ix.Name = f.get("name").Value
		case f.has("key"):
			ix.Key = s.expr(f.get("key"))
		default:
			s.fail(n, "index expects a name or a key")
		}
		return ix
	case f.has("table"):
		return s.table(n, f.get("table"))
	case f.has("function"):
		return s.function(n, f.get("function"))
	case f.has("string"):
		return &decl.LiteralExpr{ExprBase: exprAt(n), Kind: decl.LiteralString, Str: f.get("string").Value}
	}
	s.fail(n, "unknown expression form")
	return nil
}

func (s *syntaxBuilder) scalar(n *yaml.Node) decl.Expr {
	lit := &decl.LiteralExpr{ExprBase: exprAt(n)}
	switch n.ShortTag() {
	case "!!null":
		lit.Kind = decl.LiteralNil
		return lit
	case "!!bool":
		lit.Kind, lit.Bool = decl.LiteralBool, n.Value == "true"
		return lit
	case "!!int", "!!float":
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			s.fail(n, "bad number %q", n.Value)
			return nil
		}
		lit.Kind, lit.Number = decl.LiteralNumber, v
		return lit
	}
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		lit.Kind, lit.Str = decl.LiteralString, n.Value
		return lit
	}
	if n.Value == "..." {
		lit.Kind = decl.LiteralVarargs
		return lit
	}
	return &decl.NameExpr{ExprBase: exprAt(n), Name: n.Value}
}

// table builds a constructor.  Items with a value key are keyed fields and
// anything else is positional.
func (s *syntaxBuilder) table(n *yaml.Node, items *yaml.Node) decl.Expr {
	t := &decl.TableExpr{ExprBase: exprAt(n)}
	list, err := sequence(items)
	if err != nil {
		s.fail(n, "table expects a list of fields")
		return t
	}
	for _, item := range list {
		if item.Kind == yaml.MappingNode {
			if f, err := mappingFields(item); err == nil && f.has("value") {
				field := &decl.TableField{Value: s.expr(f.get("value"))}
				if name := f.get("name"); name != nil {
					field.Name = name.Value
				} else {
					field.Key = s.expr(f.get("key"))
				}
				t.Fields = append(t.Fields, field)
				continue
			}
		}
		t.Fields = append(t.Fields, &decl.TableField{Value: s.expr(item)})
	}
	return t
}

func (s *syntaxBuilder) function(n *yaml.Node, body *yaml.Node) decl.Expr {
	fn := &decl.FunctionExpr{ExprBase: exprAt(n)}
	f, err := mappingFields(body)
	if err != nil {
		s.fail(n, "function: %v", err)
		return fn
	}
	params, err := sequence(f.get("params"))
	if err != nil {
		s.fail(n, "function params expect a list of names")
	}
	for _, p := range params {
		if p.Value == "..." {
			fn.Variadic = true
			continue
		}
		fn.Params = append(fn.Params, &decl.NameDef{NodeInfo: at(p), Name: p.Value})
	}
	fn.Body = s.block(f.get("body"))
	return fn
}
