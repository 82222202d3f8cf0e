package world

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"codetree/internal/logging"
	"codetree/internal/types"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python tree-sitter node types used by the classifier.
const (
	pyFunctionDefinition      = "function_definition"
	pyAsyncFunctionDefinition = "async_function_definition"
	pyClassDefinition         = "class_definition"
	pyDecoratedDefinition     = "decorated_definition"
	pyIfStatement             = "if_statement"
	pyForStatement            = "for_statement"
	pyWhileStatement          = "while_statement"
	pyWithStatement           = "with_statement"
	pyTryStatement            = "try_statement"
	pyElifClause              = "elif_clause"
	pyElseClause              = "else_clause"
	pyExceptClause            = "except_clause"
	pyExceptGroupClause       = "except_group_clause"
	pyFinallyClause           = "finally_clause"
	pyMatchStatement          = "match_statement"
	pyCaseClause              = "case_clause"
	pyExpressionStatement     = "expression_statement"
	pyAssignment              = "assignment"
	pyAugmentedAssignment     = "augmented_assignment"
	pyString                  = "string"
	pyConcatenatedString      = "concatenated_string"
	pyComment                 = "comment"
	pyBlock                   = "block"
)

var comprehensionTypes = map[string]bool{
	"list_comprehension":       true,
	"set_comprehension":        true,
	"dictionary_comprehension": true,
	"generator_expression":     true,
}

var controlFlowTypes = map[string]bool{
	pyIfStatement:    true,
	pyForStatement:   true,
	pyWhileStatement: true,
	pyWithStatement:  true,
	pyTryStatement:   true,
}

var satelliteKinds = map[string]types.NodeKind{
	pyElifClause:        types.KindElif,
	pyElseClause:        types.KindElse,
	pyExceptClause:      types.KindExcept,
	pyExceptGroupClause: types.KindExcept,
	pyFinallyClause:     types.KindFinally,
}

// PythonParser implements SourceParser for Python source files.
// It uses Tree-sitter for accurate, span-preserving parsing.
type PythonParser struct {
	parser *sitter.Parser
}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *PythonParser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &PythonParser{parser: parser}
}

// Close releases the underlying tree-sitter parser.
func (p *PythonParser) Close() {
	p.parser.Close()
}

// Language returns "py".
func (p *PythonParser) Language() string {
	return "py"
}

// SupportedExtensions returns [".py", ".pyi"].
func (p *PythonParser) SupportedExtensions() []string {
	return []string{".py", ".pyi"}
}

// Parse classifies the top-level statements of a Python module.
func (p *PythonParser) Parse(ctx context.Context, content []byte) ([]*Construct, error) {
	start := time.Now()

	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		serr := firstSyntaxError(root, content)
		logging.ParseDebug("PythonParser: rejected %d bytes: %v", len(content), serr)
		return nil, serr
	}

	c := &classifier{src: content}
	constructs := c.block(root)

	logging.ParseDebug("PythonParser: parsed %d bytes into %d constructs in %v",
		len(content), len(constructs), time.Since(start))
	return constructs, nil
}

// firstSyntaxError locates the first ERROR or MISSING node in document order.
func firstSyntaxError(root *sitter.Node, src []byte) *SyntaxError {
	var found *sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)

	if found == nil {
		return &SyntaxError{Line: 1, Column: 1}
	}
	pt := found.StartPoint()
	near := strings.TrimSpace(firstLine(string(src[found.StartByte():found.EndByte()])))
	if found.IsMissing() {
		near = "missing " + found.Type()
	}
	if len(near) > 40 {
		near = near[:40]
	}
	return &SyntaxError{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1, Near: near}
}

// classifier maps tree-sitter nodes to Constructs. Classification is total:
// anything not recognised becomes a Statement.
type classifier struct {
	src []byte
}

func (c *classifier) text(n *sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

// span returns the source between two byte offsets with trailing whitespace removed.
func (c *classifier) span(from, to uint32) string {
	return strings.TrimRightFunc(string(c.src[from:to]), unicode.IsSpace)
}

// lineStart returns the offset of the first byte of the line containing off.
func (c *classifier) lineStart(off int) int {
	for off > 0 && c.src[off-1] != '\n' {
		off--
	}
	return off
}

// indentOf returns the leading whitespace of the line on which n starts.
func (c *classifier) indentOf(n *sitter.Node) string {
	ls := c.lineStart(int(n.StartByte()))
	end := ls
	for end < len(c.src) && (c.src[end] == ' ' || c.src[end] == '\t') {
		end++
	}
	return string(c.src[ls:end])
}

// gapBefore counts blank lines directly above the line on which n starts.
func (c *classifier) gapBefore(n *sitter.Node) int {
	ls := c.lineStart(int(n.StartByte()))
	gap := 0
	for ls > 0 && gap < 2 {
		prev := c.lineStart(ls - 1)
		if strings.TrimSpace(string(c.src[prev:ls-1])) != "" {
			break
		}
		gap++
		ls = prev
	}
	return gap
}

func (c *classifier) base(n *sitter.Node, kind types.NodeKind) *Construct {
	return &Construct{
		Kind:      kind,
		Text:      c.text(n),
		Indent:    c.indentOf(n),
		Gap:       c.gapBefore(n),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

// block classifies the named children of a module or block node. A comment
// that trails a simple statement on the same line is folded into it.
func (c *classifier) block(n *sitter.Node) []*Construct {
	var out []*Construct
	var prevEnd uint32
	var prevRow uint32
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == pyComment && len(out) > 0 && child.StartPoint().Row == prevRow {
			last := out[len(out)-1]
			if last.Kind == types.KindStatement || last.Kind == types.KindComprehension {
				last.Text += string(c.src[prevEnd:child.EndByte()])
				prevEnd = child.EndByte()
				continue
			}
		}
		out = append(out, c.construct(child))
		prevEnd = child.EndByte()
		prevRow = child.EndPoint().Row
	}
	return out
}

func (c *classifier) construct(n *sitter.Node) *Construct {
	switch t := n.Type(); {
	case t == pyFunctionDefinition || t == pyAsyncFunctionDefinition:
		return c.compound(n, n, functionKind(n))
	case t == pyClassDefinition:
		return c.compound(n, n, types.KindClass)
	case t == pyDecoratedDefinition:
		def := n.ChildByFieldName("definition")
		if def == nil {
			return c.base(n, types.KindStatement)
		}
		kind := types.KindClass
		if def.Type() != pyClassDefinition {
			kind = functionKind(def)
		}
		return c.compound(n, def, kind)
	case controlFlowTypes[t]:
		return c.controlFlow(n)
	case t == pyMatchStatement:
		return c.match(n)
	case t == pyCaseClause:
		return c.compound(n, n, types.KindCase)
	case t == pyExpressionStatement:
		return c.expression(n)
	default:
		return c.base(n, types.KindStatement)
	}
}

func functionKind(def *sitter.Node) types.NodeKind {
	if def.Type() == pyAsyncFunctionDefinition {
		return types.KindAsyncFunction
	}
	if first := def.Child(0); first != nil && first.Type() == "async" {
		return types.KindAsyncFunction
	}
	return types.KindFunction
}

// bodyOf finds the block that holds a compound node's statements.
func bodyOf(n *sitter.Node) *sitter.Node {
	for _, field := range []string{"body", "consequence"} {
		if b := n.ChildByFieldName(field); b != nil {
			return b
		}
	}
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		if child := n.NamedChild(i); child.Type() == pyBlock {
			return child
		}
	}
	return nil
}

// compound builds a header+body construct. outer supplies the span (it may
// be a decorated_definition); owner supplies the name and body.
func (c *classifier) compound(outer, owner *sitter.Node, kind types.NodeKind) *Construct {
	body := bodyOf(owner)
	if body == nil {
		return c.base(outer, types.KindStatement)
	}
	con := c.base(outer, kind)
	con.Header = c.span(outer.StartByte(), body.StartByte())
	if name := owner.ChildByFieldName("name"); name != nil {
		con.Name = c.text(name)
	}
	con.Children = append(c.block(body), c.commentsAfter(owner, body)...)
	return con
}

// commentsAfter returns the comments attached to n itself that follow its
// body block, as Statements. Comments before the block are part of the header.
func (c *classifier) commentsAfter(n, body *sitter.Node) []*Construct {
	var out []*Construct
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == pyComment && child.StartByte() >= body.EndByte() {
			out = append(out, c.base(child, types.KindStatement))
		}
	}
	return out
}

// controlFlow builds an if/for/while/with/try construct. Its satellite
// clauses follow the body as children. Comments between two clauses open
// the header of the clause below them; comments after the last clause join
// that clause's body.
func (c *classifier) controlFlow(n *sitter.Node) *Construct {
	body := bodyOf(n)
	if body == nil {
		return c.base(n, types.KindStatement)
	}
	con := c.base(n, types.KindControlFlow)
	con.Header = c.span(n.StartByte(), body.StartByte())
	con.Children = c.block(body)

	var lead []*sitter.Node
	last := con
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.StartByte() < body.EndByte() {
			continue
		}
		if child.Type() == pyComment {
			lead = append(lead, child)
			continue
		}
		kind, ok := satelliteKinds[child.Type()]
		if !ok {
			continue
		}
		var first *sitter.Node
		if len(lead) > 0 {
			first = lead[0]
		}
		last = c.satellite(child, kind, first)
		con.Children = append(con.Children, last)
		lead = nil
	}
	for _, cm := range lead {
		last.Children = append(last.Children, c.base(cm, types.KindStatement))
	}
	return con
}

// satellite builds a clause construct. When lead is set, the clause's span
// and header start at that comment instead of at the clause keyword.
func (c *classifier) satellite(n *sitter.Node, kind types.NodeKind, lead *sitter.Node) *Construct {
	sat := c.compound(n, n, kind)
	body := bodyOf(n)
	if lead == nil || body == nil {
		return sat
	}
	sat.Header = c.span(lead.StartByte(), body.StartByte())
	sat.Text = string(c.src[lead.StartByte():n.EndByte()])
	sat.Gap = c.gapBefore(lead)
	sat.StartLine = int(lead.StartPoint().Row) + 1
	return sat
}

func (c *classifier) match(n *sitter.Node) *Construct {
	con := c.base(n, types.KindMatch)

	if body := n.ChildByFieldName("body"); body != nil {
		con.Header = c.span(n.StartByte(), body.StartByte())
		con.Children = c.block(body)
		return con
	}

	// Grammar variants without a body field list case clauses directly.
	headerEnd := n.EndByte()
	cases := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == pyComment && cases > 0 {
			con.Children = append(con.Children, c.base(child, types.KindStatement))
			continue
		}
		if child.Type() != pyCaseClause {
			continue
		}
		cases++
		if child.StartByte() < headerEnd {
			headerEnd = child.StartByte()
		}
		con.Children = append(con.Children, c.compound(child, child, types.KindCase))
	}
	if cases == 0 {
		return c.base(n, types.KindStatement)
	}
	con.Header = c.span(n.StartByte(), headerEnd)
	return con
}

// expression classifies an expression statement as a string literal, a
// comprehension, or a plain statement.
func (c *classifier) expression(n *sitter.Node) *Construct {
	if n.NamedChildCount() != 1 {
		return c.base(n, types.KindStatement)
	}
	value := n.NamedChild(0)
	switch value.Type() {
	case pyString, pyConcatenatedString:
		return c.base(n, types.KindString)
	case pyAssignment, pyAugmentedAssignment:
		if right := value.ChildByFieldName("right"); right != nil && comprehensionTypes[right.Type()] {
			return c.base(n, types.KindComprehension)
		}
	default:
		if comprehensionTypes[value.Type()] {
			return c.base(n, types.KindComprehension)
		}
	}
	return c.base(n, types.KindStatement)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
