package parser

import (
	"fmt"
	"strings"
	"time"

	"inspector/internal/core/errors"
	"inspector/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// Parser turns PHP source text into a SyntaxTree of top-level declarations.
// It keeps no per-file state and is safe for concurrent use.
type Parser struct {
	pool *parserPool
}

func NewParser() *Parser {
	lang := sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	return &Parser{pool: newParserPool(lang)}
}

// Parse fails with *errors.SyntaxError when the text contains any error or
// missing node.
func (p *Parser) Parse(file string, content []byte) (*SyntaxTree, error) {
	start := time.Now()
	defer func() {
		observability.ParsingDuration.Observe(time.Since(start).Seconds())
	}()

	sp, err := p.pool.acquire()
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "acquire php parser"), errors.CtxPath, file)
	}
	defer p.pool.release(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, file)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		bad := firstErrorNode(root)
		if bad == nil {
			bad = root
		}
		return nil, &errors.SyntaxError{
			File:    file,
			Line:    int(bad.StartPosition().Row) + 1,
			Message: describeError(bad, content),
		}
	}

	b := &treeBuilder{source: content}
	return &SyntaxTree{Nodes: b.program(root)}, nil
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if bad := firstErrorNode(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func describeError(node *sitter.Node, source []byte) string {
	if node.IsMissing() {
		return fmt.Sprintf("missing %s", node.Kind())
	}
	text := strings.TrimSpace(string(source[node.StartByte():node.EndByte()]))
	if len(text) > 24 {
		text = text[:24] + "..."
	}
	if text == "" {
		return "unexpected end of input"
	}
	return fmt.Sprintf("unexpected %q", text)
}

type treeBuilder struct {
	source []byte
}

func (b *treeBuilder) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(b.source[node.StartByte():node.EndByte()])
}

func line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// program converts the root node. `namespace X;` statements own every
// following sibling up to the next namespace definition, mirroring the
// braced form.
func (b *treeBuilder) program(root *sitter.Node) []Node {
	var out []Node
	var open *NamespaceDecl

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		switch child.Kind() {
		case "php_tag", "comment":
			continue
		case "namespace_definition":
			ns := b.namespace(child)
			out = append(out, ns)
			if child.ChildByFieldName("body") == nil {
				open = ns
			} else {
				open = nil
			}
			continue
		}

		node := b.statement(child)
		if open != nil {
			open.Body = append(open.Body, node)
		} else {
			out = append(out, node)
		}
	}
	return out
}

func (b *treeBuilder) statement(node *sitter.Node) Node {
	switch node.Kind() {
	case "class_declaration":
		return b.class(node)
	case "namespace_use_declaration":
		return b.use(node)
	default:
		return &OtherDecl{Type: node.Kind(), Line: line(node)}
	}
}

func (b *treeBuilder) namespace(node *sitter.Node) *NamespaceDecl {
	ns := &NamespaceDecl{
		Name: normalizeName(b.text(node.ChildByFieldName("name"))),
		Line: line(node),
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return ns
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		ns.Body = append(ns.Body, b.statement(child))
	}
	return ns
}

func (b *treeBuilder) class(node *sitter.Node) *ClassDecl {
	decl := &ClassDecl{
		Name: b.text(node.ChildByFieldName("name")),
		Line: line(node),
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "base_clause":
			if names := b.names(child); len(names) > 0 {
				decl.Extends = names[0]
			}
		case "class_interface_clause":
			decl.Implements = append(decl.Implements, b.names(child)...)
		}
	}
	return decl
}

func (b *treeBuilder) names(node *sitter.Node) []string {
	var out []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "name", "qualified_name", "namespace_name":
			out = append(out, strings.Join(strings.Fields(b.text(child)), ""))
		}
	}
	return out
}

func (b *treeBuilder) use(node *sitter.Node) *UseDecl {
	decl := &UseDecl{Line: line(node)}
	prefix := ""

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "namespace_use_clause":
			if clause, ok := b.useClause(child, ""); ok {
				decl.Clauses = append(decl.Clauses, clause)
			}
		case "namespace_name", "qualified_name":
			prefix = normalizeName(b.text(child))
		case "namespace_use_group":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				member := child.NamedChild(j)
				switch member.Kind() {
				case "namespace_use_clause", "namespace_use_group_clause":
					if clause, ok := b.useClause(member, prefix); ok {
						decl.Clauses = append(decl.Clauses, clause)
					}
				}
			}
		}
	}
	return decl
}

func (b *treeBuilder) useClause(node *sitter.Node, prefix string) (UseClause, bool) {
	var name, alias string

	aliasNode := node.ChildByFieldName("alias")
	if aliasNode != nil {
		alias = b.text(aliasNode)
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "namespace_aliasing_clause":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				if n := child.NamedChild(j); n.Kind() == "name" {
					alias = b.text(n)
				}
			}
		case "name", "qualified_name", "namespace_name":
			if aliasNode != nil && child.StartByte() == aliasNode.StartByte() {
				continue
			}
			if name == "" {
				name = normalizeName(b.text(child))
			}
		}
	}

	if name == "" {
		return UseClause{}, false
	}
	if prefix != "" {
		name = prefix + NamespaceSeparator + name
	}
	if alias == "" {
		alias = LastSegment(name)
	}
	return UseClause{Name: name, Alias: alias}, true
}

func normalizeName(raw string) string {
	joined := strings.Join(strings.Fields(raw), "")
	return strings.TrimPrefix(joined, NamespaceSeparator)
}

// LastSegment returns the final separator-delimited segment of name.
func LastSegment(name string) string {
	if idx := strings.LastIndex(name, NamespaceSeparator); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
