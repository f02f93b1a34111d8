package parser

// NodeKind enumerates the top-level declaration variants the resolver cares
// about. Every Node reports exactly one of these.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindClass
	KindNamespace
	KindUse
)

func (k NodeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindNamespace:
		return "namespace"
	case KindUse:
		return "use"
	default:
		return "other"
	}
}

// Node is a top-level declaration. The set of implementations is closed:
// *ClassDecl, *NamespaceDecl, *UseDecl and *OtherDecl.
type Node interface {
	Kind() NodeKind
	StartLine() int
	sealed()
}

// SyntaxTree is the ordered list of top-level declarations of one file.
// Trees handed out by the cache are shared and must not be modified.
type SyntaxTree struct {
	Nodes []Node
}

type ClassDecl struct {
	Name       string
	Line       int
	Extends    string   // raw name as written, empty when absent
	Implements []string // raw names as written
}

type NamespaceDecl struct {
	Name string // empty for `namespace { ... }`
	Line int
	Body []Node
}

type UseClause struct {
	Name  string // imported name without a leading separator
	Alias string // explicit alias, or the last segment of Name
}

type UseDecl struct {
	Line    int
	Clauses []UseClause
}

type OtherDecl struct {
	Type string // tree-sitter node kind
	Line int
}

func (*ClassDecl) Kind() NodeKind     { return KindClass }
func (*NamespaceDecl) Kind() NodeKind { return KindNamespace }
func (*UseDecl) Kind() NodeKind       { return KindUse }
func (*OtherDecl) Kind() NodeKind     { return KindOther }

func (n *ClassDecl) StartLine() int     { return n.Line }
func (n *NamespaceDecl) StartLine() int { return n.Line }
func (n *UseDecl) StartLine() int       { return n.Line }
func (n *OtherDecl) StartLine() int     { return n.Line }

func (*ClassDecl) sealed()     {}
func (*NamespaceDecl) sealed() {}
func (*UseDecl) sealed()       {}
func (*OtherDecl) sealed()     {}

// NamespaceSeparator joins the segments of a qualified name.
const NamespaceSeparator = `\`
