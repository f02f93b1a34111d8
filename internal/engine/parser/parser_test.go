package parser

import (
	stderrors "errors"
	"testing"

	"inspector/internal/core/errors"
)

func TestParse_BracedNamespace(t *testing.T) {
	p := NewParser()

	code := `<?php
namespace App\Http {
    use Vendor\Lib\Client;
    use Vendor\Lib\Response as LibResponse;

    class Controller extends Base implements \Countable, Contracts\Handler {
    }

    function helper() {}
}
`
	tree, err := p.Parse("controller.php", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tree.Nodes) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(tree.Nodes))
	}

	ns, ok := tree.Nodes[0].(*NamespaceDecl)
	if !ok {
		t.Fatalf("expected namespace, got %T", tree.Nodes[0])
	}
	if ns.Name != `App\Http` {
		t.Errorf("expected namespace App\\Http, got %q", ns.Name)
	}
	if ns.Line != 2 {
		t.Errorf("expected namespace on line 2, got %d", ns.Line)
	}
	if len(ns.Body) != 4 {
		t.Fatalf("expected 4 nested nodes, got %d", len(ns.Body))
	}

	use, ok := ns.Body[1].(*UseDecl)
	if !ok || len(use.Clauses) != 1 {
		t.Fatalf("expected aliased use declaration, got %#v", ns.Body[1])
	}
	if use.Clauses[0].Name != `Vendor\Lib\Response` || use.Clauses[0].Alias != "LibResponse" {
		t.Errorf("unexpected clause %+v", use.Clauses[0])
	}

	plain := ns.Body[0].(*UseDecl)
	if plain.Clauses[0].Alias != "Client" {
		t.Errorf("expected implicit alias Client, got %q", plain.Clauses[0].Alias)
	}

	class, ok := ns.Body[2].(*ClassDecl)
	if !ok {
		t.Fatalf("expected class, got %T", ns.Body[2])
	}
	if class.Name != "Controller" || class.Line != 6 {
		t.Errorf("unexpected class %+v", class)
	}
	if class.Extends != "Base" {
		t.Errorf("expected extends Base, got %q", class.Extends)
	}
	if len(class.Implements) != 2 || class.Implements[0] != `\Countable` || class.Implements[1] != `Contracts\Handler` {
		t.Errorf("unexpected implements %v", class.Implements)
	}

	if ns.Body[3].Kind() != KindOther {
		t.Errorf("expected function to be other, got %s", ns.Body[3].Kind())
	}
}

func TestParse_SemicolonNamespaceOwnsFollowingStatements(t *testing.T) {
	p := NewParser()

	code := `<?php
use Shared\Logger;

namespace First;
use Dep\Thing;
class A {}

namespace Second;
class B {}
`
	tree, err := p.Parse("multi.php", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tree.Nodes) != 3 {
		t.Fatalf("expected use + 2 namespaces at top level, got %d", len(tree.Nodes))
	}
	if tree.Nodes[0].Kind() != KindUse {
		t.Fatalf("expected leading use, got %s", tree.Nodes[0].Kind())
	}

	first := tree.Nodes[1].(*NamespaceDecl)
	if first.Name != "First" || len(first.Body) != 2 {
		t.Fatalf("unexpected first namespace %+v", first)
	}
	if first.Body[1].(*ClassDecl).Name != "A" {
		t.Errorf("expected class A inside First")
	}

	second := tree.Nodes[2].(*NamespaceDecl)
	if second.Name != "Second" || len(second.Body) != 1 {
		t.Fatalf("unexpected second namespace %+v", second)
	}
}

func TestParse_GroupUseAndMultipleClauses(t *testing.T) {
	p := NewParser()

	code := `<?php
use App\Models\{User, Post as Article};
use \Root\One, Root\Two as Deux;
`
	tree, err := p.Parse("uses.php", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var clauses []UseClause
	for _, n := range tree.Nodes {
		if u, ok := n.(*UseDecl); ok {
			clauses = append(clauses, u.Clauses...)
		}
	}

	want := []UseClause{
		{Name: `App\Models\User`, Alias: "User"},
		{Name: `App\Models\Post`, Alias: "Article"},
		{Name: `Root\One`, Alias: "One"},
		{Name: `Root\Two`, Alias: "Deux"},
	}
	if len(clauses) != len(want) {
		t.Fatalf("expected %d clauses, got %d: %+v", len(want), len(clauses), clauses)
	}
	for i := range want {
		if clauses[i] != want[i] {
			t.Errorf("clause %d: want %+v, got %+v", i, want[i], clauses[i])
		}
	}
}

func TestParse_AnonymousNamespace(t *testing.T) {
	p := NewParser()

	tree, err := p.Parse("anon.php", []byte("<?php\nnamespace {\n  class Legacy {}\n}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ns := tree.Nodes[0].(*NamespaceDecl)
	if ns.Name != "" {
		t.Fatalf("expected empty namespace name, got %q", ns.Name)
	}
	if len(ns.Body) != 1 || ns.Body[0].Kind() != KindClass {
		t.Fatalf("expected nested class, got %+v", ns.Body)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	p := NewParser()

	_, err := p.Parse("broken.php", []byte("<?php\n\nclass Broken {\n  public function x( {\n}\n"))
	if err == nil {
		t.Fatal("expected syntax error")
	}

	var syntax *errors.SyntaxError
	if !stderrors.As(err, &syntax) {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
	if syntax.File != "broken.php" {
		t.Errorf("expected file broken.php, got %q", syntax.File)
	}
	if syntax.Line < 3 {
		t.Errorf("expected error at or after line 3, got %d", syntax.Line)
	}
	if !errors.IsCode(err, errors.CodeSyntax) {
		t.Error("expected SYNTAX_ERROR code")
	}
}

func TestParse_ConcurrentUseReturnsParsersToPool(t *testing.T) {
	p := NewParser()
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := p.Parse("c.php", []byte("<?php\nclass C {}\n"))
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("parse: %v", err)
		}
	}
	if active := p.pool.inUse(); active != 0 {
		t.Fatalf("expected all parsers returned, %d still leased", active)
	}
}

func TestLastSegment(t *testing.T) {
	cases := map[string]string{
		`A\B\C`: "C",
		"Plain": "Plain",
		`A\`:    "",
	}
	for in, want := range cases {
		if got := LastSegment(in); got != want {
			t.Errorf("LastSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
