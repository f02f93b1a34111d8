package resolver

import (
	"context"
	"fmt"

	"inspector/internal/core/errors"
	"inspector/internal/engine/parser"
)

// ClassChecker runs semantic checks for one class declaration. Any error
// it returns aborts the walk of the containing file.
type ClassChecker interface {
	CheckClass(ctx context.Context, class *parser.ClassDecl, namespace string, aliases AliasTable, file string) error
}

// ClassCheckerFunc adapts a function to ClassChecker.
type ClassCheckerFunc func(ctx context.Context, class *parser.ClassDecl, namespace string, aliases AliasTable, file string) error

func (f ClassCheckerFunc) CheckClass(ctx context.Context, class *parser.ClassDecl, namespace string, aliases AliasTable, file string) error {
	return f(ctx, class, namespace, aliases, file)
}

// Walk populates unit from the top-level declarations of tree and the
// declarations directly inside namespace blocks. A nil checker walks
// without class checks.
func Walk(ctx context.Context, tree *parser.SyntaxTree, unit *SourceUnit, checker ClassChecker) error {
	if tree == nil {
		return nil
	}
	for _, node := range tree.Nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch n := node.(type) {
		case *parser.ClassDecl:
			if err := checkClass(ctx, checker, n, "", unit); err != nil {
				return err
			}
		case *parser.NamespaceDecl:
			if err := walkNamespace(ctx, n, unit, checker); err != nil {
				return err
			}
		case *parser.UseDecl:
			unit.addUses(n)
		case *parser.OtherDecl:
		}
	}
	return nil
}

func walkNamespace(ctx context.Context, ns *parser.NamespaceDecl, unit *SourceUnit, checker ClassChecker) error {
	for _, node := range ns.Body {
		switch n := node.(type) {
		case *parser.ClassDecl:
			if ns.Name == "" {
				return &errors.MalformedNamespaceError{File: unit.file, Line: n.Line}
			}
			unit.namespace = ns.Name
			if err := checkClass(ctx, checker, n, ns.Name, unit); err != nil {
				return err
			}
		case *parser.UseDecl:
			unit.addUses(n)
		case *parser.NamespaceDecl, *parser.OtherDecl:
			// Only one level of nesting is inspected.
		}
	}
	return nil
}

func checkClass(ctx context.Context, checker ClassChecker, class *parser.ClassDecl, namespace string, unit *SourceUnit) error {
	if checker == nil {
		return nil
	}
	if err := checker.CheckClass(ctx, class, namespace, unit.aliases.clone(), unit.file); err != nil {
		return fmt.Errorf("check class %s in %s: %w", class.Name, unit.file, err)
	}
	return nil
}

func (u *SourceUnit) addUses(decl *parser.UseDecl) {
	for _, clause := range decl.Clauses {
		if clause.Alias == "" {
			continue
		}
		u.aliases[clause.Alias] = clause.Name
	}
}
