package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

func phpLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_php.LanguagePHP())
}

func TestParserPool_AcquireRelease(t *testing.T) {
	pool := newParserPool(phpLanguage())

	sp, err := pool.acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if got := pool.inUse(); got != 1 {
		t.Fatalf("expected 1 parser in use, got %d", got)
	}

	tree := sp.Parse([]byte("<?php\nclass A {}\n"), nil)
	if tree == nil {
		t.Fatal("expected a tree")
	}
	if tree.RootNode().HasError() {
		t.Error("unexpected parse error")
	}
	tree.Close()

	pool.release(sp)
	if got := pool.inUse(); got != 0 {
		t.Fatalf("expected 0 parsers in use, got %d", got)
	}
}

func TestParserPool_ReleaseNil(t *testing.T) {
	pool := newParserPool(phpLanguage())
	pool.release(nil)
	if got := pool.inUse(); got != 0 {
		t.Fatalf("release(nil) changed lease count to %d", got)
	}
}

func TestParserPool_Concurrent(t *testing.T) {
	pool := newParserPool(phpLanguage())
	src := []byte("<?php\nnamespace App;\nclass User {}\n")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp, err := pool.acquire()
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer pool.release(sp)
			tree := sp.Parse(src, nil)
			if tree == nil || tree.RootNode().HasError() {
				t.Error("parse failed under concurrency")
			}
			if tree != nil {
				tree.Close()
			}
		}()
	}
	wg.Wait()

	if got := pool.inUse(); got != 0 {
		t.Fatalf("expected all parsers released, got %d in use", got)
	}
}
