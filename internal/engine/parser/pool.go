package parser

import (
	"fmt"
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// parserPool hands out tree-sitter parsers bound to one grammar. Parsers
// are reset on release so no tree from an earlier file stays reachable.
type parserPool struct {
	lang   *sitter.Language
	pool   sync.Pool
	leased atomic.Int64
}

func newParserPool(lang *sitter.Language) *parserPool {
	return &parserPool{
		lang: lang,
		pool: sync.Pool{New: func() any { return sitter.NewParser() }},
	}
}

// acquire fails only when the grammar is incompatible with the linked
// tree-sitter runtime.
func (p *parserPool) acquire() (*sitter.Parser, error) {
	sp := p.pool.Get().(*sitter.Parser)
	if err := sp.SetLanguage(p.lang); err != nil {
		p.pool.Put(sp)
		return nil, fmt.Errorf("set parser language: %w", err)
	}
	p.leased.Add(1)
	return sp, nil
}

func (p *parserPool) release(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.leased.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

func (p *parserPool) inUse() int64 { return p.leased.Load() }
