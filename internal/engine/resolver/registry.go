package resolver

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"inspector/internal/core/errors"
	"inspector/internal/engine/parser"
	"inspector/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// TreeSource yields the syntax tree for a file's content.
type TreeSource interface {
	GetOrParse(ctx context.Context, file string, content []byte) (*parser.SyntaxTree, error)
}

type Options struct {
	// Checker is invoked for every class found by Check. Nil disables
	// class checks entirely.
	Checker ClassChecker
	// SkipDynamicOutput reports whether a file is exempt from the dynamic
	// output check regardless of how its unit gets built.
	SkipDynamicOutput func(file string) bool
	ReadFile          func(file string) ([]byte, error)
}

// Registry owns the SourceUnits of one analysis run. At most one unit is
// ever built per file, however many callers race for it.
type Registry struct {
	trees    TreeSource
	checker  ClassChecker
	skip     func(string) bool
	readFile func(string) ([]byte, error)

	mu     sync.RWMutex
	units  map[string]*entry
	group  singleflight.Group
	builds atomic.Int64
}

type entry struct {
	unit *SourceUnit
	tree *parser.SyntaxTree

	checkOnce sync.Once
	checkErr  error
}

func NewRegistry(trees TreeSource, opts Options) *Registry {
	r := &Registry{
		trees:    trees,
		checker:  opts.Checker,
		skip:     opts.SkipDynamicOutput,
		readFile: opts.ReadFile,
		units:    make(map[string]*entry),
	}
	if r.skip == nil {
		r.skip = func(string) bool { return false }
	}
	if r.readFile == nil {
		r.readFile = os.ReadFile
	}
	return r
}

// Check ensures the unit for file is registered and that its classes have
// been checked exactly once. Class checks replay the walk over the cached
// tree, so concurrent name lookups on the same file never wait for or
// observe them. A unit whose checks fail is unregistered again.
func (r *Registry) Check(ctx context.Context, file string, opts CheckOptions) (*SourceUnit, error) {
	e, err := r.obtain(ctx, file, opts, "check")
	if err != nil {
		return nil, err
	}
	if opts.SkipDynamicOutputCheck {
		e.unit.markSkipDynamicOutputCheck()
	}
	if r.checker == nil {
		return e.unit, nil
	}

	e.checkOnce.Do(func() {
		scratch := NewSourceUnit(e.unit.file, CheckOptions{})
		e.checkErr = Walk(ctx, e.tree, scratch, r.checker)
		if e.checkErr != nil {
			r.unregister(e)
		}
	})
	if e.checkErr != nil {
		return nil, e.checkErr
	}
	return e.unit, nil
}

// ResolveInFile resolves name in the context of file, building the file's
// unit without class checks when it is not registered yet.
func (r *Registry) ResolveInFile(ctx context.Context, name, file string) (string, error) {
	e, err := r.obtain(ctx, file, CheckOptions{}, "resolve")
	if err != nil {
		return "", err
	}
	return e.unit.Resolve(name), nil
}

func (r *Registry) Lookup(file string) (*SourceUnit, bool) {
	e := r.lookupEntry(filepath.Clean(file))
	if e == nil {
		return nil, false
	}
	return e.unit, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// Builds reports how many units have been constructed and registered.
func (r *Registry) Builds() int64 { return r.builds.Load() }

func (r *Registry) ShouldSkipDynamicOutputCheck(file string) bool {
	if unit, ok := r.Lookup(file); ok {
		return unit.SkipDynamicOutputCheck()
	}
	return r.skip(filepath.Clean(file))
}

func (r *Registry) lookupEntry(key string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.units[key]
}

// unregister drops e unless the key has already been rebuilt.
func (r *Registry) unregister(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.units[e.unit.file] == e {
		delete(r.units, e.unit.file)
	}
}

// obtain returns the registered entry for file, building it without class
// checks on a miss. via labels the caller for metrics and tracing.
func (r *Registry) obtain(ctx context.Context, file string, opts CheckOptions, via string) (*entry, error) {
	key := filepath.Clean(file)
	if e := r.lookupEntry(key); e != nil {
		return e, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		if e := r.lookupEntry(key); e != nil {
			return e, nil
		}
		return r.build(ctx, key, opts, via)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

func (r *Registry) build(ctx context.Context, file string, opts CheckOptions, via string) (*entry, error) {
	ctx, span := observability.Tracer.Start(ctx, "registry.build", trace.WithAttributes(
		attribute.String("file", file),
		attribute.String("via", via),
	))
	defer span.End()

	content, err := r.readFile(file)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		span.RecordError(err)
		return nil, errors.AddContext(errors.Wrap(err, code, "read source file"), errors.CtxPath, file)
	}

	tree, err := r.trees.GetOrParse(ctx, file, content)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	unit := NewSourceUnit(file, CheckOptions{
		SkipDynamicOutputCheck: opts.SkipDynamicOutputCheck || r.skip(file),
	})
	if err := Walk(ctx, tree, unit, nil); err != nil {
		span.RecordError(err)
		return nil, err
	}

	e := &entry{unit: unit, tree: tree}
	r.mu.Lock()
	r.units[file] = e
	r.mu.Unlock()

	r.builds.Add(1)
	observability.UnitsBuiltTotal.WithLabelValues(via).Inc()
	slog.Debug("source unit registered", "path", file, "namespace", unit.namespace, "aliases", len(unit.aliases), "via", via)
	return e, nil
}
