package resolver

import "sync/atomic"

// AliasTable maps a local alias to the fully-qualified name it imports.
// A file has exactly one table; later imports of an alias overwrite
// earlier ones.
type AliasTable map[string]string

func (a AliasTable) clone() AliasTable {
	out := make(AliasTable, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// CheckOptions are fixed when a SourceUnit is created.
type CheckOptions struct {
	SkipDynamicOutputCheck bool
}

// SourceUnit is the resolution context of one file: its namespace and the
// aliases it imports. Namespace and aliases are mutated only by the walk
// that builds the unit and are read-only once registered. The dynamic
// output flag can only be raised afterwards, never cleared.
type SourceUnit struct {
	file                   string
	namespace              string
	aliases                AliasTable
	skipDynamicOutputCheck atomic.Bool
}

func NewSourceUnit(file string, opts CheckOptions) *SourceUnit {
	u := &SourceUnit{
		file:    file,
		aliases: make(AliasTable),
	}
	u.skipDynamicOutputCheck.Store(opts.SkipDynamicOutputCheck)
	return u
}

func (u *SourceUnit) File() string { return u.file }

// Namespace is empty for files in the global namespace.
func (u *SourceUnit) Namespace() string { return u.namespace }

// Aliases returns a copy of the unit's alias table.
func (u *SourceUnit) Aliases() AliasTable { return u.aliases.clone() }

func (u *SourceUnit) SkipDynamicOutputCheck() bool { return u.skipDynamicOutputCheck.Load() }

func (u *SourceUnit) markSkipDynamicOutputCheck() { u.skipDynamicOutputCheck.Store(true) }

// Resolve returns the fully-qualified form of a class reference written
// in this file.
func (u *SourceUnit) Resolve(name string) string {
	return ResolveName(name, u.namespace, u.aliases)
}
