package resolver

import (
	"strings"

	"inspector/internal/engine/parser"
)

// ResolveName qualifies a class reference. A leading separator marks the
// name as already absolute. Otherwise an alias matching the first segment
// wins over the enclosing namespace, and names with neither are taken to
// live in the global namespace. Matching is case-sensitive.
func ResolveName(name, namespace string, aliases AliasTable) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, parser.NamespaceSeparator) {
		return name[len(parser.NamespaceSeparator):]
	}

	first, rest, qualified := strings.Cut(name, parser.NamespaceSeparator)
	if target, ok := aliases[first]; ok {
		if qualified {
			return target + parser.NamespaceSeparator + rest
		}
		return target
	}

	if namespace != "" {
		return namespace + parser.NamespaceSeparator + name
	}
	return name
}
