package resolver

import "testing"

func TestResolveName(t *testing.T) {
	aliases := AliasTable{
		"Baz":   `Other\Bar`,
		"Model": `Vendor\Orm\Model`,
	}

	tests := []struct {
		name      string
		input     string
		namespace string
		aliases   AliasTable
		expected  string
	}{
		{"fully qualified ignores context", `\Foo\Bar`, "App", aliases, `Foo\Bar`},
		{"fully qualified global", `\Baz`, "App", aliases, "Baz"},
		{"namespace prefix", "Foo", "App", nil, `App\Foo`},
		{"namespace prefix qualified", `Sub\Foo`, "App", nil, `App\Sub\Foo`},
		{"alias shadows namespace", "Baz", "App", aliases, `Other\Bar`},
		{"alias with remainder", `Model\Query`, "App", aliases, `Vendor\Orm\Model\Query`},
		{"alias lookup is case-sensitive", "baz", "App", aliases, `App\baz`},
		{"alias only matches first segment", `Sub\Baz`, "", aliases, `Sub\Baz`},
		{"global namespace unchanged", "Foo", "", nil, "Foo"},
		{"empty name", "", "App", aliases, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveName(tt.input, tt.namespace, tt.aliases); got != tt.expected {
				t.Errorf("ResolveName(%q, %q) = %q, expected %q", tt.input, tt.namespace, got, tt.expected)
			}
		})
	}
}

func TestSourceUnit_AliasesReturnsCopy(t *testing.T) {
	unit := NewSourceUnit("a.php", CheckOptions{})
	unit.aliases["A"] = `X\A`

	copied := unit.Aliases()
	copied["A"] = `Y\A`

	if got := unit.Resolve("A"); got != `X\A` {
		t.Fatalf("expected unit to be unaffected by copy mutation, got %q", got)
	}
}
