package report

import (
	"encoding/json"
	"fmt"
	"testing"

	"inspector/internal/core/errors"
	"inspector/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) sarifReport {
	t.Helper()
	var doc sarifReport
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Runs, 1)
	return doc
}

func TestGenerateSARIF_EmptyResults(t *testing.T) {
	data, err := GenerateSARIF("", ports.CheckResult{
		Files: []ports.FileResult{{File: "/project/a.php", Status: ports.StatusOK}},
	})
	require.NoError(t, err)

	doc := decode(t, data)
	assert.Equal(t, sarifSchema, doc.Schema)
	assert.Equal(t, sarifVersion, doc.Version)
	assert.Equal(t, "inspector", doc.Runs[0].Tool.Driver.Name)
	assert.Empty(t, doc.Runs[0].Results)
	assert.Empty(t, doc.Runs[0].Tool.Driver.Rules)
}

func TestGenerateSARIF_FailedFiles(t *testing.T) {
	res := ports.CheckResult{
		Files: []ports.FileResult{
			{
				File:   "/project/src/Broken.php",
				Status: ports.StatusSyntaxError,
				Err:    &errors.SyntaxError{File: "/project/src/Broken.php", Line: 7, Message: "unexpected token"},
			},
			{
				File:   "/project/src/Anon.php",
				Status: ports.StatusMalformedNamespace,
				Err:    fmt.Errorf("walk: %w", &errors.MalformedNamespaceError{File: "/project/src/Anon.php", Line: 3}),
			},
			{
				File:   "/project/src/Gone.php",
				Status: ports.StatusFailed,
				Err:    fmt.Errorf("boom"),
			},
		},
	}

	data, err := GenerateSARIF("/project", res)
	require.NoError(t, err)
	doc := decode(t, data)

	results := doc.Runs[0].Results
	require.Len(t, results, 3)

	assert.Equal(t, ruleIDSyntax, results[0].RuleID)
	assert.Equal(t, "error", results[0].Level)
	loc := results[0].Locations[0].PhysicalLocation
	assert.Equal(t, "src/Broken.php", loc.ArtifactLocation.URI)
	assert.Equal(t, "%SRCROOT%", loc.ArtifactLocation.URIBaseID)
	require.NotNil(t, loc.Region)
	assert.Equal(t, 7, loc.Region.StartLine)

	assert.Equal(t, ruleIDMalformedNamespace, results[1].RuleID)
	require.NotNil(t, results[1].Locations[0].PhysicalLocation.Region)
	assert.Equal(t, 3, results[1].Locations[0].PhysicalLocation.Region.StartLine)

	assert.Equal(t, ruleIDCheckFailed, results[2].RuleID)
	assert.Nil(t, results[2].Locations[0].PhysicalLocation.Region)
	assert.Equal(t, "boom", results[2].Message.Text)

	rules := doc.Runs[0].Tool.Driver.Rules
	require.Len(t, rules, 3)
	assert.Equal(t, []string{ruleIDSyntax, ruleIDMalformedNamespace, ruleIDCheckFailed}, []string{rules[0].ID, rules[1].ID, rules[2].ID})
}

func TestGenerateSARIF_UnknownParents(t *testing.T) {
	res := ports.CheckResult{
		UnknownParents: []ports.ClassRef{
			{FQN: `App\Orphan`, File: "/project/src/Orphan.php", Line: 5, Parent: `Vendor\Missing`},
		},
	}

	data, err := GenerateSARIF("/project", res)
	require.NoError(t, err)
	doc := decode(t, data)

	require.Len(t, doc.Runs[0].Results, 1)
	r := doc.Runs[0].Results[0]
	assert.Equal(t, ruleIDUnknownParent, r.RuleID)
	assert.Equal(t, "warning", r.Level)
	assert.Contains(t, r.Message.Text, `Vendor\Missing`)
	assert.Equal(t, "src/Orphan.php", r.Locations[0].PhysicalLocation.ArtifactLocation.URI)
}

func TestRelativeURI(t *testing.T) {
	cases := []struct {
		root    string
		path    string
		wantURI string
	}{
		{"/project", "/project/src/User.php", "src/User.php"},
		{"/project", "/other/Bar.php", "../other/Bar.php"},
		{"", "/abs/Path.php", "/abs/Path.php"},
		{"/project", "relative/Path.php", "relative/Path.php"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.wantURI, relativeURI(tc.root, tc.path), "relativeURI(%q, %q)", tc.root, tc.path)
	}
}
