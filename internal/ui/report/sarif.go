package report

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"sort"

	"inspector/internal/core/errors"
	"inspector/internal/core/ports"
	"inspector/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDSyntax             = "INSP001"
	ruleIDMalformedNamespace = "INSP002"
	ruleIDCheckFailed        = "INSP003"
	ruleIDUnknownParent      = "INSP004"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

var sarifRules = map[string]sarifRule{
	ruleIDSyntax: {
		ID:               ruleIDSyntax,
		Name:             "SyntaxError",
		ShortDescription: sarifMessage{Text: "The source file could not be parsed."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	},
	ruleIDMalformedNamespace: {
		ID:               ruleIDMalformedNamespace,
		Name:             "MalformedNamespace",
		ShortDescription: sarifMessage{Text: "A class is declared inside a namespace block without a name."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	},
	ruleIDCheckFailed: {
		ID:               ruleIDCheckFailed,
		Name:             "CheckFailed",
		ShortDescription: sarifMessage{Text: "The file could not be checked."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	},
	ruleIDUnknownParent: {
		ID:               ruleIDUnknownParent,
		Name:             "UnknownParentClass",
		ShortDescription: sarifMessage{Text: "A class extends a class that is not declared in the checked sources."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
	},
}

// GenerateSARIF builds a SARIF v2.1.0 document from a check run. File URIs
// are relative to projectRoot.
func GenerateSARIF(projectRoot string, res ports.CheckResult) ([]byte, error) {
	results := make([]sarifResult, 0)
	used := make(map[string]bool)

	for _, f := range res.Files {
		if f.Status == ports.StatusOK {
			continue
		}
		ruleID := ruleForStatus(f.Status)
		used[ruleID] = true
		msg := "check failed"
		if f.Err != nil {
			msg = f.Err.Error()
		}
		results = append(results, sarifResult{
			RuleID:    ruleID,
			Level:     "error",
			Message:   sarifMessage{Text: msg},
			Locations: []sarifLocation{fileLocation(projectRoot, f.File, errorLine(f.Err))},
		})
	}

	for _, ref := range res.UnknownParents {
		used[ruleIDUnknownParent] = true
		results = append(results, sarifResult{
			RuleID:    ruleIDUnknownParent,
			Level:     "warning",
			Message:   sarifMessage{Text: fmt.Sprintf("Class %s extends unknown class %s", ref.FQN, ref.Parent)},
			Locations: []sarifLocation{fileLocation(projectRoot, ref.File, ref.Line)},
		})
	}

	rules := make([]sarifRule, 0, len(used))
	for id := range used {
		rules = append(rules, sarifRules[id])
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	doc := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "inspector",
						Version: version.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

func ruleForStatus(status string) string {
	switch status {
	case ports.StatusSyntaxError:
		return ruleIDSyntax
	case ports.StatusMalformedNamespace:
		return ruleIDMalformedNamespace
	default:
		return ruleIDCheckFailed
	}
}

// errorLine extracts the source line carried by a check error, or 0.
func errorLine(err error) int {
	var syntaxErr *errors.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return syntaxErr.Line
	}
	var nsErr *errors.MalformedNamespaceError
	if stderrors.As(err, &nsErr) {
		return nsErr.Line
	}
	return 0
}

func fileLocation(projectRoot, file string, line int) sarifLocation {
	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       relativeURI(projectRoot, file),
				URIBaseID: "%SRCROOT%",
			},
		},
	}
	if line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: line}
	}
	return loc
}

// relativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot. Relative paths pass through unchanged.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		if rel, err := filepath.Rel(projectRoot, filePath); err == nil {
			filePath = rel
		}
	}
	return filepath.ToSlash(filePath)
}
