package resolve

import (
	"encoding/json"
	"os"

	"github.com/callscape/callscape/pkg/errors"
)

// AnalysisResult is the raw output of an external source analyzer: declared
// symbols plus unresolved call tuples. Producing it is out of scope for this
// module; language-specific parsers emit it as JSON.
type AnalysisResult struct {
	Functions []RawSymbol `json:"functions"`
	Calls     []RawCall   `json:"calls"`
}

// RawSymbol is one declared function, method, or class member as reported by
// the analyzer, before resolution.
type RawSymbol struct {
	Name   string         `json:"name"`
	File   string         `json:"file"`
	Lineno int            `json:"lineno"`
	Args   []string       `json:"args,omitempty"`
	Kind   string         `json:"kind,omitempty"`
	Doc    string         `json:"doc,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// RawCall is one unresolved call tuple. Target may be unqualified; URL is an
// optional endpoint hint for AI-inferred external calls.
type RawCall struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Override is one manual relation from a caller-supplied override list.
// Overrides can introduce nodes that analysis never saw; missing endpoints
// are synthesized during resolution.
type Override struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Type      string `json:"type,omitempty"`
	Weight    int    `json:"weight,omitempty"`
	RiskLevel string `json:"risk_level,omitempty"`
	Layer     string `json:"layer,omitempty"`
	Direction string `json:"direction,omitempty"`
	NodeType  string `json:"node_type,omitempty"`
	Module    string `json:"module,omitempty"`
}

// TraceEvent is one runtime trace record. Only the target name is consumed;
// events aggregate into per-node hit counts that drive dead-code flags.
type TraceEvent struct {
	Target string `json:"target"`
}

// LoadAnalysisFile reads an AnalysisResult from a JSON file.
//
// Callers that aggregate multiple sources treat a failure as "this source
// contributes zero nodes" rather than aborting the whole resolution.
func LoadAnalysisFile(path string) (AnalysisResult, error) {
	var out AnalysisResult
	if err := readJSON(path, &out); err != nil {
		return AnalysisResult{}, err
	}
	return out, nil
}

// LoadOverridesFile reads a manual override list from a JSON file.
func LoadOverridesFile(path string) ([]Override, error) {
	var out []Override
	if err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadTraceFile reads runtime trace events from a JSON file.
func LoadTraceFile(path string) ([]TraceEvent, error) {
	var out []TraceEvent
	if err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return nil
}
