package model

import "fmt"

// Policy selects how strictly the required members of a mock are checked.
type Policy string

const (
	// PolicySubstring flags a file when it mocks the target module and the
	// whole file lacks a required member.
	PolicySubstring Policy = "substring"

	// PolicySingleton behaves like PolicySubstring but only flags files that
	// also reference the singleton accessor (e.g. getInstance).
	PolicySingleton Policy = "singleton"

	// PolicyScoped bounds each mock call with a delimiter-depth scanner and
	// checks the required members inside that call only.
	PolicyScoped Policy = "scoped"
)

// Policies lists every supported policy in documentation order.
var Policies = []Policy{PolicySubstring, PolicySingleton, PolicyScoped}

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(value string) (Policy, error) {
	for _, p := range Policies {
		if string(p) == value {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
}

// Rule describes which mock declarations to look for and what they must contain.
type Rule struct {
	// Module is the mocked module path, e.g. "@src/renderer/campaign/CampaignManager".
	Module string
	// Callees are the mocking functions, e.g. "vi.mock" or "jest.mock".
	Callees []string
	// Required are the member names every mock must declare.
	Required []string
	// Accessor gates PolicySingleton.
	Accessor string
	Policy   Policy
}

// Declaration is one mocking call for the target module found in a file.
type Declaration struct {
	Module string
	Callee string
	// Start is the offset of the callee, Open the offset of the call's "(".
	Start int
	Open  int
	// End is one past the matching ")" when Bounded, otherwise len(content).
	End     int
	Line    int
	Bounded bool
}

// Span returns the text the declaration covers.
func (d Declaration) Span(content string) string {
	return content[d.Start:d.End]
}
