package model

import "errors"

// Sentinel errors shared by the domain and the CLI.
var (
	ErrInvalidRoot   = errors.New("invalid root directory")
	ErrUnknownPolicy = errors.New("unknown policy")
	ErrDefectsFound  = errors.New("incomplete mocks found")
)

// Finding reports a mock declaration that lacks required members.
type Finding struct {
	Path    Path     `json:"path" yaml:"path"`
	Module  string   `json:"module" yaml:"module"`
	Line    int      `json:"line" yaml:"line"`
	Offset  int      `json:"-" yaml:"-"` // start of the declaration
	Missing []string `json:"missing" yaml:"missing"`
	Policy  Policy   `json:"policy" yaml:"policy"`
}

// Evaluation is the outcome of checking a single candidate file.
type Evaluation struct {
	Path         Path
	Declarations int
	Findings     []Finding
	Err          error // read failure, not a defect
}

// Defective reports whether the file mocks the target module incompletely.
func (e Evaluation) Defective() bool {
	return e.Err == nil && len(e.Findings) > 0
}

// Summary holds the totals of a scan.
type Summary struct {
	Scanned   int
	Mocking   int
	Defective int
	Failed    int
	Patched   int
}

// Patch describes the members inserted into one file by the fixer.
type Patch struct {
	Path     Path
	Original string
	Patched  string
	Inserted []string
	// Skipped lists declarations that had no anchor member to insert after.
	Skipped int
}

// Changed reports whether the patch modifies the file.
func (p Patch) Changed() bool {
	return p.Original != p.Patched
}
