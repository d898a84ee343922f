package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"mockcheck.dev/pkg/mockcheck/internal/domain/scope"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

// Detector finds mock declarations of a module and checks that each one
// declares every required member.
type Detector interface {
	// Declarations returns every mocking call for the target module, in
	// source order. Calls inside comments or string literals are ignored.
	Declarations(content string) []m.Declaration
	// Evaluate applies the configured policy to one file.
	Evaluate(file m.SourceFile) m.Evaluation
	// IsDefective reports whether content mocks the target module without
	// all required members.
	IsDefective(content string) bool
}

type detector struct {
	rule   m.Rule
	marker *regexp.Regexp
}

// NewDetector validates rule and compiles its declaration marker.
func NewDetector(rule m.Rule) (Detector, error) {
	if strings.TrimSpace(rule.Module) == "" {
		return nil, errors.New("target module is empty")
	}

	if len(rule.Callees) == 0 {
		return nil, errors.New("no mock callees configured")
	}

	if len(rule.Required) == 0 {
		return nil, errors.New("no required members configured")
	}

	if _, err := m.ParsePolicy(string(rule.Policy)); err != nil {
		return nil, err
	}

	if rule.Policy == m.PolicySingleton && rule.Accessor == "" {
		return nil, errors.New("singleton policy needs an accessor")
	}

	marker, err := compileMarker(rule.Callees, rule.Module)
	if err != nil {
		return nil, fmt.Errorf("compile marker: %w", err)
	}

	return &detector{rule: rule, marker: marker}, nil
}

// compileMarker builds `callee(<q>module<q>` allowing whitespace around the
// parenthesis. RE2 has no backreferences, so both quotes are captured and
// compared by the caller.
func compileMarker(callees []string, module string) (*regexp.Regexp, error) {
	quoted := make([]string, 0, len(callees))
	for _, callee := range callees {
		quoted = append(quoted, regexp.QuoteMeta(callee))
	}

	pattern := `(?:^|[^\w$.])(` + strings.Join(quoted, "|") + `)\s*\(\s*(["'` + "`" + `])` +
		regexp.QuoteMeta(module) + `(["'` + "`" + `])`

	return regexp.Compile(pattern)
}

func (d *detector) Declarations(content string) []m.Declaration {
	var decls []m.Declaration

	for _, loc := range d.marker.FindAllStringSubmatchIndex(content, -1) {
		if content[loc[4]:loc[5]] != content[loc[6]:loc[7]] {
			continue
		}

		start := loc[2]
		if !scope.InCode(content, start) {
			continue
		}

		decl := m.Declaration{
			Module: d.rule.Module,
			Callee: content[loc[2]:loc[3]],
			Start:  start,
			Open:   loc[3] + strings.IndexByte(content[loc[3]:loc[4]], '('),
			End:    len(content),
			Line:   scope.Line(content, start),
		}

		if closing, ok := scope.MatchingClose(content, decl.Open); ok {
			decl.End = closing + 1
			decl.Bounded = true
		}

		decls = append(decls, decl)
	}

	return decls
}

func (d *detector) Evaluate(file m.SourceFile) m.Evaluation {
	decls := d.Declarations(file.Content)

	return m.Evaluation{
		Path:         file.Path,
		Declarations: len(decls),
		Findings:     d.findings(file.Path, file.Content, decls),
	}
}

func (d *detector) IsDefective(content string) bool {
	return d.Evaluate(m.SourceFile{Content: content}).Defective()
}

func (d *detector) findings(path m.Path, content string, decls []m.Declaration) []m.Finding {
	if len(decls) == 0 {
		return nil
	}

	switch d.rule.Policy {
	case m.PolicySingleton:
		if !strings.Contains(content, d.rule.Accessor) {
			return nil
		}

		fallthrough
	case m.PolicySubstring:
		missing := missingMembers(content, d.rule.Required)
		if len(missing) == 0 {
			return nil
		}

		return []m.Finding{d.finding(path, decls[0], missing)}
	case m.PolicyScoped:
		var out []m.Finding

		for _, decl := range decls {
			// An unbalanced call cannot be bounded; fall back to the whole file.
			text := content
			if decl.Bounded {
				text = decl.Span(content)
			}

			if missing := missingMembers(text, d.rule.Required); len(missing) > 0 {
				out = append(out, d.finding(path, decl, missing))
			}
		}

		return out
	}

	return nil
}

func (d *detector) finding(path m.Path, decl m.Declaration, missing []string) m.Finding {
	return m.Finding{
		Path:    path,
		Module:  d.rule.Module,
		Line:    decl.Line,
		Offset:  decl.Start,
		Missing: missing,
		Policy:  d.rule.Policy,
	}
}

func missingMembers(text string, required []string) []string {
	var missing []string

	for _, member := range required {
		if !strings.Contains(text, member) {
			missing = append(missing, member)
		}
	}

	return missing
}
