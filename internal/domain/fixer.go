package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"mockcheck.dev/pkg/mockcheck/internal/domain/scope"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

// Fixer inserts missing required members into incomplete mock declarations.
type Fixer interface {
	Fix(path m.Path, content string) m.Patch
}

type fixer struct {
	Detector
	anchor *regexp.Regexp
	stub   string
}

// NewFixer creates a Fixer that inserts each missing member as
// `member: stub,` right after the anchor property of the mock body.
func NewFixer(detector Detector, anchor, stub string) (Fixer, error) {
	if strings.TrimSpace(anchor) == "" {
		return nil, errors.New("fix anchor is empty")
	}

	if strings.TrimSpace(stub) == "" {
		return nil, errors.New("fix stub is empty")
	}

	pattern, err := regexp.Compile(`(?:^|[^\w$])` + regexp.QuoteMeta(anchor) + `\s*:`)
	if err != nil {
		return nil, fmt.Errorf("compile anchor: %w", err)
	}

	return &fixer{Detector: detector, anchor: pattern, stub: stub}, nil
}

func (f *fixer) Fix(path m.Path, content string) m.Patch {
	patch := m.Patch{Path: path, Original: content, Patched: content}

	findings := f.Evaluate(m.SourceFile{Path: path, Content: content}).Findings
	if len(findings) == 0 {
		return patch
	}

	decls := make(map[int]m.Declaration)
	for _, decl := range f.Declarations(content) {
		decls[decl.Start] = decl
	}

	// Patch from the end so earlier offsets stay valid.
	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Offset > findings[j].Offset
	})

	patched := content

	for _, finding := range findings {
		decl, ok := decls[finding.Offset]
		if !ok || !decl.Bounded {
			patch.Skipped++
			continue
		}

		at, text, ok := f.insertion(patched, decl, finding.Missing)
		if !ok {
			patch.Skipped++
			continue
		}

		patched = patched[:at] + text + patched[at:]
		patch.Inserted = append(patch.Inserted, finding.Missing...)
	}

	patch.Patched = patched

	return patch
}

// insertion finds where the missing members go inside decl and renders them.
func (f *fixer) insertion(content string, decl m.Declaration, missing []string) (int, string, bool) {
	span := decl.Span(content)

	var anchorEnd int

	found := false

	for _, loc := range f.anchor.FindAllStringIndex(span, -1) {
		if scope.InCode(content, decl.Start+loc[1]-1) {
			anchorEnd = decl.Start + loc[1]
			found = true

			break
		}
	}

	if !found {
		return 0, "", false
	}

	end, ok := scope.PropertyEnd(content, anchorEnd)
	if !ok || end >= decl.End {
		return 0, "", false
	}

	indent := scope.Indent(content, anchorEnd)

	lines := make([]string, 0, len(missing))
	for _, member := range missing {
		lines = append(lines, "\n"+indent+member+": "+f.stub)
	}

	if content[end] == ',' {
		return end + 1, strings.Join(lines, ",") + ",", true
	}

	// The anchor is the last property and has no trailing comma. The
	// separator goes right after its value, ahead of any trailing comment.
	at := scope.CodeEnd(content, anchorEnd, end)

	return at, "," + strings.Join(lines, ","), true
}
