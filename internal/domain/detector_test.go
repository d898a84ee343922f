package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

const campaignModule = "@src/renderer/campaign/CampaignManager"

func testRule(policy m.Policy, required ...string) m.Rule {
	if len(required) == 0 {
		required = []string{"addChangeListener"}
	}

	return m.Rule{
		Module:   campaignModule,
		Callees:  []string{"vi.mock", "jest.mock"},
		Required: required,
		Accessor: "getInstance",
		Policy:   policy,
	}
}

func mustDetector(t *testing.T, rule m.Rule) Detector {
	t.Helper()

	d, err := NewDetector(rule)
	require.NoError(t, err)

	return d
}

const incompleteMock = `import { vi } from "vitest";

vi.mock("@src/renderer/campaign/CampaignManager", () => {
  return {
    CampaignManager: {
      getInstance: vi.fn().mockReturnValue({
        getState: vi.fn(() => null),
        load: vi.fn(),
      }),
    },
  };
});
`

const completeMock = `vi.mock("@src/renderer/campaign/CampaignManager", () => ({
  CampaignManager: {
    getInstance: vi.fn().mockReturnValue({
      getState: vi.fn(() => null),
      addChangeListener: vi.fn(),
      removeChangeListener: vi.fn(),
    }),
  },
}));
`

func TestNewDetector_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *m.Rule)
	}{
		{"empty module", func(r *m.Rule) { r.Module = " " }},
		{"no callees", func(r *m.Rule) { r.Callees = nil }},
		{"no required members", func(r *m.Rule) { r.Required = nil }},
		{"unknown policy", func(r *m.Rule) { r.Policy = "fuzzy" }},
		{"singleton without accessor", func(r *m.Rule) {
			r.Policy = m.PolicySingleton
			r.Accessor = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := testRule(m.PolicyScoped)
			tt.mutate(&rule)

			_, err := NewDetector(rule)
			require.Error(t, err)
		})
	}

	_, err := NewDetector(m.Rule{Module: "x", Callees: []string{"vi.mock"}, Required: []string{"a"}, Policy: "nope"})
	require.ErrorIs(t, err, m.ErrUnknownPolicy)
}

func TestDetector_Scenarios(t *testing.T) {
	rule := m.Rule{
		Module:   "module:CampaignManager",
		Callees:  []string{"mockDeclare"},
		Required: []string{"addChangeListener"},
		Accessor: "getInstance",
	}

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "A: mock without addChangeListener is flagged",
			content: `mockDeclare("module:CampaignManager", () => ({ getInstance: () => ({}) }))`,
			want:    true,
		},
		{
			name:    "B: mock with addChangeListener is not flagged",
			content: `mockDeclare("module:CampaignManager", () => ({ getInstance: () => ({}), addChangeListener: () => {} }))`,
			want:    false,
		},
		{
			name:    "C: mock of another module is not flagged",
			content: `mockDeclare("module:Logger", () => ({ getInstance: () => ({}) }))`,
			want:    false,
		},
	}

	for _, policy := range m.Policies {
		for _, tt := range tests {
			t.Run(string(policy)+"/"+tt.name, func(t *testing.T) {
				r := rule
				r.Policy = policy

				assert.Equal(t, tt.want, mustDetector(t, r).IsDefective(tt.content))
			})
		}
	}
}

func TestDetector_Properties(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"no marker, no members", "describe('x', () => {});", false},
		{"no marker, members irrelevant", "const addChangeListener = 1;", false},
		{"marker with all members", completeMock, false},
		{"marker missing member", incompleteMock, true},
	}

	for _, policy := range m.Policies {
		for _, tt := range tests {
			t.Run(string(policy)+"/"+tt.name, func(t *testing.T) {
				d := mustDetector(t, testRule(policy, "addChangeListener", "removeChangeListener"))
				assert.Equal(t, tt.want, d.IsDefective(tt.content))
			})
		}
	}
}

func TestDetector_Declarations(t *testing.T) {
	d := mustDetector(t, testRule(m.PolicyScoped))

	t.Run("single and double quotes", func(t *testing.T) {
		content := "vi.mock('" + campaignModule + "', () => ({}));\njest.mock(\"" + campaignModule + "\");"

		decls := d.Declarations(content)
		require.Len(t, decls, 2)
		assert.Equal(t, "vi.mock", decls[0].Callee)
		assert.Equal(t, 1, decls[0].Line)
		assert.True(t, decls[0].Bounded)
		assert.Equal(t, "jest.mock", decls[1].Callee)
		assert.Equal(t, 2, decls[1].Line)
	})

	t.Run("whitespace around parenthesis", func(t *testing.T) {
		content := "vi.mock (\n  \"" + campaignModule + "\",\n  () => ({}),\n);"

		decls := d.Declarations(content)
		require.Len(t, decls, 1)
		assert.Equal(t, '(', rune(content[decls[0].Open]))
		assert.Equal(t, len(content)-1, decls[0].End)
	})

	t.Run("mismatched quotes are ignored", func(t *testing.T) {
		assert.Empty(t, d.Declarations("vi.mock('"+campaignModule+"\", () => ({}));"))
	})

	t.Run("module prefix is not a match", func(t *testing.T) {
		assert.Empty(t, d.Declarations(`vi.mock("`+campaignModule+`Helper", () => ({}));`))
	})

	t.Run("other callee is not a match", func(t *testing.T) {
		assert.Empty(t, d.Declarations(`vi.doMock("`+campaignModule+`", () => ({}));`))
		assert.Empty(t, d.Declarations(`myvi.mock("`+campaignModule+`", () => ({}));`))
	})

	t.Run("commented out mock is ignored", func(t *testing.T) {
		content := "// vi.mock(\"" + campaignModule + "\", () => ({}));\n/* vi.mock(\"" + campaignModule + "\") */"
		assert.Empty(t, d.Declarations(content))
	})

	t.Run("unbalanced call is unbounded", func(t *testing.T) {
		content := `vi.mock("` + campaignModule + `", () => ({`

		decls := d.Declarations(content)
		require.Len(t, decls, 1)
		assert.False(t, decls[0].Bounded)
		assert.Equal(t, len(content), decls[0].End)
	})
}

func TestDetector_ScopedPolicy(t *testing.T) {
	t.Run("member outside the mock does not count", func(t *testing.T) {
		content := incompleteMock + "\nit('listens', () => { manager.addChangeListener(cb); });\n"

		assert.True(t, mustDetector(t, testRule(m.PolicyScoped)).IsDefective(content))
		assert.False(t, mustDetector(t, testRule(m.PolicySubstring)).IsDefective(content))
	})

	t.Run("unbalanced call falls back to whole file", func(t *testing.T) {
		content := `vi.mock("` + campaignModule + `", () => ({ getInstance: vi.fn(`
		d := mustDetector(t, testRule(m.PolicyScoped))

		assert.True(t, d.IsDefective(content))
		assert.False(t, d.IsDefective(content+"\n// addChangeListener"))
	})

	t.Run("one finding per incomplete declaration", func(t *testing.T) {
		content := incompleteMock + completeMock + incompleteMock

		evaluation := mustDetector(t, testRule(m.PolicyScoped)).Evaluate(m.SourceFile{Path: "a.test.ts", Content: content})
		assert.Equal(t, 3, evaluation.Declarations)
		require.Len(t, evaluation.Findings, 2)
		assert.Equal(t, 3, evaluation.Findings[0].Line)
		assert.Less(t, evaluation.Findings[0].Offset, evaluation.Findings[1].Offset)
	})

	t.Run("delimiters in strings do not break bounding", func(t *testing.T) {
		content := `vi.mock("` + campaignModule + `", () => ({
  getInstance: () => ({ label: "})", other: '(' }),
}));
const addChangeListener = vi.fn();
`
		assert.True(t, mustDetector(t, testRule(m.PolicyScoped)).IsDefective(content))
	})
}

func TestDetector_SingletonPolicy(t *testing.T) {
	d := mustDetector(t, testRule(m.PolicySingleton))

	withoutAccessor := `vi.mock("` + campaignModule + `", () => ({ CampaignManager: vi.fn() }));`
	assert.False(t, d.IsDefective(withoutAccessor))
	assert.True(t, mustDetector(t, testRule(m.PolicySubstring)).IsDefective(withoutAccessor))

	assert.True(t, d.IsDefective(incompleteMock))
}

func TestDetector_EvaluateFinding(t *testing.T) {
	d := mustDetector(t, testRule(m.PolicySubstring, "addChangeListener", "removeChangeListener"))

	content := "\n" + incompleteMock + "const removeChangeListener = 1;\n"
	evaluation := d.Evaluate(m.SourceFile{Path: "tests/a.test.ts", Content: content})

	want := []m.Finding{{
		Path:    "tests/a.test.ts",
		Module:  campaignModule,
		Line:    4,
		Offset:  len("\nimport { vi } from \"vitest\";\n\n"),
		Missing: []string{"addChangeListener"},
		Policy:  m.PolicySubstring,
	}}

	if diff := cmp.Diff(want, evaluation.Findings); diff != "" {
		t.Errorf("Evaluate() findings mismatch (-want +got):\n%s", diff)
	}
}
