package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

func mustFixer(t *testing.T, rule m.Rule) (Fixer, Detector) {
	t.Helper()

	d := mustDetector(t, rule)

	f, err := NewFixer(d, "getState", "vi.fn()")
	require.NoError(t, err)

	return f, d
}

func TestNewFixer_Validation(t *testing.T) {
	d := mustDetector(t, testRule(m.PolicyScoped))

	_, err := NewFixer(d, "", "vi.fn()")
	require.Error(t, err)

	_, err = NewFixer(d, "getState", " ")
	require.Error(t, err)
}

func TestFixer_InsertsAfterAnchor(t *testing.T) {
	f, d := mustFixer(t, testRule(m.PolicyScoped, "addChangeListener", "removeChangeListener"))

	patch := f.Fix("a.test.ts", incompleteMock)

	require.True(t, patch.Changed())
	assert.Equal(t, []string{"addChangeListener", "removeChangeListener"}, patch.Inserted)
	assert.Zero(t, patch.Skipped)
	assert.Contains(t, patch.Patched,
		"        getState: vi.fn(() => null),\n"+
			"        addChangeListener: vi.fn(),\n"+
			"        removeChangeListener: vi.fn(),\n"+
			"        load: vi.fn(),\n")
	assert.False(t, d.IsDefective(patch.Patched))
}

func TestFixer_AnchorIsLastProperty(t *testing.T) {
	f, d := mustFixer(t, testRule(m.PolicyScoped))

	content := `vi.mock("` + campaignModule + `", () => ({
  CampaignManager: { getInstance: () => ({ getState: vi.fn() }) },
}));
`

	patch := f.Fix("a.test.ts", content)

	require.True(t, patch.Changed())
	assert.Contains(t, patch.Patched, "getState: vi.fn(),\n  addChangeListener: vi.fn() })")
	assert.False(t, d.IsDefective(patch.Patched))
}

func TestFixer_AnchorIsLastPropertyWithComment(t *testing.T) {
	f, d := mustFixer(t, testRule(m.PolicyScoped))

	content := `vi.mock("` + campaignModule + `", () => ({
  CampaignManager: {
    getInstance: () => ({
      getState: vi.fn() // state
    }),
  },
}));
`

	patch := f.Fix("a.test.ts", content)

	require.True(t, patch.Changed())
	assert.Contains(t, patch.Patched,
		"      getState: vi.fn(),\n"+
			"      addChangeListener: vi.fn() // state\n"+
			"    }),")
	assert.NotContains(t, patch.Patched, "// state,")
	assert.False(t, d.IsDefective(patch.Patched))
}

func TestFixer_MultipleDeclarations(t *testing.T) {
	f, d := mustFixer(t, testRule(m.PolicyScoped))

	content := incompleteMock + completeMock + incompleteMock

	patch := f.Fix("a.test.ts", content)

	require.True(t, patch.Changed())
	assert.Len(t, patch.Inserted, 2)
	assert.Equal(t, 2, strings.Count(patch.Patched, "addChangeListener: vi.fn(),\n        load"))
	assert.False(t, d.IsDefective(patch.Patched))
}

func TestFixer_SkipsWithoutAnchor(t *testing.T) {
	f, _ := mustFixer(t, testRule(m.PolicyScoped))

	content := `vi.mock("` + campaignModule + `", () => ({ CampaignManager: { getInstance: vi.fn() } }));`

	patch := f.Fix("a.test.ts", content)

	assert.False(t, patch.Changed())
	assert.Equal(t, 1, patch.Skipped)
	assert.Empty(t, patch.Inserted)
}

func TestFixer_SkipsUnboundedDeclaration(t *testing.T) {
	f, _ := mustFixer(t, testRule(m.PolicyScoped))

	content := `vi.mock("` + campaignModule + `", () => ({ getState: vi.fn(),`

	patch := f.Fix("a.test.ts", content)

	assert.False(t, patch.Changed())
	assert.Equal(t, 1, patch.Skipped)
}

func TestFixer_CompleteFileIsUnchanged(t *testing.T) {
	f, _ := mustFixer(t, testRule(m.PolicyScoped))

	patch := f.Fix("a.test.ts", completeMock)

	assert.False(t, patch.Changed())
	assert.Zero(t, patch.Skipped)
}

func TestFixer_AnchorInCommentIsIgnored(t *testing.T) {
	f, _ := mustFixer(t, testRule(m.PolicyScoped))

	content := `vi.mock("` + campaignModule + `", () => ({
  // getState: later
  CampaignManager: { getInstance: vi.fn() },
}));`

	patch := f.Fix("a.test.ts", content)

	assert.False(t, patch.Changed())
	assert.Equal(t, 1, patch.Skipped)
}
