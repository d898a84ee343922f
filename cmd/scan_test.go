package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

func TestScanCmd_PrintsDefectivePaths(t *testing.T) {
	root := buildTestTree(t)

	out, errOut, err := executeCommand(t, "scan", root)
	require.NoError(t, err)

	want := filepath.Join(root, "campaign", "panel.test.tsx") + "\n" +
		filepath.Join(root, "legacy", "old.test.ts") + "\n"
	assert.Equal(t, want, out)
	assert.Contains(t, errOut, "Scanned 4 file(s): 3 mocking the module, 2 incomplete, 0 unreadable")
}

func TestScanCmd_Exclude(t *testing.T) {
	root := buildTestTree(t)

	out, _, err := executeCommand(t, "scan", root, "--exclude", "legacy/**")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "campaign", "panel.test.tsx")+"\n", out)
}

func TestScanCmd_Strict(t *testing.T) {
	root := buildTestTree(t)

	_, errOut, err := executeCommand(t, "scan", root, "--strict")
	require.ErrorIs(t, err, m.ErrDefectsFound)
	assert.Contains(t, errOut, "incomplete mocks found")
	assert.NotContains(t, errOut, "Usage:")
}

func TestScanCmd_StrictCleanTree(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "ok.test.ts"), completeMock)

	out, _, err := executeCommand(t, "scan", root, "--strict")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestScanCmd_JSONFormat(t *testing.T) {
	root := buildTestTree(t)

	out, _, err := executeCommand(t, "scan", root, "--format", "json")
	require.NoError(t, err)

	var findings []m.Finding
	require.NoError(t, json.Unmarshal([]byte(out), &findings))
	require.Len(t, findings, 2)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, m.PolicyScoped, findings[0].Policy)
}

func TestScanCmd_RequiredMembersFlag(t *testing.T) {
	root := buildTestTree(t)

	out, _, err := executeCommand(t, "scan", root, "--member", "addChangeListener,removeChangeListener")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(root, "campaign", "store.test.ts"))
}

func TestScanCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"missing root", []string{"scan", filepath.Join(t.TempDir(), "missing")}, m.ErrInvalidRoot},
		{"unknown policy", []string{"scan", t.TempDir(), "--policy", "fuzzy"}, m.ErrUnknownPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeCommand(t, tt.args...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, out)
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := executeCommand(t, "scan", t.TempDir(), "--format", "xml")
		require.Error(t, err)
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, _, err := executeCommand(t, "scan", "a", "b")
		require.Error(t, err)
	})
}
