package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	summaryStyle = lipgloss.NewStyle().Bold(true)
)

// SimpleUI implements UI on top of a cobra Command's output streams.
type SimpleUI struct {
	cmd    *cobra.Command
	format Format
	styled bool
	pager  *TUI
}

// NewSimpleUI creates a new SimpleUI. The default format is FormatText.
func NewSimpleUI(cmd *cobra.Command, options ...Option) *SimpleUI {
	s := &SimpleUI{cmd: cmd, format: FormatText}
	for _, option := range options {
		option(s)
	}

	return s
}

// DisplayFindings renders findings on stdout in the configured format.
func (s *SimpleUI) DisplayFindings(ctx context.Context, findings []m.Finding) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if findings == nil {
		findings = []m.Finding{}
	}

	switch s.format {
	case FormatTable:
		return s.page("Incomplete mocks", renderFindingsTable(findings))
	case FormatJSON:
		encoder := json.NewEncoder(s.out())
		encoder.SetIndent("", "  ")

		return encoder.Encode(findings)
	case FormatYAML:
		encoder := yaml.NewEncoder(s.out())
		encoder.SetIndent(2)

		if err := encoder.Encode(findings); err != nil {
			return err
		}

		return encoder.Close()
	case FormatText, "":
		for _, path := range uniquePaths(findings) {
			s.printf("%s\n", path)
		}

		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, s.format)
}

// DisplayReadError reports a file that could not be read.
func (s *SimpleUI) DisplayReadError(ctx context.Context, path m.Path, err error) {
	if ctx.Err() != nil {
		return
	}

	s.eprintf("%s\n", s.style(errorStyle, fmt.Sprintf("error: %s: %v", path, err)))
}

// DisplayCandidates prints the files that mock the target module.
func (s *SimpleUI) DisplayCandidates(ctx context.Context, candidates []m.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.page("Mocking files", renderCandidatesTable(candidates))
}

// DisplayPatch prints a unified diff for a dry run, or the patched path otherwise.
func (s *SimpleUI) DisplayPatch(ctx context.Context, patch m.Patch, dryRun bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if patch.Skipped > 0 {
		s.eprintf("%s\n", s.style(warnStyle,
			fmt.Sprintf("warning: %s: %d mock(s) without an anchor member were left unchanged", patch.Path, patch.Skipped)))
	}

	if !patch.Changed() {
		return nil
	}

	if !dryRun {
		s.printf("patched %s (+%s)\n", patch.Path, strings.Join(patch.Inserted, ", +"))
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(patch.Original),
		B:        difflib.SplitLines(patch.Patched),
		FromFile: "a/" + string(patch.Path),
		ToFile:   "b/" + string(patch.Path),
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", patch.Path, err)
	}

	s.printf("%s", diff)

	return nil
}

// DisplaySummary prints scan totals on stderr.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary) {
	if ctx.Err() != nil {
		return
	}

	line := fmt.Sprintf("Scanned %d file(s): %d mocking the module, %d incomplete, %d unreadable",
		summary.Scanned, summary.Mocking, summary.Defective, summary.Failed)
	if summary.Patched > 0 {
		line += fmt.Sprintf(", %d patched", summary.Patched)
	}

	s.eprintf("%s\n", s.style(summaryStyle, line))
}

func renderFindingsTable(findings []m.Finding) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Line", "Missing"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	for _, finding := range findings {
		table.Append([]string{string(finding.Path), fmt.Sprintf("%d", finding.Line), strings.Join(finding.Missing, ", ")})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(uniquePaths(findings))),
		"",
		fmt.Sprintf("%d mock(s)", len(findings)),
	})

	table.Render()

	return tableBuffer.String()
}

func renderCandidatesTable(candidates []m.Candidate) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Mocks"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	total := 0

	for _, candidate := range candidates {
		table.Append([]string{string(candidate.Path), fmt.Sprintf("%d", candidate.Declarations)})

		total += candidate.Declarations
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(candidates)),
		fmt.Sprintf("%d", total),
	})

	table.Render()

	return tableBuffer.String()
}

// uniquePaths returns finding paths in order of first appearance.
func uniquePaths(findings []m.Finding) []m.Path {
	seen := make(map[m.Path]bool, len(findings))
	paths := make([]m.Path, 0, len(findings))

	for _, finding := range findings {
		if seen[finding.Path] {
			continue
		}

		seen[finding.Path] = true
		paths = append(paths, finding.Path)
	}

	return paths
}

// page hands long reports to the pager when one is configured.
func (s *SimpleUI) page(title, content string) error {
	if s.pager == nil {
		s.printf("%s", content)
		return nil
	}

	return s.pager.Page(title, content)
}

func (s *SimpleUI) style(st lipgloss.Style, text string) string {
	if !s.styled {
		return text
	}

	return st.Render(text)
}

func (s *SimpleUI) out() io.Writer {
	return s.cmd.OutOrStdout()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func (s *SimpleUI) eprintf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), format, args...)
}
