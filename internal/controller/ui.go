// Package controller provides output adapters for displaying scan results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

// Option is a functional option for NewSimpleUI.
type Option func(*SimpleUI)

// WithFormat selects how findings are rendered on stdout.
func WithFormat(format Format) Option {
	return func(s *SimpleUI) {
		s.format = format
	}
}

// WithStyle enables terminal styling of diagnostics and summaries.
func WithStyle(styled bool) Option {
	return func(s *SimpleUI) {
		s.styled = styled
	}
}

// WithPager routes table reports through an interactive pager.
func WithPager(pager *TUI) Option {
	return func(s *SimpleUI) {
		s.pager = pager
	}
}

// UI defines the interface for reporting scan results.
// Findings go to stdout; diagnostics and summaries go to stderr so the
// path list stays pipeable.
type UI interface {
	DisplayFindings(ctx context.Context, findings []m.Finding) error
	DisplayReadError(ctx context.Context, path m.Path, err error)
	DisplayCandidates(ctx context.Context, candidates []m.Candidate) error
	DisplayPatch(ctx context.Context, patch m.Patch, dryRun bool) error
	DisplaySummary(ctx context.Context, summary m.Summary)
}

// NewUI creates the UI for cmd. On a terminal, output is styled and long
// tables are paged.
func NewUI(cmd *cobra.Command, isTTY bool, options ...Option) UI {
	if isTTY {
		options = append([]Option{WithStyle(true), WithPager(NewTUI(cmd.OutOrStdout()))}, options...)
	}

	return NewSimpleUI(cmd, options...)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
