// Package domain holds the mock completeness checks and the workflows the
// CLI runs on top of them.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"mockcheck.dev/pkg/mockcheck/internal/adapter"
	"mockcheck.dev/pkg/mockcheck/internal/controller"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

// CheckArgs contains the arguments for reporting incomplete mocks.
type CheckArgs struct {
	ScanArgs
	// Strict turns any finding into an error so the process exits non-zero.
	Strict bool
}

// FixArgs contains the arguments for patching incomplete mocks.
type FixArgs struct {
	ScanArgs
	DryRun bool
}

// Workflow defines the commands the CLI exposes.
type Workflow interface {
	Check(ctx context.Context, args CheckArgs) error
	List(ctx context.Context, args ScanArgs) error
	Fix(ctx context.Context, args FixArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	controller.UI
	Scanner
	Fixer
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	ui controller.UI,
	scanner Scanner,
	fixer Fixer,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		UI:              ui,
		Scanner:         scanner,
		Fixer:           fixer,
	}
}

// Check scans the tree and prints every incomplete mock sorted by path,
// followed by a summary.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	var findings []m.Finding

	summary, err := w.collect(ctx, args.ScanArgs, func(evaluation m.Evaluation) {
		findings = append(findings, evaluation.Findings...)
	})
	if err != nil {
		return err
	}

	sortFindings(findings)

	if err := w.DisplayFindings(ctx, findings); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.DisplaySummary(ctx, summary)

	if args.Strict && summary.Defective > 0 {
		return fmt.Errorf("%w: %d file(s)", m.ErrDefectsFound, summary.Defective)
	}

	return nil
}

// List prints the files that mock the target module.
func (w *workflow) List(ctx context.Context, args ScanArgs) error {
	var candidates []m.Candidate

	_, err := w.collect(ctx, args, func(evaluation m.Evaluation) {
		if evaluation.Declarations > 0 {
			candidates = append(candidates, m.Candidate{Path: evaluation.Path, Declarations: evaluation.Declarations})
		}
	})
	if err != nil {
		return err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Path < candidates[j].Path
	})

	if err := w.DisplayCandidates(ctx, candidates); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

// Fix inserts missing members into every defective file, or prints the
// diffs when args.DryRun is set.
func (w *workflow) Fix(ctx context.Context, args FixArgs) error {
	var defective []m.Path

	summary, err := w.collect(ctx, args.ScanArgs, func(evaluation m.Evaluation) {
		if evaluation.Defective() {
			defective = append(defective, evaluation.Path)
		}
	})
	if err != nil {
		return err
	}

	sort.Slice(defective, func(i, j int) bool {
		return defective[i] < defective[j]
	})

	for _, path := range defective {
		if err := ctx.Err(); err != nil {
			return err
		}

		patched, err := w.fixFile(ctx, path, args.DryRun)
		if err != nil {
			return err
		}

		if patched {
			summary.Patched++
		}
	}

	w.DisplaySummary(ctx, summary)

	return nil
}

func (w *workflow) fixFile(ctx context.Context, path m.Path, dryRun bool) (bool, error) {
	content, err := w.ReadFile(path)
	if err != nil {
		slog.Error("Failed to re-read file for fixing", "path", path, "error", err)
		w.DisplayReadError(ctx, path, err)

		return false, nil
	}

	patch := w.Fixer.Fix(path, string(content))

	if err := w.DisplayPatch(ctx, patch, dryRun); err != nil {
		return false, fmt.Errorf("display: %w", err)
	}

	if !patch.Changed() || dryRun {
		return patch.Changed(), nil
	}

	info, err := w.FileInfo(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	if err := w.WriteFile(path, []byte(patch.Patched), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	slog.Info("Patched file", "path", path, "inserted", patch.Inserted)

	return true, nil
}

// collect drains a scan, reporting unreadable files and tallying the
// summary. fn is called for every file that was read.
func (w *workflow) collect(ctx context.Context, args ScanArgs, fn func(m.Evaluation)) (m.Summary, error) {
	var summary m.Summary

	evaluations, err := w.Scan(ctx, args)
	if err != nil {
		slog.Error("Failed to start scan", "root", args.Root, "error", err)
		return summary, fmt.Errorf("scan: %w", err)
	}

	for evaluation := range evaluations {
		summary.Scanned++

		if evaluation.Err != nil {
			summary.Failed++
			w.DisplayReadError(ctx, evaluation.Path, evaluation.Err)

			continue
		}

		if evaluation.Declarations > 0 {
			summary.Mocking++
		}

		if evaluation.Defective() {
			summary.Defective++
		}

		fn(evaluation)
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	slog.Info("Scan finished", "root", args.Root, "scanned", summary.Scanned,
		"mocking", summary.Mocking, "defective", summary.Defective, "failed", summary.Failed)

	return summary, nil
}

func sortFindings(findings []m.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}

		return findings[i].Line < findings[j].Line
	})
}
