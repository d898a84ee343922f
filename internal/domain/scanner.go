package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"mockcheck.dev/pkg/mockcheck/internal/adapter"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

// ScanArgs selects the files a scan looks at.
type ScanArgs struct {
	Root m.Path
	// Extensions are matched as file name suffixes; empty accepts every file.
	Extensions []string
	// Exclude holds doublestar patterns matched against slash paths relative to Root.
	Exclude []string
	Threads int
}

// Scanner walks a test tree and evaluates every candidate file.
type Scanner interface {
	// Scan validates the root, then streams one Evaluation per candidate file.
	// The channel closes when traversal finishes or ctx is cancelled.
	Scan(ctx context.Context, args ScanArgs) (<-chan m.Evaluation, error)
	// DefectivePaths drains a scan and returns the defective paths sorted.
	DefectivePaths(ctx context.Context, args ScanArgs) ([]m.Path, error)
}

type scanner struct {
	adapter.SourceFSAdapter
	Detector
}

// NewScanner creates a Scanner backed by the provided filesystem adapter and detector.
func NewScanner(fsAdapter adapter.SourceFSAdapter, detector Detector) Scanner {
	return &scanner{
		SourceFSAdapter: fsAdapter,
		Detector:        detector,
	}
}

func (s *scanner) Scan(ctx context.Context, args ScanArgs) (<-chan m.Evaluation, error) {
	if err := s.validateRoot(args.Root); err != nil {
		return nil, err
	}

	for _, pattern := range args.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	threads := normalizeThreads(args.Threads)
	paths := make(chan m.Path, threads)
	out := make(chan m.Evaluation, threads)

	slog.Debug("Starting scan", "root", args.Root, "threads", threads)

	go func() {
		defer close(paths)

		s.walk(ctx, args, paths)
	}()

	go func() {
		defer close(out)

		var group errgroup.Group

		group.SetLimit(threads)

		for path := range paths {
			group.Go(func() error {
				evaluation := s.evaluate(path)

				select {
				case <-ctx.Done():
				case out <- evaluation:
				}

				return nil
			})
		}

		_ = group.Wait()
	}()

	return out, nil
}

func (s *scanner) DefectivePaths(ctx context.Context, args ScanArgs) ([]m.Path, error) {
	evaluations, err := s.Scan(ctx, args)
	if err != nil {
		return nil, err
	}

	var paths []m.Path

	for evaluation := range evaluations {
		if evaluation.Defective() {
			paths = append(paths, evaluation.Path)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i] < paths[j]
	})

	return paths, nil
}

func (s *scanner) validateRoot(root m.Path) error {
	info, err := s.FileInfo(root)
	if err != nil {
		return fmt.Errorf("%w: %w", m.ErrInvalidRoot, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", m.ErrInvalidRoot, root)
	}

	return nil
}

func (s *scanner) walk(ctx context.Context, args ScanArgs, paths chan<- m.Path) {
	err := s.Walk(args.Root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			slog.Warn("Skipping unreadable path", "path", path, "error", err)

			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() || !hasExtension(info.Name(), args.Extensions) {
			return nil
		}

		if s.excluded(args.Root, path, args.Exclude) {
			slog.Debug("Excluded file", "path", path)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case paths <- m.Path(path):
			return nil
		}
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		slog.Error("Walk failed", "root", args.Root, "error", err)
	}
}

func (s *scanner) excluded(root m.Path, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	rel, err := s.RelPath(root, m.Path(path))
	if err != nil {
		rel = m.Path(path)
	}

	slashed := filepath.ToSlash(string(rel))

	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
	}

	return false
}

func (s *scanner) evaluate(path m.Path) m.Evaluation {
	content, err := s.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read file", "path", path, "error", err)
		return m.Evaluation{Path: path, Err: fmt.Errorf("read file: %w", err)}
	}

	if !utf8.Valid(content) {
		slog.Error("File is not valid UTF-8", "path", path)
		return m.Evaluation{Path: path, Err: errors.New("read file: not valid UTF-8")}
	}

	evaluation := s.Evaluate(m.SourceFile{Path: path, Content: string(content)})
	slog.Debug("Evaluated file", "path", path, "declarations", evaluation.Declarations, "findings", len(evaluation.Findings))

	return evaluation
}

func hasExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}

	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}

	return false
}

// normalizeThreads ensures at least one worker.
func normalizeThreads(threads int) int {
	if threads <= 0 {
		return 1
	}

	return threads
}
