// Package model defines the data structures for mock completeness checks.
package model

// Path represents a file system path.
type Path string

// SourceFile represents a candidate test file and its full contents.
type SourceFile struct {
	Path    Path
	Content string
}

// Candidate is a test file that declares at least one mock of the target
// module, together with the number of such declarations.
type Candidate struct {
	Path         Path
	Declarations int
}
