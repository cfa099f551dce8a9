// Package fragment loads and validates the equal-length fragments that
// sbhasm assembles.
//
// A fragment is identified by its 0-based position in the input. Duplicate
// fragments are kept as separate entries: they count separately when an
// assembly is scored.
//
// # Input Format
//
// Fragments are read one per line. Blank lines are skipped and whitespace
// around a fragment (including a Windows carriage return) is stripped:
//
//	AAAB
//	AABC
//
//	ABCD
//
// # Validation
//
// [New] and the readers reject:
//   - an empty collection ([errors.ErrCodeEmptyInput])
//   - fragments containing whitespace or control characters
//   - fragments whose length differs from the first fragment
//
// Differing lengths are a precondition violation; the engine never guesses
// at how to treat them.
package fragment

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	errs "github.com/matzehuels/sbhasm/pkg/errors"
)

// maxLineSize bounds a single input line. Fragments are short, but the
// default bufio.Scanner limit (64 KiB) is lifted for unusual inputs.
const maxLineSize = 1 << 20

// Set is an immutable collection of equal-length fragments.
// The zero value is an empty set and is not valid input to the engine.
type Set struct {
	frags []string
	width int
}

// New validates frags and returns a Set that owns a copy of them.
func New(frags []string) (Set, error) {
	if len(frags) == 0 {
		return Set{}, errs.New(errs.ErrCodeEmptyInput, "no fragments provided")
	}
	width := len(frags[0])
	for i, f := range frags {
		if err := errs.ValidateFragment(i, f); err != nil {
			return Set{}, err
		}
		if len(f) != width {
			return Set{}, errs.New(errs.ErrCodeInvalidInput,
				"fragment %d has length %d, want %d (all fragments must share one length)", i, len(f), width)
		}
	}
	return Set{frags: append([]string(nil), frags...), width: width}, nil
}

// Len returns the number of fragments, duplicates included.
func (s Set) Len() int { return len(s.frags) }

// Width returns the common fragment length.
func (s Set) Width() int { return s.width }

// At returns fragment i.
func (s Set) At(i int) string { return s.frags[i] }

// Strings returns a copy of the fragments in input order.
func (s Set) Strings() []string { return append([]string(nil), s.frags...) }

// Read parses fragments from r, one per line. Surrounding whitespace,
// including a trailing \r, is dropped; whitespace inside a fragment is an error.
//
// Read returns an [errors.ErrCodeEmptyInput] error if r contains no
// non-blank lines, and an [errors.ErrCodeIO] error if reading fails.
// Read does not close r.
func Read(r io.Reader) (Set, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)

	var frags []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		frags = append(frags, line)
	}
	if err := sc.Err(); err != nil {
		return Set{}, errs.Wrap(errs.ErrCodeIO, err, "read fragments")
	}
	return New(frags)
}

// Import reads the fragment file at path.
//
// A missing file yields an [errors.ErrCodeFileNotFound] error; other open
// failures yield [errors.ErrCodeIO]. Validation errors are the same as for [Read].
func Import(path string) (Set, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Set{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return Set{}, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return Set{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
