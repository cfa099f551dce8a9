package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/sbhasm/pkg/cache"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	errs "github.com/matzehuels/sbhasm/pkg/errors"
	"github.com/matzehuels/sbhasm/pkg/pipeline"
)

// ReadResult decodes a JSON result from r.
//
// ReadResult returns an [errors.ErrCodeInvalidInput] error if the JSON is
// malformed or if the order holds a negative or repeated fragment index.
// ReadResult does not close r.
func ReadResult(r io.Reader) (*pipeline.Result, error) {
	var res pipeline.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode result")
	}

	seen := make(map[int]bool, len(res.Order))
	for _, f := range res.Order {
		if f < 0 || seen[f] {
			return nil, errs.New(errs.ErrCodeInvalidInput, "result order has invalid or repeated fragment %d", f)
		}
		seen[f] = true
	}
	return &res, nil
}

// ImportResult reads the JSON result file at path.
//
// A missing file yields an [errors.ErrCodeFileNotFound] error. Decoding
// errors are the same as for [ReadResult].
func ImportResult(path string) (*pipeline.Result, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	res, err := ReadResult(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// CheckFragments verifies that res was computed from set.
func CheckFragments(res *pipeline.Result, set fragment.Set) error {
	if fp := cache.Fingerprint(set.Strings()); fp != res.Fingerprint {
		return errs.New(errs.ErrCodeInvalidInput, "result was computed from different fragments (fingerprint %.12s, want %.12s)", res.Fingerprint, fp)
	}
	for _, f := range res.Order {
		if f >= set.Len() {
			return errs.New(errs.ErrCodeInvalidInput, "result order references fragment %d of %d", f, set.Len())
		}
	}
	return nil
}
