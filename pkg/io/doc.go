// Package io provides JSON import and export for assembly results.
//
// # Overview
//
// A saved result lets a run be inspected or re-rendered later without
// repeating the search. The file is the JSON form of [pipeline.Result]:
//
//	{
//	  "order": [0, 1, 2],
//	  "sequence": "AAABCD",
//	  "score": 3,
//	  "length": 6,
//	  "fragments": 3,
//	  "width": 4,
//	  "fingerprint": "9c1f…",
//	  "seed_start": 0,
//	  "seed_score": 3,
//	  "iterations": 100000,
//	  ...
//	}
//
// # Fingerprints
//
// The fingerprint identifies the fragment collection the result was computed
// from (see [cache.Fingerprint]). [CheckFragments] compares it against a
// fragment set before the order is applied to it, so a result is never
// paired with the wrong input.
//
// # Import
//
// Use [ImportResult] to read a result from a file path, or [ReadResult] to
// read from any io.Reader. Both reject orders with negative or repeated
// indices.
//
// # Export
//
// Use [ExportResult] to write a result to a file, or [WriteResult] to write
// to any io.Writer. Output is indented for readability.
//
// [pipeline.Result]: github.com/matzehuels/sbhasm/pkg/pipeline.Result
// [cache.Fingerprint]: github.com/matzehuels/sbhasm/pkg/cache.Fingerprint
package io
