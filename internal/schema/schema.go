// Package schema validates persisted cart snapshots against a CUE
// schema.
//
// The runtime core never rejects a snapshot on schema grounds - a
// malformed slot simply loads as an empty cart. This package exists for
// the places that want a loud failure instead of a silent fallback: the
// scenario harness checks every snapshot it produces, and tests use it
// to pin the wire format.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed snapshot.cue
var snapshotCUE string

var compileOnce = sync.OnceValues(compileSchema)

// compileSchema builds the #Snapshot definition once per process.
func compileSchema() (cue.Value, error) {
	ctx := cuecontext.New()

	v := ctx.CompileString(snapshotCUE, cue.Filename("snapshot.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile snapshot schema: %w", err)
	}

	def := v.LookupPath(cue.ParsePath("#Snapshot"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("lookup #Snapshot: %w", err)
	}
	return def, nil
}

// Validate checks that data is a well-formed snapshot: a JSON array of
// line items with non-empty ids, quantities >= 1 and non-negative unit
// prices. Returns nil when the snapshot conforms.
func Validate(data []byte) error {
	def, err := compileOnce()
	if err != nil {
		return err
	}

	expr, err := cuejson.Extract("snapshot.json", data)
	if err != nil {
		return fmt.Errorf("snapshot is not valid JSON: %w", err)
	}

	val := def.Context().BuildExpr(expr)
	if err := val.Err(); err != nil {
		return fmt.Errorf("build snapshot value: %w", err)
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("snapshot does not conform to schema: %w", err)
	}
	return nil
}
