package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/codebook/internal/ir"
)

// LoadVocabFiles compiles the given CUE files as one unified value and
// returns the vocabulary it declares. Positions in errors name the file.
func LoadVocabFiles(paths ...string) (*ir.VocabSpec, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("load vocab: no files")
	}

	ctx := cuecontext.New()
	v := ctx.CompileString("")
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load vocab: %w", err)
		}
		fv := ctx.CompileBytes(data, cue.Filename(path))
		if err := fv.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		v = v.Unify(fv)
	}
	return CompileVocab(v)
}
