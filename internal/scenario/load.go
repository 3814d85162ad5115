package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadMode controls how errors are handled while compiling a scenario
// directory.
type LoadMode int

const (
	// LoadModeFailFast stops on the first compile error.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll compiles every operation before returning,
	// collecting all errors encountered along the way.
	LoadModeCollectAll
)

// LoadResult is the compiled form of a scenario directory: its
// operations in file order, plus how many .cue files contributed to it.
type LoadResult struct {
	Operations []Operation
	FileCount  int
}

// Load reads every .cue file under dir, evaluates the combined package,
// and compiles its top-level "operations" list.
func Load(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{fmt.Errorf("scenario directory not found: %s", dir)}
	}
	if err != nil {
		return nil, []error{fmt.Errorf("accessing scenario directory: %w", err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("scanning %s: %w", dir, err)}
	}
	if len(cueFiles) == 0 {
		return nil, []error{fmt.Errorf("no .cue files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{fmt.Errorf("no CUE instances loaded from %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fmt.Errorf("loading CUE files: %w", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	result := &LoadResult{FileCount: len(cueFiles)}

	opsVal := value.LookupPath(cue.ParsePath("operations"))
	if !opsVal.Exists() {
		return nil, []error{fmt.Errorf("%s: no top-level \"operations\" list found", dir)}
	}

	iter, err := opsVal.List()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var errs []error
	index := 0
	for iter.Next() {
		op, compileErr := CompileOperation(iter.Value())
		if compileErr != nil {
			errs = append(errs, fmt.Errorf("operations[%d]: %w", index, compileErr))
			if mode == LoadModeFailFast {
				return result, errs
			}
			index++
			continue
		}
		if op.Kind == OpReset && !filepath.IsAbs(op.Reset.MemoryImagePath) {
			op.Reset.MemoryImagePath = filepath.Join(dir, op.Reset.MemoryImagePath)
		}
		result.Operations = append(result.Operations, *op)
		index++
	}

	return result, errs
}

func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
