package planner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/xerrors"
)

// Discover runs the fixed-point discovery loop over every file under
// inputRoot: each round, every registered tool is asked to Match the
// current frontier, collisions are arbitrated, accepted candidates become
// jobs, and their declared outputs seed the next round's frontier. The
// result is a fully layered Plan ready for execution.
func Discover(tools []RegisteredTool, inputRoot string) (*Plan, error) {
	sources, err := walkSourceFiles(inputRoot)
	if err != nil {
		return nil, xerrors.Errorf("walking input root %s: %w", inputRoot, err)
	}

	known := make(map[string]struct{}, len(sources))
	for _, f := range sources {
		known[f] = struct{}{}
	}

	committed := make(map[string]struct{})
	frontier := sources

	var jobs []*Job
	jobSeq := 0

	for len(frontier) > 0 {
		var cands []candidate
		for _, file := range frontier {
			for _, rt := range tools {
				ok, err := rt.Tool.Match(file)
				if err != nil {
					return nil, xerrors.Errorf("%s.Match(%s): %w", rt.Name, file, err)
				}
				if !ok {
					continue
				}
				outs, err := rt.Tool.Outputs(file)
				if err != nil {
					return nil, xerrors.Errorf("%s.Outputs(%s): %w", rt.Name, file, err)
				}
				cleaned := make([]string, len(outs))
				for i, o := range outs {
					cleaned[i] = filepath.Clean(o)
				}
				cands = append(cands, candidate{tool: rt, file: file, outputs: cleaned})
			}
		}

		accepted := resolveCollisions(cands, committed)

		var newOutputs []string
		for _, c := range accepted {
			deps, err := c.tool.Tool.Deps(c.file)
			if err != nil {
				return nil, xerrors.Errorf("%s.Deps(%s): %w", c.tool.Name, c.file, err)
			}

			id := c.tool.Name + "#" + strconv.Itoa(jobSeq)
			jobSeq++

			cleanedDeps := make([]string, len(deps))
			for i, d := range deps {
				cd := filepath.Clean(d)
				if _, ok := known[cd]; !ok {
					return nil, &UnknownDepError{Job: id, File: cd}
				}
				cleanedDeps[i] = cd
			}

			jobs = append(jobs, &Job{
				ID:       id,
				Tool:     c.tool.Tool,
				ToolName: c.tool.Name,
				Priority: c.tool.Priority,
				Input:    c.file,
				Deps:     cleanedDeps,
				Outputs:  c.outputs,
			})

			for _, o := range c.outputs {
				known[o] = struct{}{}
				newOutputs = append(newOutputs, o)
			}
		}

		for _, o := range newOutputs {
			committed[o] = struct{}{}
		}
		frontier = newOutputs
	}

	return buildPlan(sources, jobs)
}

// walkSourceFiles returns every regular file under root, in deterministic
// order (sorted lexically by full path). Symlinks to regular files are
// included; symlinks to directories are not traversed, matching
// filepath.WalkDir's default behavior.
func walkSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			st, err := os.Stat(path)
			if err != nil || st.IsDir() {
				return nil
			}
		}
		files = append(files, filepath.Clean(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
