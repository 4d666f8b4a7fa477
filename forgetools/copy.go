package forgetools

import (
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/forgekit/forge"
)

// Mode selects what CopyingTool does with a matched file.
type Mode int

const (
	// ModeCopy duplicates the file's bytes into the output tree.
	ModeCopy Mode = iota
	// ModeSymlink creates a symlink in the output tree pointing at the
	// resolved input file, rather than duplicating its bytes.
	ModeSymlink
)

// CopyingTool passes every file whose path matches Pattern straight
// through to the output tree, unchanged, either by copying or symlinking
// it depending on Mode.
type CopyingTool struct {
	forge.Roots
	logSink

	// Pattern restricts which files this tool claims; nil matches every
	// file under the input root or the output root.
	Pattern *regexp.Regexp

	// Mode selects copy vs. symlink. Zero value is ModeCopy.
	Mode Mode
}

// ToolName returns "CopyingTool" or "LinkingTool" depending on Mode.
func (t *CopyingTool) ToolName() string {
	if t.Mode == ModeSymlink {
		return "LinkingTool"
	}
	return "CopyingTool"
}

func (t *CopyingTool) Match(file string) (bool, error) {
	rel, err := t.RelativePath(file)
	if err != nil {
		return false, nil
	}
	if t.Pattern != nil && !t.Pattern.MatchString(rel) {
		return false, nil
	}
	return true, nil
}

func (t *CopyingTool) Deps(file string) ([]string, error) { return nil, nil }

func (t *CopyingTool) Outputs(file string) ([]string, error) {
	rel, err := t.RelativePath(file)
	if err != nil {
		return nil, err
	}
	return []string{filepath.Join(t.OutputRoot, rel)}, nil
}

func (t *CopyingTool) Build(file string) error {
	outs, err := t.Outputs(file)
	if err != nil {
		return err
	}
	dest := outs[0]
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xerrors.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}

	if t.Mode == ModeSymlink {
		resolved, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		os.Remove(dest)
		if err := os.Symlink(resolved, dest); err != nil {
			return xerrors.Errorf("symlinking %s -> %s: %w", dest, resolved, err)
		}
		t.logf("linked %s -> %s", dest, resolved)
		return nil
	}

	if err := copyFileAtomic(file, dest); err != nil {
		return err
	}
	t.logf("copied %s -> %s", file, dest)
	return nil
}

func copyFileAtomic(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return xerrors.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := renameio.TempFile("", dest)
	if err != nil {
		return xerrors.Errorf("creating temp file for %s: %w", dest, err)
	}
	defer out.Cleanup()

	if _, err := io.Copy(out, in); err != nil {
		return xerrors.Errorf("copying %s: %w", src, err)
	}
	if st, err := os.Stat(src); err == nil {
		out.Chmod(st.Mode())
	}
	return out.CloseAtomicallyReplace()
}
