package forgetools

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cavaliercoder/go-cpio"
	"github.com/google/renameio"
	"github.com/klauspost/pgzip"
	"golang.org/x/xerrors"

	"github.com/forgekit/forge"
)

// ArchiveTool packs every other file under a marker file's directory,
// subdirectories included, into a single gzipped cpio image. Like a build system rule file, the marker (named
// MarkerName, ".archive" by default) is itself a regular file the
// discovery loop can see and offer to tools; its presence in a directory
// is what asks forge to bundle that directory's contents, since the
// discovery loop operates over files, not directories, and has no other
// way to let a directory opt in. It generalizes the cpio/gzip packing the
// teacher uses to build initramfs images, applied here to arbitrary asset
// bundles instead of a kernel's module tree.
type ArchiveTool struct {
	forge.Roots
	logSink

	// MarkerName is the file basename that triggers archiving of its
	// containing directory. Defaults to ".archive".
	MarkerName string

	// Pattern, if non-nil, additionally restricts which marker files this
	// tool claims, matched against the marker's path relative to the
	// input root.
	Pattern *regexp.Regexp
}

func (t *ArchiveTool) ToolName() string { return "ArchiveTool" }

func (t *ArchiveTool) markerName() string {
	if t.MarkerName == "" {
		return ".archive"
	}
	return t.MarkerName
}

// Match claims files named exactly MarkerName; the directory to archive is
// the marker's parent.
func (t *ArchiveTool) Match(file string) (bool, error) {
	if filepath.Base(file) != t.markerName() {
		return false, nil
	}
	rel, err := t.RelativePath(file)
	if err != nil {
		return false, nil
	}
	if t.Pattern != nil && !t.Pattern.MatchString(rel) {
		return false, nil
	}
	return true, nil
}

// Deps declares every file under the marker's directory (recursively,
// excluding the marker itself) as a dependency, so the job graph
// accurately reflects what the archive is built from.
func (t *ArchiveTool) Deps(marker string) ([]string, error) {
	dir := filepath.Dir(marker)
	var deps []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == marker {
			return nil
		}
		deps = append(deps, path)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(deps)
	return deps, nil
}

func (t *ArchiveTool) Outputs(marker string) ([]string, error) {
	rel, err := t.RelativePath(filepath.Dir(marker))
	if err != nil {
		return nil, err
	}
	return []string{filepath.Join(t.OutputRoot, rel+".cpio.gz")}, nil
}

func (t *ArchiveTool) Build(marker string) error {
	dir := filepath.Dir(marker)
	var entries []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path != marker {
			entries = append(entries, path)
		}
		return nil
	})
	if err != nil {
		return xerrors.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(entries)

	var buf bytes.Buffer
	wr := cpio.NewWriter(&buf)
	for _, path := range entries {
		if err := writeCpioEntry(wr, dir, path); err != nil {
			return xerrors.Errorf("archiving %s: %w", path, err)
		}
	}
	if err := wr.Close(); err != nil {
		return xerrors.Errorf("closing cpio archive for %s: %w", dir, err)
	}

	outs, err := t.Outputs(marker)
	if err != nil {
		return err
	}
	dest := outs[0]
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xerrors.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}

	out, err := renameio.TempFile("", dest)
	if err != nil {
		return xerrors.Errorf("creating temp file for %s: %w", dest, err)
	}
	defer out.Cleanup()

	zw := pgzip.NewWriter(out)
	if _, err := io.Copy(zw, &buf); err != nil {
		return xerrors.Errorf("gzipping %s: %w", dest, err)
	}
	if err := zw.Close(); err != nil {
		return xerrors.Errorf("closing gzip stream for %s: %w", dest, err)
	}
	if err := out.CloseAtomicallyReplace(); err != nil {
		return xerrors.Errorf("writing %s: %w", dest, err)
	}
	t.logf("archived %s -> %s (%d files)", dir, dest, len(entries))
	return nil
}

func writeCpioEntry(wr *cpio.Writer, base, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := strings.TrimPrefix(strings.TrimPrefix(path, base), string(filepath.Separator))
	if err := wr.WriteHeader(&cpio.Header{
		Name: filepath.ToSlash(name),
		Mode: cpio.FileMode(info.Mode().Perm()),
		Size: info.Size(),
	}); err != nil {
		return err
	}
	_, err = wr.Write(data)
	return err
}
