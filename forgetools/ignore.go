package forgetools

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/forgekit/forge"
)

// Ignore wraps a forge.Tool so that files named by per-directory ignore
// files are never offered to it. An ignore file is named ".<name>" (e.g.
// Ignore(tool, "forgeignore") looks for ".forgeignore"); each non-blank,
// non-comment line is a glob pattern matched against either the file's
// path relative to the ignore file's directory, or just its base name. A
// leading "/" anchors the pattern to that directory instead of matching
// anywhere beneath it.
type Ignore struct {
	tool Tool
	name string

	inputRoot string
	whitelist map[string]bool
}

// Tool is the forge.Tool subset Ignore needs from its wrapped tool.
type Tool interface {
	Match(file string) (bool, error)
	Deps(file string) ([]string, error)
	Outputs(file string) ([]string, error)
	Build(file string) error
}

func NewIgnore(tool Tool, name string) *Ignore {
	return &Ignore{tool: tool, name: name}
}

// ToolName forwards to the wrapped tool's name, if it has one, so ignore
// wrapping is invisible in progress output.
func (ig *Ignore) ToolName() string {
	if n, ok := ig.tool.(forge.Named); ok {
		return n.ToolName()
	}
	return "Ignore"
}

// rootSetter mirrors forge's internal root-injection hook structurally, so
// Ignore can forward it to a wrapped tool built on forge.Roots without
// importing forge's unexported interface.
type rootSetter interface {
	SetRoots(inputRoot, outputRoot string)
}

// SetRoots forwards root injection to the wrapped tool. Ignore itself only
// needs the roots to compute its own whitelist, which happens in Start.
func (ig *Ignore) SetRoots(inputRoot, outputRoot string) {
	if rs, ok := ig.tool.(rootSetter); ok {
		rs.SetRoots(inputRoot, outputRoot)
	}
}

// Start computes the whitelist: every regular file under inputRoot, minus
// whatever the discovered ignore files exclude. It also forwards Start to
// the wrapped tool if it implements forge.Starter.
func (ig *Ignore) Start(inputRoot, outputRoot string) error {
	whitelist := make(map[string]bool)
	var ignoreFiles []string
	marker := "." + ig.name

	err := filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == marker {
			ignoreFiles = append(ignoreFiles, path)
			return nil
		}
		whitelist[filepath.Clean(path)] = true
		return nil
	})
	if err != nil {
		return xerrors.Errorf("walking %s for %s: %w", inputRoot, marker, err)
	}

	for _, ignoreFile := range ignoreFiles {
		base := filepath.Dir(ignoreFile)
		patterns, err := readIgnorePatterns(ignoreFile)
		if err != nil {
			return xerrors.Errorf("reading %s: %w", ignoreFile, err)
		}
		for path := range whitelist {
			for _, pattern := range patterns {
				if matchesIgnorePattern(path, pattern, base) {
					delete(whitelist, path)
					break
				}
			}
		}
	}

	ig.inputRoot = filepath.Clean(inputRoot)
	ig.whitelist = whitelist

	if starter, ok := ig.tool.(forge.Starter); ok {
		return starter.Start(inputRoot, outputRoot)
	}
	return nil
}

func readIgnorePatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// matchesIgnorePattern reports whether file (an absolute, cleaned path)
// matches pattern, an ignore-file line whose directory is base.
func matchesIgnorePattern(file, pattern, base string) bool {
	rel, err := filepath.Rel(base, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)

	if strings.HasPrefix(pattern, "/") {
		pattern = strings.TrimPrefix(pattern, "/")
		ok, _ := filepath.Match(pattern, rel)
		return ok
	}

	if ok, _ := filepath.Match(pattern, rel); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, filepath.Base(file))
	return ok
}

// Match reports false for any file under inputRoot that the ignore lists
// excluded. Files outside inputRoot (an earlier round's generated
// intermediate, say) bypass the whitelist entirely and defer straight to
// the wrapped tool, matching the ignore lists' documented scope.
func (ig *Ignore) Match(file string) (bool, error) {
	clean := filepath.Clean(file)
	rel, err := filepath.Rel(ig.inputRoot, clean)
	underInput := err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
	if underInput && !ig.whitelist[clean] {
		return false, nil
	}
	return ig.tool.Match(file)
}

func (ig *Ignore) Deps(file string) ([]string, error) { return ig.tool.Deps(file) }

func (ig *Ignore) Outputs(file string) ([]string, error) { return ig.tool.Outputs(file) }

func (ig *Ignore) Build(file string) error { return ig.tool.Build(file) }

// SetLog forwards to the wrapped tool if it accepts an injected log sink.
func (ig *Ignore) SetLog(w io.Writer) {
	if ls, ok := ig.tool.(forge.LogSetter); ok {
		ls.SetLog(w)
	}
}
