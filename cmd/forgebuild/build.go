package main

import (
	"context"
	"flag"
	"log"
	"os"
	"regexp"

	"github.com/forgekit/forge"
	"github.com/forgekit/forge/forgetools"
)

const buildHelp = `forgebuild build [-flags]

Discover source files under -input, let the built-in tools claim and
transform them, and write the results under -output.

Example:
  % forgebuild build -input ./assets -output ./dist
`

// Tool priorities: higher wins an output collision. Atlas and SVG claim
// narrow extensions and should win over the catch-all copier; archive
// claims marker files nothing else would match; symlinked paths outrank
// the plain copier so -link_pattern can carve out an exception to it.
const (
	priorityArchive  = 100
	priorityAtlas    = 90
	prioritySVG      = 90
	priorityCompress = 50
	priorityLink     = 20
	priorityCopy     = 10
)

func cmdbuild(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("build", flag.ExitOnError)
	input := fset.String("input", "", "input root to discover source files under")
	output := fset.String("output", "", "output root to write built assets to")
	parallel := fset.Bool("parallel", false, "execute independent jobs within a batch concurrently")
	jobs := fset.Int("jobs", 0, "maximum concurrent jobs when -parallel is set (0 = batch width)")
	linkPattern := fset.String("link_pattern", "", "regexp of paths to symlink instead of copy through unchanged")
	ignoreName := fset.String("ignore_name", "forgeignore", "basename (without leading dot) of per-directory ignore files")
	fset.Usage = usage(fset, buildHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}

	if *input == "" || *output == "" {
		fset.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "forgebuild: ", log.LstdFlags)
	f := forge.New(logger)

	f.Register(forgetools.NewIgnore(&forgetools.CopyingTool{}, *ignoreName), priorityCopy)
	if *linkPattern != "" {
		f.Register(forgetools.NewIgnore(&forgetools.CopyingTool{
			Mode:    forgetools.ModeSymlink,
			Pattern: regexp.MustCompile(*linkPattern),
		}, *ignoreName), priorityLink)
	}
	f.Register(&forgetools.AtlasTool{}, priorityAtlas)
	f.Register(&forgetools.SVGToPNGTool{}, prioritySVG)
	f.Register(&forgetools.CompressionTool{}, priorityCompress)
	f.Register(&forgetools.ArchiveTool{}, priorityArchive)

	return f.Build(ctx, *input, *output, forge.BuildOptions{
		Parallel: *parallel,
		Jobs:     *jobs,
	})
}
