// Command forgebuild drives the forge asset build pipeline from the
// command line: discover and build an asset tree, or serve one for local
// preview.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/forgekit/forge"
	"github.com/forgekit/forge/internal/oninterrupt"
)

func funcmain() error {
	flag.Parse()

	type cmd struct {
		fn func(ctx context.Context, args []string) error
	}
	verbs := map[string]cmd{
		"build": {cmdbuild},
		"serve": {cmdserve},
	}

	args := flag.Args()
	verb := "build"
	if len(args) > 0 {
		verb, args = args[0], args[1:]
	}

	if verb == "help" {
		fmt.Fprintln(os.Stderr, "forgebuild [-flags] <command> [-flags] <args>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "\tbuild  - discover and build an asset tree")
		fmt.Fprintln(os.Stderr, "\tserve  - serve a built output tree for local preview")
		return nil
	}

	c, ok := verbs[verb]
	if !ok {
		return fmt.Errorf("unknown command %q", verb)
	}

	ctx, cancel := context.WithCancel(context.Background())
	oninterrupt.Register(cancel)

	err := c.fn(ctx, args)
	if atErr := forge.RunAtExit(); atErr != nil && err == nil {
		err = atErr
	}
	return err
}

func main() {
	if err := funcmain(); err != nil {
		log.Fatal(err)
	}
}
