package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/lpar/gzipped/v2"

	"github.com/forgekit/forge"
	"github.com/forgekit/forge/internal/oninterrupt"
)

const serveHelp = `forgebuild serve [-flags]

Serve a built output tree over HTTP for local preview, transparently
gzip-compressing responses for clients that accept it.

Example:
  % forgebuild serve -root ./dist -listen localhost:8080
`

func cmdserve(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("serve", flag.ExitOnError)
	root := fset.String("root", "", "output root to serve")
	listen := fset.String("listen", "localhost:8080", "address to listen on")
	fset.Usage = usage(fset, serveHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *root == "" {
		fset.Usage()
		os.Exit(2)
	}

	srv := &http.Server{
		Addr:    *listen,
		Handler: gzipped.FileServer(gzipped.Dir(*root)),
	}
	oninterrupt.Register(func() {
		srv.Close()
	})
	forge.RegisterAtExit(func() error {
		return srv.Close()
	})

	log.Printf("serving %s on http://%s", *root, *listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
