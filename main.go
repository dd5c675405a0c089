// Command rowtree is an embedded key/value store with a tiny SQL-like REPL,
// backed by a disk-resident B+tree laid out in 4096-byte pages.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"rowtree/engine"
	"rowtree/pager"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not initialize logger:", err)
		return 1
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if len(os.Args) != 2 {
		sugar.Errorw("missing required argument", "reason", "Must supply a database filename.")
		return 1
	}
	path := os.Args[1]

	pgr, err := pager.Open(path)
	if err != nil {
		sugar.Errorw("failed to open database file", "path", path, "error", err)
		fmt.Fprintln(os.Stderr, "could not open database:", err)
		return 1
	}

	tree, err := engine.Open(pgr)
	if err != nil {
		sugar.Errorw("failed to initialize storage engine", "path", path, "error", err)
		fmt.Fprintln(os.Stderr, "could not initialize database:", err)
		return 1
	}
	sugar.Infow("database opened", "path", path, "pages", pgr.NumPages())

	if err := RunREPL(os.Stdin, os.Stdout, tree, pgr, sugar); err != nil {
		sugar.Errorw("fatal storage engine error", "error", err)
		fmt.Fprintln(os.Stdout, "Fatal error:", err)
		return 1
	}
	sugar.Infow("database closed", "path", path)
	return 0
}
