package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"rowtree/engine"
	"rowtree/pager"
)

// RunREPL drives the read-parse-execute loop until EOF or ".exit". It
// returns a non-nil error only for operational failures (I/O, corrupt tree
// state); the caller decides the process exit code.
func RunREPL(in io.Reader, out io.Writer, tree *engine.BTree, pgr *pager.Pager, logger *zap.SugaredLogger) error {
	reader := NewInputReader(in)
	for {
		printPrompt(out)
		line, ok := reader.ReadLine()
		if !ok {
			return nil
		}

		exit, err := processLine(line, tree, pgr, out, logger)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
	}
}

func processLine(line string, tree *engine.BTree, pgr *pager.Pager, out io.Writer, logger *zap.SugaredLogger) (exit bool, err error) {
	if len(line) > 0 && line[0] == '.' {
		result, err := doMetaCommand(line, tree, pgr, out)
		if err != nil {
			return false, err
		}
		switch result {
		case MetaCommandExit:
			return true, nil
		case MetaCommandSuccess:
			return false, nil
		case MetaCommandUnrecognizedCommand:
			fmt.Fprintf(out, "Unrecognized command '%s'\n", line)
			return false, nil
		}
	}

	stmt, prepResult := prepareStatement(line)
	switch prepResult {
	case PrepareNegativeID:
		fmt.Fprintln(out, "ID can't be negative.")
		return false, nil
	case PrepareStringTooLong:
		fmt.Fprintln(out, "string is too long.")
		return false, nil
	case PrepareSyntaxError:
		fmt.Fprintln(out, "Syntax error. Could not parse statement.")
		return false, nil
	case PrepareUnrecognizedStatement:
		fmt.Fprintf(out, "Unrecognized command at the start %s\n", line)
		return false, nil
	}

	result, err := executeStatement(stmt, tree, out)
	if err != nil {
		logger.Errorw("storage engine operation failed", "line", line, "error", err)
		return false, err
	}
	switch result {
	case ExecuteDuplicateKey:
		fmt.Fprintln(out, "Key Already Exists.")
	case ExecuteSuccess:
		fmt.Fprintln(out, "Executed.")
	}
	return false, nil
}
