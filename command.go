package main

import (
	"errors"
	"fmt"
	"io"

	"rowtree/engine"
	"rowtree/pager"
)

// MetaCommandResult classifies the outcome of a "." command.
type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandExit
	MetaCommandUnrecognizedCommand
)

// doMetaCommand handles lines beginning with '.'. Exiting flushes the pager
// before reporting MetaCommandExit; the caller is responsible for the actual
// process exit so that this stays testable.
func doMetaCommand(line string, tree *engine.BTree, pgr *pager.Pager, out io.Writer) (MetaCommandResult, error) {
	switch line {
	case ".exit":
		if err := pgr.Close(); err != nil {
			return MetaCommandExit, fmt.Errorf("close database: %w", err)
		}
		return MetaCommandExit, nil
	case ".constants":
		printConstants(out)
		return MetaCommandSuccess, nil
	case ".btree":
		if err := tree.PrintTree(out); err != nil {
			return MetaCommandSuccess, fmt.Errorf("print tree: %w", err)
		}
		return MetaCommandSuccess, nil
	default:
		return MetaCommandUnrecognizedCommand, nil
	}
}

func printConstants(out io.Writer) {
	fmt.Fprintf(out, "ROW_SIZE: %d\n", engine.RowSize)
	fmt.Fprintf(out, "LEAF_NODE_MAX_CELLS: %d\n", engine.LeafMaxCells)
	fmt.Fprintf(out, "LEAF_NODE_LEFT_SPLIT_COUNT: %d\n", engine.LeafLeftSplitCount)
	fmt.Fprintf(out, "LEAF_NODE_RIGHT_SPLIT_COUNT: %d\n", engine.LeafRightSplitCount)
	fmt.Fprintf(out, "INTERNAL_NODE_MAX_KEYS: %d\n", engine.InternalMaxKeys)
}

// ExecuteResult classifies the user-facing outcome of running a Statement.
type ExecuteResult int

const (
	ExecuteSuccess ExecuteResult = iota
	ExecuteDuplicateKey
)

// executeStatement runs stmt against tree. A non-nil error signals an
// operational failure (I/O, corrupt state) rather than a user-correctable
// condition; the caller treats that as fatal.
func executeStatement(stmt Statement, tree *engine.BTree, out io.Writer) (ExecuteResult, error) {
	switch stmt.Type {
	case StatementInsert:
		err := tree.Insert(stmt.RowToInsert.ID, stmt.RowToInsert)
		if errors.Is(err, engine.ErrDuplicateKey) {
			return ExecuteDuplicateKey, nil
		}
		if err != nil {
			return ExecuteSuccess, err
		}
		return ExecuteSuccess, nil
	case StatementSelect:
		if err := executeSelect(tree, out); err != nil {
			return ExecuteSuccess, err
		}
		return ExecuteSuccess, nil
	default:
		return ExecuteSuccess, fmt.Errorf("unhandled statement type %v", stmt.Type)
	}
}

func executeSelect(tree *engine.BTree, out io.Writer) error {
	cur, err := tree.ScanStart()
	if err != nil {
		return err
	}
	for !cur.EndOfTable {
		row, err := tree.RowAt(cur)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "(%d, %s, %s)\n", row.ID, row.Username, row.Email)
		if err := tree.Advance(cur); err != nil {
			return err
		}
	}
	return nil
}
