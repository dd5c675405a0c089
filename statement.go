package main

import (
	"strconv"
	"strings"

	"rowtree/engine"
)

// StatementType distinguishes the two data statements the grammar supports.
type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

// Statement is a parsed (but not yet executed) insert or select.
type Statement struct {
	Type        StatementType
	RowToInsert engine.Row
}

// PrepareResult classifies the outcome of parsing one input line.
type PrepareResult int

const (
	PrepareSuccess PrepareResult = iota
	PrepareNegativeID
	PrepareStringTooLong
	PrepareSyntaxError
	PrepareUnrecognizedStatement
)

// prepareStatement tokenizes line on whitespace and validates it against the
// insert/select grammar. It never touches the storage engine.
func prepareStatement(line string) (Statement, PrepareResult) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Statement{}, PrepareUnrecognizedStatement
	}
	switch fields[0] {
	case "insert":
		return prepareInsert(fields)
	case "select":
		if len(fields) != 1 {
			return Statement{}, PrepareSyntaxError
		}
		return Statement{Type: StatementSelect}, PrepareSuccess
	default:
		return Statement{}, PrepareUnrecognizedStatement
	}
}

func prepareInsert(fields []string) (Statement, PrepareResult) {
	if len(fields) != 4 {
		return Statement{}, PrepareSyntaxError
	}
	idField, username, email := fields[1], fields[2], fields[3]

	if strings.HasPrefix(idField, "-") {
		return Statement{}, PrepareNegativeID
	}
	id, err := strconv.ParseUint(idField, 10, 32)
	if err != nil {
		return Statement{}, PrepareSyntaxError
	}
	if len(username) >= engine.UsernameMaxLen {
		return Statement{}, PrepareStringTooLong
	}
	if len(email) >= engine.EmailMaxLen {
		return Statement{}, PrepareStringTooLong
	}

	return Statement{
		Type: StatementInsert,
		RowToInsert: engine.Row{
			ID:       uint32(id),
			Username: username,
			Email:    email,
		},
	}, PrepareSuccess
}
