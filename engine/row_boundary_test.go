package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeRowFieldLengthBoundaries(t *testing.T) {
	cases := []struct {
		name      string
		username  int
		email     int
		wantError bool
	}{
		{"both empty", 0, 0, false},
		{"username at max", UsernameMaxLen, 1, true},
		{"username one under max", UsernameMaxLen - 1, 1, false},
		{"email at max", 1, EmailMaxLen, true},
		{"email one under max", 1, EmailMaxLen - 1, false},
		{"both at max", UsernameMaxLen, EmailMaxLen, true},
		{"both one under max", UsernameMaxLen - 1, EmailMaxLen - 1, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := Row{
				ID:       1,
				Username: strings.Repeat("u", tc.username),
				Email:    strings.Repeat("e", tc.email),
			}
			err := SerializeRow(row, make([]byte, RowSize))
			if tc.wantError {
				require.Error(t, err)
				var tooLong *ErrFieldTooLong
				require.ErrorAs(t, err, &tooLong)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDuplicateKeyTableDriven(t *testing.T) {
	cases := []struct {
		name   string
		first  uint32
		second uint32
		dup    bool
	}{
		{"same key rejected", 5, 5, true},
		{"adjacent keys accepted", 5, 6, false},
		{"zero then max accepted", 0, 4294967295, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree, _, _ := newTempTree(t)
			require.NoError(t, tree.Insert(tc.first, row(tc.first)))
			err := tree.Insert(tc.second, row(tc.second))
			if tc.dup {
				require.ErrorIs(t, err, ErrDuplicateKey)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
