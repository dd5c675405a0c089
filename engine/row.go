package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Field widths per the fixed three-column schema. Username and email are
// stored NUL-padded so deserialization can recover the original length.
const (
	UsernameMaxLen = 32
	EmailMaxLen    = 255

	idSize       = 4
	usernameSize = UsernameMaxLen + 1 // + NUL
	emailSize    = EmailMaxLen + 1    // + NUL

	idOffset       = 0
	usernameOffset = idOffset + idSize
	emailOffset    = usernameOffset + usernameSize

	// RowSize is the serialized width of one row: 4 + 33 + 256.
	RowSize = emailOffset + emailSize
)

// Row is one record: id plus the username/email text columns.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// ErrFieldTooLong is returned by SerializeRow when Username or Email is not
// shorter than Max (UsernameMaxLen or EmailMaxLen); a field of exactly Max
// bytes is rejected.
type ErrFieldTooLong struct {
	Field string
	Len   int
	Max   int
}

func (e *ErrFieldTooLong) Error() string {
	return fmt.Sprintf("%s length %d must be less than %d", e.Field, e.Len, e.Max)
}

// SerializeRow writes row into dst, which must be exactly RowSize bytes.
func SerializeRow(row Row, dst []byte) error {
	if len(dst) != RowSize {
		return fmt.Errorf("engine: SerializeRow: dst length %d, want %d", len(dst), RowSize)
	}
	if len(row.Username) >= UsernameMaxLen {
		return &ErrFieldTooLong{Field: "username", Len: len(row.Username), Max: UsernameMaxLen}
	}
	if len(row.Email) >= EmailMaxLen {
		return &ErrFieldTooLong{Field: "email", Len: len(row.Email), Max: EmailMaxLen}
	}

	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[idOffset:idOffset+idSize], row.ID)
	copy(dst[usernameOffset:usernameOffset+usernameSize], row.Username)
	copy(dst[emailOffset:emailOffset+emailSize], row.Email)
	return nil
}

// DeserializeRow reads a Row back out of src, which must be exactly RowSize
// bytes.
func DeserializeRow(src []byte) (Row, error) {
	if len(src) != RowSize {
		return Row{}, fmt.Errorf("engine: DeserializeRow: src length %d, want %d", len(src), RowSize)
	}
	id := binary.LittleEndian.Uint32(src[idOffset : idOffset+idSize])
	username := trimNUL(src[usernameOffset : usernameOffset+usernameSize])
	email := trimNUL(src[emailOffset : emailOffset+emailSize])
	return Row{ID: id, Username: username, Email: email}, nil
}

func trimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
