package market

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLength is returned when decoding bytes that cannot be a valid encoding.
var ErrInvalidLength = errors.New("market: invalid encoded length")

// Availability is a set of canonical country codes.
//
// The zero value is the empty set. It is backed by an array, so assigning or returning an
// Availability copies it; callers can never mutate a stored value through a copy.
type Availability struct {
	bits [ByteLen]byte
}

// Parse builds an Availability from upstream codes. Codes are matched case-insensitively;
// codes outside the canonical list are returned in unknown and otherwise ignored.
func Parse(codes []string) (a Availability, unknown []string) {
	for _, code := range codes {
		if !a.Add(code) {
			unknown = append(unknown, code)
		}
	}
	return a, unknown
}

// Of builds an Availability and panics on unknown codes. Intended for tests and constants.
func Of(codes ...string) Availability {
	a, unknown := Parse(codes)
	if len(unknown) > 0 {
		panic(fmt.Sprintf("market: unknown codes %v", unknown))
	}
	return a
}

// Add inserts code and reports whether it is canonical.
func (a *Availability) Add(code string) bool {
	i, ok := Index(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return false
	}
	a.bits[i/8] |= 1 << (i % 8)
	return true
}

// Remove deletes code from the set.
func (a *Availability) Remove(code string) {
	if i, ok := Index(strings.ToUpper(code)); ok {
		a.bits[i/8] &^= 1 << (i % 8)
	}
}

// Has reports whether code is a member.
func (a Availability) Has(code string) bool {
	i, ok := Index(strings.ToUpper(code))
	if !ok {
		return false
	}
	return a.bits[i/8]&(1<<(i%8)) != 0
}

// Len returns the number of members.
func (a Availability) Len() int {
	n := 0
	for i := 0; i < Size; i++ {
		if a.bits[i/8]&(1<<(i%8)) != 0 {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (a Availability) IsEmpty() bool {
	return a == Availability{}
}

// Codes returns the members in canonical order.
func (a Availability) Codes() []string {
	out := []string{}
	for i := 0; i < Size; i++ {
		if a.bits[i/8]&(1<<(i%8)) != 0 {
			out = append(out, canonical[i])
		}
	}
	return out
}

// Equal compares by content.
func (a Availability) Equal(b Availability) bool {
	return a == b
}

// Union returns the members of a or b.
func (a Availability) Union(b Availability) Availability {
	for i := range a.bits {
		a.bits[i] |= b.bits[i]
	}
	return a
}

// Encode returns a freshly allocated ByteLen-byte encoding.
func (a Availability) Encode() []byte {
	out := make([]byte, ByteLen)
	copy(out, a.bits[:])
	return out
}

// Decode is the inverse of [Availability.Encode]. A nil or empty input decodes to the empty set.
func Decode(b []byte) (Availability, error) {
	var a Availability
	if len(b) == 0 {
		return a, nil
	}
	if len(b) != ByteLen {
		return a, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), ByteLen)
	}
	if tail := Size % 8; tail != 0 && b[ByteLen-1]>>tail != 0 {
		return a, fmt.Errorf("%w: bits set past position %d", ErrInvalidLength, Size-1)
	}
	copy(a.bits[:], b)
	return a, nil
}

func (a Availability) String() string {
	return strings.Join(a.Codes(), ",")
}

// Value implements [driver.Valuer]; the column stores the raw encoding.
func (a Availability) Value() (driver.Value, error) {
	return a.Encode(), nil
}

// Scan implements [sql.Scanner] for BLOB columns. NULL scans to the empty set.
func (a *Availability) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Availability{}
		return nil
	case []byte:
		decoded, err := Decode(v)
		if err != nil {
			return err
		}
		*a = decoded
		return nil
	default:
		return fmt.Errorf("market: cannot scan %T into Availability", src)
	}
}

// MarshalJSON renders the set as a list of codes.
func (a Availability) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Codes())
}

// UnmarshalJSON accepts a list of codes; unknown codes are an error.
func (a *Availability) UnmarshalJSON(data []byte) error {
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	parsed, unknown := Parse(codes)
	if len(unknown) > 0 {
		return fmt.Errorf("market: unknown codes %v", unknown)
	}
	*a = parsed
	return nil
}
