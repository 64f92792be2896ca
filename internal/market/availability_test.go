package market

import (
	"encoding/json"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalList(t *testing.T) {
	assert.Equal(t, 249, Size)
	assert.Equal(t, 32, ByteLen)

	codes := Codes()
	assert.True(t, sort.StringsAreSorted(codes), "canonical codes must stay in ascending order")

	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		require.Len(t, code, 2)
		require.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}

	codes[0] = "ZZ"
	assert.Equal(t, "AD", Codes()[0], "Codes must return a copy")
}

func TestEncode(t *testing.T) {
	t.Run("empty set is all zero bytes", func(t *testing.T) {
		var a Availability
		assert.Equal(t, make([]byte, ByteLen), a.Encode())
	})

	t.Run("bit layout is lsb first", func(t *testing.T) {
		a := Of("AD", "AF", "AZ")
		b := a.Encode()
		require.Len(t, b, ByteLen)
		// AD=0, AF=2 -> byte 0 = 0b101; AZ=15 -> byte 1 bit 7.
		assert.Equal(t, byte(0b00000101), b[0])
		assert.Equal(t, byte(0b10000000), b[1])
	})

	t.Run("last canonical code", func(t *testing.T) {
		a := Of("ZW")
		b := a.Encode()
		idx, ok := Index("ZW")
		require.True(t, ok)
		assert.Equal(t, Size-1, idx)
		assert.Equal(t, byte(1), b[ByteLen-1])
	})

	t.Run("encode returns a fresh slice", func(t *testing.T) {
		a := Of("US")
		b := a.Encode()
		b[0] = 0xFF
		assert.Equal(t, []string{"US"}, a.Codes())
	})
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	all := Codes()

	for n := 0; n < 200; n++ {
		var want []string
		for _, code := range all {
			if rng.Intn(3) == 0 {
				want = append(want, code)
			}
		}

		a, unknown := Parse(want)
		require.Empty(t, unknown)

		decoded, err := Decode(a.Encode())
		require.NoError(t, err)
		assert.True(t, decoded.Equal(a))
		if want == nil {
			want = []string{}
		}
		assert.Equal(t, want, decoded.Codes())
	}

	full, _ := Parse(all)
	decoded, err := Decode(full.Encode())
	require.NoError(t, err)
	assert.Equal(t, Size, decoded.Len())
}

func TestDecode(t *testing.T) {
	t.Run("nil decodes to empty", func(t *testing.T) {
		a, err := Decode(nil)
		require.NoError(t, err)
		assert.True(t, a.IsEmpty())
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := Decode([]byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("bits past the enumeration", func(t *testing.T) {
		b := make([]byte, ByteLen)
		b[ByteLen-1] = 0b10
		_, err := Decode(b)
		assert.ErrorIs(t, err, ErrInvalidLength)
	})
}

func TestParse(t *testing.T) {
	a, unknown := Parse([]string{"us", " GB ", "XK", "US"})
	assert.Equal(t, []string{"XK"}, unknown)
	assert.Equal(t, []string{"GB", "US"}, a.Codes())
	assert.True(t, a.Has("gb"))
	assert.False(t, a.Has("XK"))
	assert.Equal(t, 2, a.Len())
}

func TestValueSemantics(t *testing.T) {
	original := Of("US", "CA")
	copied := original
	copied.Add("MX")
	copied.Remove("US")

	assert.Equal(t, []string{"CA", "US"}, original.Codes())
	assert.Equal(t, []string{"CA", "MX"}, copied.Codes())
	assert.False(t, original.Equal(copied))

	union := original.Union(copied)
	assert.Equal(t, []string{"CA", "MX", "US"}, union.Codes())
	assert.Equal(t, []string{"CA", "US"}, original.Codes())
}

func TestSQLAndJSON(t *testing.T) {
	a := Of("SE", "NO")

	v, err := a.Value()
	require.NoError(t, err)

	var scanned Availability
	require.NoError(t, scanned.Scan(v))
	assert.True(t, scanned.Equal(a))

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsEmpty())
	assert.Error(t, scanned.Scan("SE"))

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `["NO","SE"]`, string(data))

	var fromJSON Availability
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.True(t, fromJSON.Equal(a))
	assert.Error(t, json.Unmarshal([]byte(`["XK"]`), &fromJSON))
}
