package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTripsBytes(t *testing.T) {
	// Odd spacing and key order must survive decode -> encode untouched.
	in := []byte("{\n  \"id\": \"acme\",\n\t\"name\":\"Acme\" ,\"extra\": [1,2,3]}")

	rec, err := Decode(in)
	require.NoError(t, err)
	require.Equal(t, "acme", rec.ID())
	require.Equal(t, in, rec.Encode())
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       "nope",
		"truncated":      `{"id": "acme"`,
		"array":          `[{"id": "acme"}]`,
		"trailing data":  `{"id": "acme"} {"id": "other"}`,
		"no id":          `{"name": "Acme"}`,
		"empty id":       `{"id": ""}`,
		"non-string id":  `{"id": 7}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestNewInjectsID(t *testing.T) {
	rec, err := New("acme", map[string]any{"name": "Acme", "id": "spoofed"})
	require.NoError(t, err)
	require.Equal(t, "acme", rec.ID())

	fields, err := rec.Fields()
	require.NoError(t, err)
	require.Equal(t, "acme", fields["id"])
	require.Equal(t, "Acme", fields["name"])

	// Output must itself decode back to the same bytes.
	again, err := Decode(rec.Encode())
	require.NoError(t, err)
	require.True(t, rec.Equal(again))
}

func TestNewRequiresID(t *testing.T) {
	_, err := New("", map[string]any{"name": "Acme"})
	require.ErrorIs(t, err, ErrMissingID)
}

func TestEncodeReturnsCopy(t *testing.T) {
	rec, err := Decode([]byte(`{"id":"acme"}`))
	require.NoError(t, err)

	out := rec.Encode()
	out[0] = 'X'
	require.Equal(t, []byte(`{"id":"acme"}`), rec.Encode())
}
