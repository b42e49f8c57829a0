package anonymize

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestAuthor(t *testing.T) {
	tests := []struct {
		name       string
		iterations uint64
		key        string
		want       string
	}{
		{"name", 2, "key", "dbed14a8581c895c349107b8f10a79be"},
		{"name", 0, "key", "8a301021e2587bd27f22eb134e26e9f9"},
		{"", 0, "", "a69f73cca23a9ac5c8b567dc185a756e"},
		{"steveklabnik", 1000, "secret", "0810e985ec0a6011ce64de33176791cd"},
	}
	for _, tt := range tests {
		got := Author(tt.name, tt.iterations, []byte(tt.key))
		require.Equal(t, tt.want, got, "Author(%q, %d, %q)", tt.name, tt.iterations, tt.key)
	}
}

func TestAuthors(t *testing.T) {
	got := Authors([]string{"a", "b", "a"}, 3, []byte("k"))
	require.Len(t, got, 3)
	require.Equal(t, got[0], got[2])
	require.NotEqual(t, got[0], got[1])
	require.Equal(t, Author("b", 3, []byte("k")), got[1])
	require.NotEqual(t, got[0], Authors([]string{"a"}, 3, []byte("other"))[0])
}

func TestAuthorBufferLayout(t *testing.T) {
	key := []byte("key")
	first := sha3.Sum512(append([]byte("name"), key...))

	var buf [bufferSize]byte
	copy(buf[:], first[:])
	second := sha3.Sum512(append(buf[:], key...))

	require.Equal(t, hex.EncodeToString(first[:16]), Author("name", 0, key))
	require.Equal(t, hex.EncodeToString(second[:16]), Author("name", 1, key))
}
