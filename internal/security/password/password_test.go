package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	h, err := Hash("secret123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "$2"), "bcrypt prefix")
	require.True(t, Verify("secret123", h))
	require.False(t, Verify("secret124", h))
}

func TestHash_EmptyRejected(t *testing.T) {
	_, err := Hash("")
	require.Error(t, err)
}

func TestHash_Salted(t *testing.T) {
	h1, err := Hash("secret123")
	require.NoError(t, err)
	h2, err := Hash("secret123")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2, "same plaintext must not produce the same hash")
}

func TestVerify_MalformedHashIsJustFalse(t *testing.T) {
	require.False(t, Verify("secret123", ""))
	require.False(t, Verify("secret123", "not-a-hash"))
}

func TestHashWithCost_OutOfRangeFallsBack(t *testing.T) {
	h, err := HashWithCost("secret123", 99)
	require.NoError(t, err)
	require.True(t, Verify("secret123", h))
}
