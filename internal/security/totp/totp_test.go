package totp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateSecret_FreshAndBase32(t *testing.T) {
	s1, err := GenerateSecret()
	require.NoError(t, err)
	s2, err := GenerateSecret()
	require.NoError(t, err)

	require.NotEqual(t, s1, s2, "secrets must be fresh per enrollment")
	require.NotContains(t, s1, "=", "no base32 padding")
	// 20 raw bytes -> 32 base32 chars
	require.Len(t, s1, 32)
}

func TestVerify_SkewWindow(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name   string
		offset int64
		want   bool
	}{
		{"previous step", -1, true},
		{"current step", 0, true},
		{"next step", +1, true},
		{"two steps back", -2, false},
		{"two steps ahead", +2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := CodeAt(secret, now, tc.offset)
			require.NoError(t, err)
			require.Equal(t, tc.want, Verify(secret, code, now, 1))
		})
	}
}

func TestVerify_MalformedInput(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)
	now := time.Now()

	for _, code := range []string{"", "12345", "1234567", "abcdef", "12 34 56"} {
		require.False(t, Verify(secret, code, now, 1), "code %q", code)
	}
	// bad secret is false, not an error
	require.False(t, Verify("not base32!!", "123456", now, 1))
}

func TestVerify_WrongSecretAfterRegeneration(t *testing.T) {
	old, err := GenerateSecret()
	require.NoError(t, err)
	now := time.Now()
	code, err := CodeAt(old, now, 0)
	require.NoError(t, err)

	fresh, err := GenerateSecret()
	require.NoError(t, err)
	require.False(t, Verify(fresh, code, now, 1), "code for the old secret must not verify after re-enrollment")
}

func TestKeyURI(t *testing.T) {
	uri := KeyURI("Budget HQ", "alice", "JBSWY3DPEHPK3PXP")
	require.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	require.Contains(t, uri, "alice")
	require.Contains(t, uri, "secret=JBSWY3DPEHPK3PXP")
	require.Contains(t, uri, "issuer=Budget+HQ")
	require.Contains(t, uri, "digits=6")
	require.Contains(t, uri, "period=30")
}

func TestStateOf(t *testing.T) {
	require.Equal(t, Disabled, StateOf("", false))
	require.Equal(t, Pending, StateOf("JBSWY3DP", false))
	require.Equal(t, Enabled, StateOf("JBSWY3DP", true))
	// enabled with no secret collapses to disabled rather than lying
	require.Equal(t, Disabled, StateOf("", true))
}
