package auth_test

import (
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/server/auth"
)

func TestGenKey(t *testing.T) {
	key, err := auth.GenerateKey()
	assert.NoError(t, err)
	assert.Len(t, key, auth.AutoGenKeyLength)
	assert.Regexp(t, "^[0-9A-Za-z]{24}$", key)
}

func BenchmarkGenKey(b *testing.B) {
	var key string
	var err error
	for b.Loop() {
		key, err = auth.GenerateKey()
	}
	assert.NoError(b, err)
	assert.Len(b, key, auth.AutoGenKeyLength)
}

func TestLoadOrCreateKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/cfg/nge/" + auth.KeyFileName

	key, created, err := auth.LoadOrCreateKey(fs, path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, key, auth.AutoGenKeyLength)

	again, created, err := auth.LoadOrCreateKey(fs, path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, key, again)

	require.NoError(t, afero.WriteFile(fs, path, []byte("  custom-key\n"), 0o600))
	custom, _, err := auth.LoadOrCreateKey(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "custom-key", custom)

	require.NoError(t, afero.WriteFile(fs, path, []byte("\n"), 0o600))
	_, _, err = auth.LoadOrCreateKey(fs, path)
	assert.ErrorIs(t, err, auth.ErrEmptyKeyFile)
}

func TestCredential(t *testing.T) {
	type testCase struct {
		name    string
		headers map[string]string
		want    string
	}

	testCases := []testCase{
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer abc"}, want: "abc"},
		{name: "bearer lowercase", headers: map[string]string{"Authorization": "bearer abc"}, want: "abc"},
		{name: "api key header", headers: map[string]string{"X-API-Key": "xyz"}, want: "xyz"},
		{name: "basic falls through", headers: map[string]string{"Authorization": "Basic Zm9v", "X-API-Key": "xyz"}, want: "xyz"},
		{name: "none", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/emails/x", nil)
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, auth.Credential(r))
		})
	}
}

func TestMatch(t *testing.T) {
	assert.True(t, auth.Match("k", "k"))
	assert.False(t, auth.Match("k", "K"))
	assert.False(t, auth.Match("", ""))
	assert.False(t, auth.Match("k", ""))
}
