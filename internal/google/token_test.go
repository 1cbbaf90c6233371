package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func writeToken(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadTokenFile(t *testing.T) {
	p := writeToken(t, `{
		"token": "ya29.access",
		"refresh_token": "1//refresh",
		"token_uri": "https://oauth2.example.test/token",
		"client_id": "client.apps.googleusercontent.com",
		"client_secret": "shh",
		"scopes": ["https://www.googleapis.com/auth/calendar"],
		"expiry": "2026-10-14T12:30:00.123456"
	}`)

	conf, tok, err := LoadTokenFile(p)
	require.NoError(t, err)

	assert.Equal(t, "client.apps.googleusercontent.com", conf.ClientID)
	assert.Equal(t, "https://oauth2.example.test/token", conf.Endpoint.TokenURL)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/calendar"}, conf.Scopes)
	assert.Equal(t, "ya29.access", tok.AccessToken)
	assert.Equal(t, "1//refresh", tok.RefreshToken)
	assert.Equal(t, time.Date(2026, 10, 14, 12, 30, 0, 123456000, time.UTC), tok.Expiry)
}

func TestLoadTokenFile_DefaultsScopesAndEndpoint(t *testing.T) {
	p := writeToken(t, `{"refresh_token":"r","client_id":"c","client_secret":"s"}`)
	conf, tok, err := LoadTokenFile(p)
	require.NoError(t, err)
	assert.Equal(t, Scopes, conf.Scopes)
	assert.NotEmpty(t, conf.Endpoint.TokenURL)
	assert.True(t, tok.Expiry.IsZero())
}

func TestLoadTokenFile_Errors(t *testing.T) {
	_, _, err := LoadTokenFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, _, err = LoadTokenFile(writeToken(t, "not json"))
	assert.Error(t, err)

	_, _, err = LoadTokenFile(writeToken(t, `{"token":"only-access"}`))
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestNewServices_WithoutTokenFile(t *testing.T) {
	svcs, err := NewServices(context.Background(), "", option.WithoutAuthentication(), option.WithEndpoint("http://127.0.0.1:0/"))
	require.NoError(t, err)
	assert.NotNil(t, svcs.Gmail)
	assert.NotNil(t, svcs.Calendar)
}
