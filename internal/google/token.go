package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Scopes requested by the assistant's tools.
var Scopes = []string{
	gmail.GmailModifyScope,
	gmail.MailGoogleComScope,
	calendar.CalendarScope,
}

// ErrNoRefreshToken is returned for token files that cannot be renewed.
var ErrNoRefreshToken = errors.New("token file has no refresh_token")

// authorizedUser is the token file layout written by Google's client
// libraries after a desktop consent flow.
type authorizedUser struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
	Expiry       string   `json:"expiry"`
}

// LoadTokenFile reads path and returns the OAuth config and token it describes.
// The file is only read; refreshed tokens are kept in memory.
func LoadTokenFile(path string) (*oauth2.Config, *oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read token file: %w", err)
	}
	var au authorizedUser
	if err := json.Unmarshal(b, &au); err != nil {
		return nil, nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	if au.RefreshToken == "" {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrNoRefreshToken)
	}

	endpoint := google.Endpoint
	if au.TokenURI != "" {
		endpoint.TokenURL = au.TokenURI
	}
	scopes := au.Scopes
	if len(scopes) == 0 {
		scopes = Scopes
	}
	conf := &oauth2.Config{
		ClientID:     au.ClientID,
		ClientSecret: au.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
	tok := &oauth2.Token{
		AccessToken:  au.Token,
		RefreshToken: au.RefreshToken,
		TokenType:    "Bearer",
	}
	if au.Expiry != "" {
		// Python writes naive UTC timestamps; RFC3339 is accepted too.
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
			if t, err := time.Parse(layout, au.Expiry); err == nil {
				tok.Expiry = t.UTC()
				break
			}
		}
	}
	return conf, tok, nil
}

// HTTPClient returns a client that authorizes and refreshes with the token at path.
func HTTPClient(ctx context.Context, path string) (*http.Client, error) {
	conf, tok, err := LoadTokenFile(path)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, tok)), nil
}

// Services holds the authenticated Google API services.
type Services struct {
	Gmail    *gmail.Service
	Calendar *calendar.Service
}

// NewServices builds Gmail and Calendar services. With a token file, requests
// are authorized by it; extra opts (endpoints, test clients) are appended.
func NewServices(ctx context.Context, tokenFile string, opts ...option.ClientOption) (*Services, error) {
	var base []option.ClientOption
	if tokenFile != "" {
		hc, err := HTTPClient(ctx, tokenFile)
		if err != nil {
			return nil, err
		}
		base = append(base, option.WithHTTPClient(hc))
	}
	base = append(base, opts...)

	gsvc, err := gmail.NewService(ctx, base...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	csvc, err := calendar.NewService(ctx, base...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Services{Gmail: gsvc, Calendar: csvc}, nil
}
