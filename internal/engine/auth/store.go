// Package auth persists OAuth credentials and builds authenticated
// YouTube Data API clients from them.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// CredentialStore loads and saves the OAuth token between runs.
// Load returns (nil, nil) when nothing has been stored yet.
type CredentialStore interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, tok *oauth2.Token) error
}

// IsValid reports whether tok can be used without a refresh.
func IsValid(tok *oauth2.Token) bool {
	return tok != nil && tok.Valid()
}

// CanRefresh reports whether tok carries a refresh token.
func CanRefresh(tok *oauth2.Token) bool {
	return tok != nil && tok.RefreshToken != ""
}

// Refresh exchanges tok's refresh token for a new access token.
func Refresh(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error) {
	if !CanRefresh(tok) {
		return nil, errors.New("auth: no refresh token")
	}
	// Force the token source to hit the token endpoint.
	expired := *tok
	expired.AccessToken = ""
	fresh, err := conf.TokenSource(ctx, &expired).Token()
	if err != nil {
		return nil, fmt.Errorf("auth: refresh token: %w", err)
	}
	return fresh, nil
}

// FileStore keeps the token as JSON in a single file.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load(_ context.Context) (*oauth2.Token, error) {
	b, err := os.ReadFile(s.Path) //nolint:gosec // token file path from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", s.Path, err)
	}
	return &tok, nil
}

func (s *FileStore) Save(_ context.Context, tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("auth: nil token")
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("ensure token dir: %w", err)
		}
	}

	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token json: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("commit token: %w", err)
	}
	return nil
}
