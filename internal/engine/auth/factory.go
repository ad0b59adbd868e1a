package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// DefaultScopes matches what comment harvesting needs.
var DefaultScopes = []string{youtube.YoutubeForceSslScope}

// Prompter shows the consent URL and returns the authorization code the user pastes back.
type Prompter interface {
	Prompt(ctx context.Context, authURL string) (string, error)
}

// ConsolePrompter asks on a terminal.
type ConsolePrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewConsolePrompter prompts on stdin/stderr.
func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{In: os.Stdin, Out: os.Stderr}
}

func (p *ConsolePrompter) Prompt(_ context.Context, authURL string) (string, error) {
	fmt.Fprintf(p.Out, "Please visit this URL to authorize this application:\n%s\n\nEnter the authorization code: ", authURL)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read authorization code: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ClientFactory builds authenticated YouTube clients, reusing or refreshing
// the stored credential and falling back to the interactive flow.
type ClientFactory struct {
	Store      CredentialStore
	Prompter   Prompter
	HTTPClient *http.Client // base transport for token and API calls; nil = http.DefaultClient
}

// NewService returns a ready YouTube Data API client for the given secrets file and scopes.
// Only the youtube/v3 service is supported. opts are applied after the authenticated client.
func (f *ClientFactory) NewService(ctx context.Context, secretsFile string, scopes []string, serviceName, version string, opts ...option.ClientOption) (*youtube.Service, error) {
	if serviceName != "youtube" || version != "v3" {
		return nil, fmt.Errorf("auth: unsupported service %s/%s", serviceName, version)
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	conf, err := loadOAuthConfig(secretsFile, scopes)
	if err != nil {
		return nil, err
	}

	if f.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.HTTPClient)
	}

	tok, err := f.credential(ctx, conf)
	if err != nil {
		return nil, err
	}

	ts := &persistingTokenSource{
		ctx:   ctx,
		base:  conf.TokenSource(ctx, tok),
		store: f.Store,
		last:  tok.AccessToken,
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}

// credential returns a usable token: stored and valid, refreshed, or newly granted.
// Any refreshed or new token is saved before returning.
func (f *ClientFactory) credential(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	tok, err := f.Store.Load(ctx)
	if err != nil {
		slog.Warn("auth: stored credential unreadable, re-authorizing", slog.Any("error", err))
		tok = nil
	}
	if IsValid(tok) {
		slog.Debug("auth: using stored credential")
		return tok, nil
	}

	if CanRefresh(tok) {
		fresh, err := Refresh(ctx, conf, tok)
		if err == nil {
			slog.Info("auth: credential refreshed")
			return fresh, f.save(ctx, fresh)
		}
		slog.Warn("auth: refresh failed, starting authorization flow", slog.Any("error", err))
	}

	fresh, err := f.authorize(ctx, conf)
	if err != nil {
		return nil, err
	}
	slog.Info("auth: new credential granted")
	return fresh, f.save(ctx, fresh)
}

func (f *ClientFactory) authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	if f.Prompter == nil {
		return nil, fmt.Errorf("%w: no prompter for interactive flow", engine.ErrAuthAborted)
	}
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	code, err := f.Prompter.Prompt(ctx, authURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrAuthAborted, err)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", engine.ErrAuthAborted)
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchange code: %w", err)
	}
	return tok, nil
}

func (f *ClientFactory) save(ctx context.Context, tok *oauth2.Token) error {
	if err := f.Store.Save(ctx, tok); err != nil {
		return fmt.Errorf("auth: save credential: %w", err)
	}
	return nil
}

func loadOAuthConfig(secretsFile string, scopes []string) (*oauth2.Config, error) {
	b, err := os.ReadFile(secretsFile) //nolint:gosec // secrets path from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", engine.ErrSecretsMissing, secretsFile)
		}
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	conf, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets %s: %w", secretsFile, err)
	}
	return conf, nil
}

// persistingTokenSource saves every token the underlying source hands out
// after a silent refresh during the run.
type persistingTokenSource struct {
	ctx   context.Context
	base  oauth2.TokenSource
	store CredentialStore

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.store.Save(s.ctx, tok); err != nil {
			slog.Warn("auth: persisting refreshed credential failed", slog.Any("error", err))
		}
	}
	return tok, nil
}

// NewServiceWithAPIKey builds a client that authenticates with an API key only.
// Enough for the public read operations used here.
func NewServiceWithAPIKey(ctx context.Context, apiKey string, httpClient *http.Client, extra ...option.ClientOption) (*youtube.Service, error) {
	if apiKey == "" {
		return nil, errors.New("youtube: API key required")
	}
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		// A caller-supplied client bypasses option.WithAPIKey, so the key rides on the transport.
		opts = []option.ClientOption{option.WithHTTPClient(&http.Client{
			Timeout:   httpClient.Timeout,
			Transport: &transport.APIKey{Key: apiKey, Transport: httpClient.Transport},
		})}
	}
	svc, err := youtube.NewService(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("youtube service with API key: %w", err)
	}
	return svc, nil
}
