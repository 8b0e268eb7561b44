package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"quizhub/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"

	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
	googleUserURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var (
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get oauth user info")
	ErrOAuthNotConfigured    = errors.New("oauth login is not configured")
)

// OAuthProfile is the subset of a provider account used to sign a user in.
type OAuthProfile struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	Image    string
}

// OAuthProvider runs the authorization code flow against one provider.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*OAuthProfile, error)
}

type oauth2Provider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
	emailsURL   string
}

// NewOAuthProvider builds the configured provider. It returns
// ErrOAuthNotConfigured when no client id is set.
func NewOAuthProvider(cfg config.OAuthConfig) (OAuthProvider, error) {
	if cfg.ClientID == "" {
		return nil, ErrOAuthNotConfigured
	}

	p := &oauth2Provider{
		name: strings.ToLower(cfg.Provider),
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
		},
		userInfoURL: cfg.UserInfoURL,
		emailsURL:   cfg.EmailsURL,
	}

	switch p.name {
	case ProviderGitHub, "":
		p.name = ProviderGitHub
		p.config.Endpoint = github.Endpoint
		if len(p.config.Scopes) == 0 {
			p.config.Scopes = []string{"read:user", "user:email"}
		}
		if p.userInfoURL == "" {
			p.userInfoURL = githubUserURL
		}
		if p.emailsURL == "" {
			p.emailsURL = githubEmailsURL
		}
	case ProviderGoogle:
		p.config.Endpoint = google.Endpoint
		if len(p.config.Scopes) == 0 {
			p.config.Scopes = []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			}
		}
		if p.userInfoURL == "" {
			p.userInfoURL = googleUserURL
		}
	default:
		return nil, fmt.Errorf("unsupported oauth provider %q", cfg.Provider)
	}

	if cfg.AuthURL != "" {
		p.config.Endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		p.config.Endpoint.TokenURL = cfg.TokenURL
	}
	return p, nil
}

func (p *oauth2Provider) Name() string { return p.name }

func (p *oauth2Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// FetchProfile exchanges the code and reads the account behind it.
func (p *oauth2Provider) FetchProfile(ctx context.Context, code string) (*OAuthProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}
	client := p.config.Client(ctx, token)

	if p.name == ProviderGoogle {
		return p.fetchGoogle(ctx, client)
	}
	return p.fetchGitHub(ctx, client)
}

func getJSON(ctx context.Context, client *http.Client, url string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrFailedToGetUserInfo, url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode user info: %w", err)
	}
	return nil
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *oauth2Provider) fetchGitHub(ctx context.Context, client *http.Client) (*OAuthProfile, error) {
	var user githubUser
	if err := getJSON(ctx, client, p.userInfoURL, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: github user id missing", ErrFailedToGetUserInfo)
	}

	profile := &OAuthProfile{
		Provider: ProviderGitHub,
		Subject:  strconv.FormatInt(user.ID, 10),
		Email:    user.Email,
		Name:     user.Name,
		Image:    user.AvatarURL,
	}
	if profile.Name == "" {
		profile.Name = user.Login
	}

	// Private emails are only listed on the emails endpoint.
	if profile.Email == "" && p.emailsURL != "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, p.emailsURL, &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				profile.Email = e.Email
				break
			}
		}
	}
	return profile, nil
}

type googleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *oauth2Provider) fetchGoogle(ctx context.Context, client *http.Client) (*OAuthProfile, error) {
	var user googleUser
	if err := getJSON(ctx, client, p.userInfoURL, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: google user id missing", ErrFailedToGetUserInfo)
	}
	return &OAuthProfile{
		Provider: ProviderGoogle,
		Subject:  user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Image:    user.Picture,
	}, nil
}
