package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	ErrInvalidCode        = errors.New("invalid authorization code")
	ErrFailedToGetUser    = errors.New("failed to get user info from Google")
	ErrUnverifiedEmail    = errors.New("Google account email is not verified")
	ErrOAuthNotConfigured = errors.New("Google sign-in is not configured")
)

// GoogleIdentity is the part of the Google profile used to match a staff account.
type GoogleIdentity struct {
	Email string
	Name  string
}

// GoogleConfig holds the configuration for Google sign-in
type GoogleConfig struct {
	ClientID           string
	ClientSecret       string
	RedirectURL        string
	FrontendSuccessURL string
	FrontendErrorURL   string
}

// GoogleProvider signs staff in with their Google account
type GoogleProvider struct {
	config      *oauth2.Config
	successURL  string
	errorURL    string
	userInfoURL string
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		successURL:  cfg.FrontendSuccessURL,
		errorURL:    cfg.FrontendErrorURL,
		userInfoURL: userInfoURL,
	}
}

func (p *GoogleProvider) IsConfigured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL returns the consent screen URL carrying state.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Identify exchanges the authorization code and fetches the account's email.
func (p *GoogleProvider) Identify(ctx context.Context, code string) (*GoogleIdentity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	resp, err := p.config.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUser, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUser, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFailedToGetUser, resp.StatusCode)
	}

	return parseIdentity(body)
}

func parseIdentity(body []byte) (*GoogleIdentity, error) {
	info := gjson.ParseBytes(body)
	email := strings.ToLower(strings.TrimSpace(info.Get("email").String()))
	if email == "" {
		return nil, ErrFailedToGetUser
	}
	if !info.Get("verified_email").Bool() {
		return nil, ErrUnverifiedEmail
	}
	return &GoogleIdentity{Email: email, Name: info.Get("name").String()}, nil
}

func (p *GoogleProvider) SuccessURL() string { return p.successURL }

func (p *GoogleProvider) ErrorURL() string { return p.errorURL }
