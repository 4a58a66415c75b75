package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	ProviderGoogle = "google"

	googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

var (
	ErrMissingCode       = errors.New("authorization code missing")
	ErrIncompleteProfile = errors.New("provider profile missing subject or email")
	ErrEmailNotVerified  = errors.New("provider email not verified")
)

// Identity es el resultado verificado de un login externo.
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
}

// GoogleProvider implementa el flujo authorization code contra Google.
type GoogleProvider struct {
	config      *oauth2.Config
	userinfoURL string
	httpClient  *http.Client
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userinfoURL: googleUserinfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

// AuthCodeURL arma la URL de consentimiento con el state recibido.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrMissingCode
	}
	token, err := p.config.Exchange(p.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}
	return token, nil
}

type googleUserinfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// FetchIdentity consulta userinfo con el access token. Solo acepta emails verificados.
func (p *GoogleProvider) FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	client := p.config.Client(p.clientContext(ctx), token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return Identity{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Identity{}, fmt.Errorf("google userinfo: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info googleUserinfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return Identity{}, fmt.Errorf("decode google userinfo: %w", err)
	}
	if strings.TrimSpace(info.Sub) == "" || strings.TrimSpace(info.Email) == "" {
		return Identity{}, ErrIncompleteProfile
	}
	if !info.EmailVerified {
		return Identity{}, ErrEmailNotVerified
	}
	return Identity{
		Subject:     info.Sub,
		Email:       info.Email,
		DisplayName: strings.TrimSpace(info.Name),
	}, nil
}

func (p *GoogleProvider) clientContext(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}
