package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"expense-api/internal/domain"
	"expense-api/internal/events"
	"expense-api/internal/oauth"
	"expense-api/internal/repository"
)

// IdentityProvider abstrae un proveedor OAuth con flujo authorization code.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchIdentity(ctx context.Context, token *oauth2.Token) (oauth.Identity, error)
}

const (
	OutcomeAuthenticated     = "ok"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeNeedsSignup       = "needs_signup"
	OutcomeError             = "error"
)

// OAuthResult es lo que la ventana de callback entrega al frontend.
type OAuthResult struct {
	Source      string `json:"source"`
	Status      string `json:"status"`
	Token       string `json:"token,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	ProviderID  string `json:"provider_id,omitempty"`
	Ticket      string `json:"ticket,omitempty"`
	Message     string `json:"message,omitempty"`
}

// OAuthService resuelve una identidad externa contra las cuentas locales.
type OAuthService struct {
	logger    *zap.Logger
	provider  IdentityProvider
	users     repository.UserRepository
	states    *OAuthStateStore
	tickets   *SignupTicketStore
	tokens    *JWTService
	publisher events.Publisher
}

func NewOAuthService(
	logger *zap.Logger,
	provider IdentityProvider,
	users repository.UserRepository,
	states *OAuthStateStore,
	tickets *SignupTicketStore,
	tokens *JWTService,
	publisher events.Publisher,
) *OAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NewDisabledPublisher()
	}
	return &OAuthService{
		logger:    logger,
		provider:  provider,
		users:     users,
		states:    states,
		tickets:   tickets,
		tokens:    tokens,
		publisher: publisher,
	}
}

// Enabled indica si hay un proveedor configurado.
func (s *OAuthService) Enabled() bool {
	return s != nil && s.provider != nil
}

// Source identifica al proveedor en el resultado entregado al frontend.
func (s *OAuthService) Source() string {
	if !s.Enabled() {
		return "oauth"
	}
	return "oauth-" + s.provider.Name()
}

// Start guarda el flujo bajo un state nuevo y devuelve la URL de consentimiento.
func (s *OAuthService) Start(ctx context.Context, flow Flow) (string, string, error) {
	if !s.Enabled() {
		return "", "", ErrOAuthNotConfigured
	}
	state, err := s.states.Create(ctx, flow)
	if err != nil {
		return "", "", err
	}
	return s.provider.AuthCodeURL(state), state, nil
}

// Complete valida el state, canjea el code y decide el resultado segun el flujo y la cuenta encontrada.
func (s *OAuthService) Complete(ctx context.Context, code, state string) (OAuthResult, error) {
	if !s.Enabled() {
		return OAuthResult{}, ErrOAuthNotConfigured
	}

	flow, err := s.states.Consume(ctx, state)
	if err != nil {
		return OAuthResult{}, err
	}

	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return OAuthResult{}, fmt.Errorf("%w: %v", ErrOAuthExchangeFailed, err)
	}
	identity, err := s.provider.FetchIdentity(ctx, token)
	if err != nil {
		return OAuthResult{}, fmt.Errorf("%w: %v", ErrOAuthProfileFetchFailed, err)
	}
	if identity.Subject == "" || identity.Email == "" {
		return OAuthResult{}, ErrOAuthProfileFetchFailed
	}
	identity.Email = normalizeEmail(identity.Email)

	user, byEmail, err := s.resolve(ctx, identity)
	found := err == nil
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return OAuthResult{}, err
	}

	switch {
	case flow == FlowSignup && found:
		return OAuthResult{Source: s.Source(), Status: OutcomeAlreadyRegistered}, nil
	case !found:
		return s.needsSignup(ctx, identity)
	}

	if byEmail && !user.HasProviderLink() {
		s.link(ctx, user, identity)
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return OAuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	s.publish(ctx, events.New(events.TypeUserLoggedIn, user.ID, map[string]string{"method": s.provider.Name()}))
	return OAuthResult{Source: s.Source(), Status: OutcomeAuthenticated, Token: signed}, nil
}

// ErrorResult es el resultado generico para cualquier fallo; el detalle queda en los logs.
func (s *OAuthService) ErrorResult() OAuthResult {
	return OAuthResult{Source: s.Source(), Status: OutcomeError, Message: "sign-in failed"}
}

// resolve busca primero por vinculo con el proveedor y luego por email.
func (s *OAuthService) resolve(ctx context.Context, identity oauth.Identity) (domain.User, bool, error) {
	user, err := s.users.GetByAuth(ctx, s.provider.Name(), identity.Subject)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, err
	}
	user, err = s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}

func (s *OAuthService) needsSignup(ctx context.Context, identity oauth.Identity) (OAuthResult, error) {
	ticket, err := s.tickets.Issue(ctx, SignupTicket{
		Provider:    s.provider.Name(),
		Subject:     identity.Subject,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	})
	if err != nil {
		return OAuthResult{}, err
	}
	return OAuthResult{
		Source:      s.Source(),
		Status:      OutcomeNeedsSignup,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		ProviderID:  identity.Subject,
		Ticket:      ticket,
	}, nil
}

func (s *OAuthService) link(ctx context.Context, user domain.User, identity oauth.Identity) {
	if err := s.users.LinkOAuth(ctx, user.ID, s.provider.Name(), identity.Subject); err != nil {
		s.logger.Warn("link oauth identity failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	s.logger.Info("oauth identity linked", zap.String("user_id", user.ID), zap.String("provider", s.provider.Name()))
	s.publish(ctx, events.New(events.TypeUserOAuthLinked, user.ID, map[string]string{"provider": s.provider.Name()}))
}

func (s *OAuthService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish account event failed",
			zap.String("type", event.Type),
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
	}
}
