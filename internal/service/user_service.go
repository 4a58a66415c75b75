package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"expense-api/internal/domain"
	"expense-api/internal/events"
	"expense-api/internal/repository"
)

const (
	maxEmailLength       = 254
	maxDisplayNameLength = 80
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// UserService coordina reglas de negocio para usuarios.
type UserService struct {
	logger          *zap.Logger
	users           repository.UserRepository
	categories      repository.CategoryRepository
	tickets         *SignupTicketStore
	publisher       events.Publisher
	bcryptCost      int
	defaultCurrency string
	// dummyHash iguala el costo de bcrypt cuando no hay hash contra el que comparar.
	dummyHash       []byte
	compareHash     func(hash, password []byte) error
}

type UserServiceOptions struct {
	BcryptCost      int
	DefaultCurrency string
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	tickets *SignupTicketStore,
	publisher events.Publisher,
	opts UserServiceOptions,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NewDisabledPublisher()
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if !currencyPattern.MatchString(opts.DefaultCurrency) {
		opts.DefaultCurrency = "INR"
	}
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("expense-api-dummy-password"), opts.BcryptCost)
	return &UserService{
		logger:          logger,
		users:           users,
		categories:      categories,
		tickets:         tickets,
		publisher:       publisher,
		bcryptCost:      opts.BcryptCost,
		defaultCurrency: opts.DefaultCurrency,
		dummyHash:       dummyHash,
		compareHash:     bcrypt.CompareHashAndPassword,
	}
}

type SignupInput struct {
	Email         string
	Password      string
	DisplayName   string
	MonthlyIncome float64
	Currency      string
	OAuthTicket   string
}

type ProfileInput struct {
	DisplayName   string
	MonthlyIncome float64
	Currency      string
}

// Signup crea la cuenta y siembra las categorias por defecto.
// Con OAuthTicket el email y el vinculo con el proveedor salen del ticket y la contraseña es opcional.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	var (
		ticket   SignupTicket
		ticketID = strings.TrimSpace(input.OAuthTicket)
	)
	if ticketID != "" {
		if s.tickets == nil {
			return domain.User{}, ErrInvalidTicket
		}
		redeemed, err := s.tickets.Redeem(ctx, ticketID)
		if err != nil {
			return domain.User{}, err
		}
		ticket = redeemed
		input.Email = ticket.Email
	}

	email := normalizeEmail(input.Email)
	displayName := strings.TrimSpace(input.DisplayName)
	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	verr := &ValidationError{}
	verr.Merge(validateEmail(email))
	verr.Merge(validateProfileFields(displayName, input.MonthlyIncome, currency))
	if ticketID == "" || input.Password != "" {
		verr.Merge(checkPasswordPolicy("password", input.Password))
	}
	if err := verr.OrNil(); err != nil {
		s.restoreTicket(ctx, ticketID, ticket)
		return domain.User{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	var passwordHash string
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = string(hash)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:            uuid.NewString(),
		Email:         email,
		DisplayName:   displayName,
		AuthProvider:  ticket.Provider,
		AuthSubject:   ticket.Subject,
		PasswordHash:  passwordHash,
		MonthlyIncome: input.MonthlyIncome,
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrEmailExists
		}
		return domain.User{}, err
	}

	s.seedDefaultCategories(ctx, user.ID)

	method := "password"
	if user.HasProviderLink() {
		method = user.AuthProvider
	}
	s.publish(ctx, events.New(events.TypeUserRegistered, user.ID, map[string]string{"method": method}))
	return user, nil
}

// Authenticate verifica email y contraseña. Cualquier fallo es ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = s.compareHash(s.dummyHash, []byte(password))
			s.logger.Info("login rejected", zap.String("reason", "unknown_email"))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !user.HasPassword() {
		_ = s.compareHash(s.dummyHash, []byte(password))
		s.logger.Info("login rejected", zap.String("reason", "no_password"), zap.String("user_id", user.ID))
		return domain.User{}, ErrInvalidCredentials
	}
	if err := s.compareHash([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("reason", "password_mismatch"), zap.String("user_id", user.ID))
		return domain.User{}, ErrInvalidCredentials
	}

	s.publish(ctx, events.New(events.TypeUserLoggedIn, user.ID, map[string]string{"method": "password"}))
	return user, nil
}

// ChangePassword re-verifica la contraseña actual antes de guardar la nueva.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUnauthorized
		}
		return err
	}
	if !user.HasPassword() || current == "" {
		return ErrBadCurrentPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrBadCurrentPassword
	}
	if err := checkPasswordPolicy("next", next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUnauthorized
		}
		return err
	}

	s.publish(ctx, events.New(events.TypeUserPasswordChanged, user.ID, nil))
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return domain.User{}, ErrNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	displayName := strings.TrimSpace(input.DisplayName)
	currency := strings.TrimSpace(input.Currency)
	if err := validateProfileFields(displayName, input.MonthlyIncome, currency); err != nil {
		return domain.User{}, err
	}

	if err := s.users.UpdateProfile(ctx, userID, displayName, input.MonthlyIncome, currency); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *UserService) seedDefaultCategories(ctx context.Context, userID string) {
	if s.categories == nil {
		return
	}
	now := time.Now().UTC()
	seed := make([]domain.Category, 0, len(domain.DefaultCategories))
	for _, c := range domain.DefaultCategories {
		seed = append(seed, domain.Category{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      c.Name,
			Color:     c.Color,
			CreatedAt: now,
		})
	}
	if err := s.categories.CreateMany(ctx, seed); err != nil {
		s.logger.Warn("seed default categories failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *UserService) restoreTicket(ctx context.Context, ticketID string, ticket SignupTicket) {
	if ticketID == "" || s.tickets == nil {
		return
	}
	if err := s.tickets.Restore(ctx, ticketID, ticket); err != nil {
		s.logger.Warn("restore signup ticket failed", zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish account event failed",
			zap.String("type", event.Type),
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return fieldError("email", "Invalid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fieldError("email", "Invalid email address")
	}
	return nil
}

func validateProfileFields(displayName string, monthlyIncome float64, currency string) error {
	verr := &ValidationError{}
	switch n := utf8.RuneCountInString(displayName); {
	case n == 0:
		verr.Add("display_name", "Name is required")
	case n > maxDisplayNameLength:
		verr.Add("display_name", "Name is too long")
	}
	if !(monthlyIncome > 0) {
		verr.Add("monthly_income", "Monthly income must be greater than 0")
	}
	if !currencyPattern.MatchString(currency) {
		verr.Add("currency", "Currency must be a 3-letter code (e.g., INR, USD)")
	}
	return verr.OrNil()
}
