package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"expense-api/internal/events"
	"expense-api/internal/repository"
)

type userServiceFixture struct {
	svc        *UserService
	users      *mockUserRepo
	categories *mockCategoryRepo
	tickets    *SignupTicketStore
	publisher  *recordingPublisher
}

func newUserServiceFixture() userServiceFixture {
	users := newMockUserRepo()
	categories := newMockCategoryRepo()
	tickets := NewSignupTicketStore(NewMemoryOneTimeStore(), time.Minute)
	publisher := &recordingPublisher{}
	svc := NewUserService(zap.NewNop(), users, categories, tickets, publisher, UserServiceOptions{
		BcryptCost:      bcrypt.MinCost,
		DefaultCurrency: "INR",
	})
	return userServiceFixture{svc: svc, users: users, categories: categories, tickets: tickets, publisher: publisher}
}

func validSignup(email string) SignupInput {
	return SignupInput{
		Email:         email,
		Password:      "Valid1Pass!",
		DisplayName:   "Ann",
		MonthlyIncome: 50000,
		Currency:      "INR",
	}
}

func fieldMessages(t *testing.T, err error, field string) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Fields[field]
}

func TestUserServiceSignup_ThenLoginIssuesTokenForUser(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	created, err := f.svc.Signup(ctx, validSignup("  Ann@Example.com "))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if created.Email != "ann@example.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}

	user, err := f.svc.Authenticate(ctx, "ann@example.com", "Valid1Pass!")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	jwtSvc := NewJWTService("secret", time.Hour, "expense-api")
	token, err := jwtSvc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := jwtSvc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != created.ID {
		t.Fatalf("expected sub %s, got %s", created.ID, claims.Subject)
	}
}

func TestUserServiceSignup_DuplicateEmailDifferentCase(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, validSignup("a@x.com")); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := f.svc.Signup(ctx, validSignup("A@X.COM")); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if len(f.users.usersByID) != 1 {
		t.Fatalf("expected one user record, got %d", len(f.users.usersByID))
	}
}

func TestUserServiceSignup_UniqueViolationMapsToEmailExists(t *testing.T) {
	f := newUserServiceFixture()
	f.users.createErr = repository.ErrDuplicate

	if _, err := f.svc.Signup(context.Background(), validSignup("race@x.com")); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestUserServiceSignup_ValidationDetails(t *testing.T) {
	f := newUserServiceFixture()

	_, err := f.svc.Signup(context.Background(), SignupInput{
		Email:         "not-an-email",
		Password:      "short",
		DisplayName:   " ",
		MonthlyIncome: 0,
		Currency:      "usd",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	for _, field := range []string{"email", "password", "display_name", "monthly_income", "currency"} {
		if len(fieldMessages(t, err, field)) == 0 {
			t.Fatalf("expected messages for %s", field)
		}
	}
	if len(f.users.usersByID) != 0 {
		t.Fatalf("expected no user created")
	}
}

func TestUserServiceSignup_DefaultsCurrencyAndSeedsCategories(t *testing.T) {
	f := newUserServiceFixture()
	in := validSignup("seed@x.com")
	in.Currency = ""

	user, err := f.svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Currency != "INR" {
		t.Fatalf("expected default currency INR, got %s", user.Currency)
	}
	cats, _ := f.categories.List(context.Background(), user.ID)
	if len(cats) != 4 {
		t.Fatalf("expected 4 default categories, got %d", len(cats))
	}
	if got := f.publisher.types(); len(got) != 1 || got[0] != events.TypeUserRegistered {
		t.Fatalf("expected user.registered event, got %v", got)
	}
}

func TestUserServiceSignup_SeedFailureDoesNotFail(t *testing.T) {
	f := newUserServiceFixture()
	f.categories.createManyErr = errors.New("db down")

	if _, err := f.svc.Signup(context.Background(), validSignup("seedfail@x.com")); err != nil {
		t.Fatalf("expected signup to succeed, got %v", err)
	}
}

func TestUserServiceSignup_PublishFailureDoesNotFail(t *testing.T) {
	f := newUserServiceFixture()
	f.publisher.err = errors.New("broker down")

	if _, err := f.svc.Signup(context.Background(), validSignup("events@x.com")); err != nil {
		t.Fatalf("expected signup to succeed, got %v", err)
	}
}

func TestUserServiceSignup_WithOAuthTicket(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	ticketID, err := f.tickets.Issue(ctx, SignupTicket{Provider: "google", Subject: "g-1", Email: "oauth@x.com"})
	if err != nil {
		t.Fatalf("issue ticket: %v", err)
	}

	user, err := f.svc.Signup(ctx, SignupInput{
		Email:         "ignored@x.com",
		DisplayName:   "OAuth User",
		MonthlyIncome: 1000,
		OAuthTicket:   ticketID,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "oauth@x.com" || user.AuthProvider != "google" || user.AuthSubject != "g-1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.HasPassword() {
		t.Fatalf("expected no password hash for oauth-only signup")
	}
	if _, err := f.tickets.Redeem(ctx, ticketID); !errors.Is(err, ErrInvalidTicket) {
		t.Fatalf("expected ticket consumed, got %v", err)
	}
}

func TestUserServiceSignup_TicketRestoredOnValidationError(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	ticketID, _ := f.tickets.Issue(ctx, SignupTicket{Provider: "google", Subject: "g-1", Email: "oauth@x.com"})

	_, err := f.svc.Signup(ctx, SignupInput{DisplayName: "", MonthlyIncome: 1000, OAuthTicket: ticketID})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.tickets.Redeem(ctx, ticketID); err != nil {
		t.Fatalf("expected ticket restored, got %v", err)
	}
}

func TestUserServiceSignup_InvalidTicket(t *testing.T) {
	f := newUserServiceFixture()
	in := validSignup("x@x.com")
	in.OAuthTicket = "unknown"

	if _, err := f.svc.Signup(context.Background(), in); !errors.Is(err, ErrInvalidTicket) {
		t.Fatalf("expected ErrInvalidTicket, got %v", err)
	}
}

func TestUserServiceAuthenticate_UniformFailures(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	if _, err := f.svc.Signup(ctx, validSignup("a@x.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, errWrong := f.svc.Authenticate(ctx, "a@x.com", "Wrong1Pass!")
	_, errUnknown := f.svc.Authenticate(ctx, "nobody@x.com", "Valid1Pass!")
	if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errWrong, errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("expected identical errors, got %q and %q", errWrong, errUnknown)
	}
}

func TestUserServiceAuthenticate_OAuthOnlyUserRejected(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	ticketID, _ := f.tickets.Issue(ctx, SignupTicket{Provider: "google", Subject: "g-1", Email: "o@x.com"})
	if _, err := f.svc.Signup(ctx, SignupInput{DisplayName: "O", MonthlyIncome: 1, OAuthTicket: ticketID}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := f.svc.Authenticate(ctx, "o@x.com", "Anything1!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserServiceChangePassword_WrongCurrentKeepsHash(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	user, err := f.svc.Signup(ctx, validSignup("a@x.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	before := f.users.usersByID[user.ID].PasswordHash

	if err := f.svc.ChangePassword(ctx, user.ID, "Wrong1Pass!", "Newer1Pass!"); !errors.Is(err, ErrBadCurrentPassword) {
		t.Fatalf("expected ErrBadCurrentPassword, got %v", err)
	}
	if after := f.users.usersByID[user.ID].PasswordHash; after != before {
		t.Fatalf("expected hash unchanged")
	}
}

func TestUserServiceChangePassword_AppliesPolicy(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	user, _ := f.svc.Signup(ctx, validSignup("a@x.com"))

	err := f.svc.ChangePassword(ctx, user.ID, "Valid1Pass!", "alllowercase1!")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(fieldMessages(t, err, "next")) == 0 {
		t.Fatalf("expected policy messages on next")
	}
}

func TestUserServiceChangePassword_Success(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	user, _ := f.svc.Signup(ctx, validSignup("a@x.com"))

	if err := f.svc.ChangePassword(ctx, user.ID, "Valid1Pass!", "Newer1Pass!"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "a@x.com", "Newer1Pass!"); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "a@x.com", "Valid1Pass!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
}

func TestUserServiceChangePassword_UnknownUser(t *testing.T) {
	f := newUserServiceFixture()

	if err := f.svc.ChangePassword(context.Background(), "missing", "Valid1Pass!", "Newer1Pass!"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserServiceUpdateProfile(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	user, _ := f.svc.Signup(ctx, validSignup("a@x.com"))

	updated, err := f.svc.UpdateProfile(ctx, user.ID, ProfileInput{DisplayName: " Bea ", MonthlyIncome: 9000, Currency: "USD"})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.DisplayName != "Bea" || updated.Currency != "USD" || updated.MonthlyIncome != 9000 {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	_, err = f.svc.UpdateProfile(ctx, user.ID, ProfileInput{DisplayName: "Bea", MonthlyIncome: -1, Currency: "USD"})
	if len(fieldMessages(t, err, "monthly_income")) == 0 {
		t.Fatalf("expected monthly_income error")
	}
}

func TestUserServiceSignup_PasswordOverBcryptLimit(t *testing.T) {
	f := newUserServiceFixture()
	in := validSignup("long@x.com")
	in.Password = "Aa1!" + strings.Repeat("x", 80)

	_, err := f.svc.Signup(context.Background(), in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(fieldMessages(t, err, "password")) == 0 {
		t.Fatalf("expected password field message")
	}
	if len(f.users.usersByID) != 0 {
		t.Fatalf("expected no user created")
	}
}

func TestUserServiceChangePassword_NextOverBcryptLimit(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	user, _ := f.svc.Signup(ctx, validSignup("a@x.com"))

	err := f.svc.ChangePassword(ctx, user.ID, "Valid1Pass!", "Aa1!"+strings.Repeat("x", 80))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(fieldMessages(t, err, "next")) == 0 {
		t.Fatalf("expected policy messages on next")
	}
}

func TestUserServiceAuthenticate_AlwaysComparesHash(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()
	if _, err := f.svc.Signup(ctx, validSignup("a@x.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	ticketID, _ := f.tickets.Issue(ctx, SignupTicket{Provider: "google", Subject: "g-1", Email: "o@x.com"})
	if _, err := f.svc.Signup(ctx, SignupInput{DisplayName: "O", MonthlyIncome: 1, OAuthTicket: ticketID}); err != nil {
		t.Fatalf("oauth signup: %v", err)
	}

	var compared [][]byte
	f.svc.compareHash = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	cases := map[string]string{
		"wrong password": "a@x.com",
		"unknown email":  "nobody@x.com",
		"oauth only":     "o@x.com",
	}
	for name, email := range cases {
		compared = nil
		if _, err := f.svc.Authenticate(ctx, email, "Wrong1Pass!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
		if len(compared) != 1 || len(compared[0]) == 0 {
			t.Fatalf("%s: expected one bcrypt comparison, got %d", name, len(compared))
		}
	}
}
