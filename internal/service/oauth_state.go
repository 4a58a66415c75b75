package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flow indica con que intencion se inicio el login con un proveedor externo.
type Flow string

const (
	FlowLogin  Flow = "login"
	FlowSignup Flow = "signup"
)

// ParseFlow acepta "login" (o vacio) y "signup".
func ParseFlow(raw string) (Flow, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(FlowLogin):
		return FlowLogin, nil
	case string(FlowSignup):
		return FlowSignup, nil
	default:
		return "", fieldError("flow", "Flow must be login or signup")
	}
}

// OAuthStateStore emite valores state de un solo uso ligados a un flujo.
type OAuthStateStore struct {
	store OneTimeStore
	ttl   time.Duration
}

func NewOAuthStateStore(store OneTimeStore, ttl time.Duration) *OAuthStateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OAuthStateStore{store: store, ttl: ttl}
}

func (s *OAuthStateStore) Create(ctx context.Context, flow Flow) (string, error) {
	state := uuid.NewString()
	if err := s.store.Put(ctx, "state:"+state, string(flow), s.ttl); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Consume valida y elimina el state. Un state desconocido, vencido o ya usado es ErrOAuthStateInvalid.
func (s *OAuthStateStore) Consume(ctx context.Context, state string) (Flow, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return "", ErrOAuthStateInvalid
	}
	raw, ok, err := s.store.Take(ctx, "state:"+state)
	if err != nil {
		return "", fmt.Errorf("take oauth state: %w", err)
	}
	if !ok {
		return "", ErrOAuthStateInvalid
	}
	flow, err := ParseFlow(raw)
	if err != nil {
		return "", ErrOAuthStateInvalid
	}
	return flow, nil
}

// SignupTicket transporta una identidad externa verificada hasta el alta de la cuenta.
type SignupTicket struct {
	Provider    string `json:"provider"`
	Subject     string `json:"subject"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

type SignupTicketStore struct {
	store OneTimeStore
	ttl   time.Duration
}

func NewSignupTicketStore(store OneTimeStore, ttl time.Duration) *SignupTicketStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignupTicketStore{store: store, ttl: ttl}
}

func (s *SignupTicketStore) Issue(ctx context.Context, ticket SignupTicket) (string, error) {
	id := uuid.NewString()
	if err := s.put(ctx, id, ticket); err != nil {
		return "", err
	}
	return id, nil
}

// Redeem consume el ticket. Devuelve ErrInvalidTicket si no existe o ya fue usado.
func (s *SignupTicketStore) Redeem(ctx context.Context, id string) (SignupTicket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return SignupTicket{}, ErrInvalidTicket
	}
	raw, ok, err := s.store.Take(ctx, "ticket:"+id)
	if err != nil {
		return SignupTicket{}, fmt.Errorf("take signup ticket: %w", err)
	}
	if !ok {
		return SignupTicket{}, ErrInvalidTicket
	}
	var ticket SignupTicket
	if err := json.Unmarshal([]byte(raw), &ticket); err != nil {
		return SignupTicket{}, ErrInvalidTicket
	}
	return ticket, nil
}

// Restore vuelve a guardar un ticket canjeado cuando el alta no pudo completarse.
func (s *SignupTicketStore) Restore(ctx context.Context, id string, ticket SignupTicket) error {
	return s.put(ctx, id, ticket)
}

func (s *SignupTicketStore) put(ctx context.Context, id string, ticket SignupTicket) error {
	raw, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("encode signup ticket: %w", err)
	}
	if err := s.store.Put(ctx, "ticket:"+id, string(raw), s.ttl); err != nil {
		return fmt.Errorf("store signup ticket: %w", err)
	}
	return nil
}
