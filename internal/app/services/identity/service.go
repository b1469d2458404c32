// Package identity implements the username registry: self-service
// registration with global uniqueness.
package identity

import (
	"context"

	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/auth"
	domain "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/identity"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/metrics"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/pkg/logger"
)

// Service manages username bindings.
type Service struct {
	params tipping.Params
	store  storage.IdentityStore
	log    *logger.Logger
}

// New constructs an identity service.
func New(params tipping.Params, store storage.IdentityStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("identity")
	}
	return &Service{params: params, store: store, log: log}
}

// Set binds a username to the target account. Only the account itself may
// register; the store enforces global uniqueness atomically.
func (s *Service) Set(ctx context.Context, caller, target, username string) (domain.Identity, error) {
	if err := auth.RequireSelf(caller, target); err != nil {
		return domain.Identity{}, err
	}
	if err := s.params.ValidateUsername(username); err != nil {
		return domain.Identity{}, err
	}

	id, err := s.store.SetIdentity(ctx, target, username)
	if err != nil {
		return domain.Identity{}, err
	}

	metrics.RecordIdentityRegistration()
	s.log.WithField("account", target).WithField("username", username).Info("identity registered")
	return id, nil
}

// Get returns the identity bound to an account, if any.
func (s *Service) Get(ctx context.Context, account string) (domain.Identity, bool, error) {
	return s.store.GetIdentity(ctx, account)
}
