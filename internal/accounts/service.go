package accounts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simovate/simstack-backend/pkg/db/models"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
)

// Service is the read-only account oracle used by pricing and the order
// engine.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetActive(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type service struct {
	repo Repository
}

// NewService wires an account service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return account, nil
}

// GetActive loads an account and rejects ones that may not transact.
func (s *service) GetActive(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "account is not active")
	}
	return account, nil
}
