package query

import (
	"context"

	"github.com/bijuli74/devops-capstone-project/internal/cqrs"
	"github.com/bijuli74/devops-capstone-project/internal/models"
	"github.com/bijuli74/devops-capstone-project/internal/repository"
)

type AccountQueryService struct {
	readRepo *repository.AccountReadRepository
}

func NewAccountQueryService(readRepo *repository.AccountReadRepository) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

// GetAccount fetches a single account, or repository.ErrAccountNotFound.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	return s.readRepo.GetByID(ctx, q.ID)
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, _ cqrs.ListAccountsQuery) ([]models.Account, error) {
	return s.readRepo.List(ctx)
}
