package command

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bijuli74/devops-capstone-project/internal/cqrs"
	"github.com/bijuli74/devops-capstone-project/internal/events"
	"github.com/bijuli74/devops-capstone-project/internal/models"
	"github.com/bijuli74/devops-capstone-project/internal/repository"
)

// EventPublisher appends an event to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService writes account state and invalidates the view cache
// after each committed change; reads repopulate it.
type AccountCommandService struct {
	writeRepo *repository.AccountWriteRepository
	readRepo  *repository.AccountReadRepository
	publisher EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAccountCommandService(
	writeRepo *repository.AccountWriteRepository,
	readRepo *repository.AccountReadRepository,
	publisher EventPublisher,
	logger zerolog.Logger,
) *AccountCommandService {
	return &AccountCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	account := &models.Account{
		Name:        cmd.Name,
		Email:       cmd.Email,
		Address:     cmd.Address,
		PhoneNumber: cmd.PhoneNumber,
		DateJoined:  models.NewDate(s.now()),
	}
	if cmd.DateJoined != nil {
		account.DateJoined = *cmd.DateJoined
	}
	if err := s.writeRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	})
	return account, nil
}

// UpdateAccount replaces the mutable fields of an existing account. It
// returns repository.ErrAccountNotFound and creates nothing when the ID is
// absent.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
	account, err := s.writeRepo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	account.Name = cmd.Name
	account.Email = cmd.Email
	account.Address = cmd.Address
	account.PhoneNumber = cmd.PhoneNumber
	if cmd.DateJoined != nil {
		account.DateJoined = *cmd.DateJoined
	}
	if err := s.writeRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	s.readRepo.InvalidateAccount(ctx, account.ID)
	s.publish(ctx, events.AccountUpdated, events.AccountUpdatedEvent{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	})
	return account, nil
}

// DeleteAccount removes the account if it exists. Deleting an absent ID
// succeeds without side effects.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	deleted, err := s.writeRepo.Delete(ctx, cmd.ID)
	if err != nil {
		return err
	}
	s.readRepo.InvalidateAccount(ctx, cmd.ID)
	if !deleted {
		return nil
	}
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{ID: cmd.ID})
	return nil
}

// publish is best effort: a failed publish is logged and never fails the
// mutation that produced it.
func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish account event")
	}
}
