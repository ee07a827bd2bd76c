package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bijuli74/devops-capstone-project/internal/cqrs"
	"github.com/bijuli74/devops-capstone-project/internal/events"
	"github.com/bijuli74/devops-capstone-project/internal/models"
	"github.com/bijuli74/devops-capstone-project/internal/repository"
)

type publishedEvent struct {
	stream    string
	eventType string
	data      any
}

type recordingPublisher struct {
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	p.events = append(p.events, publishedEvent{stream: stream, eventType: eventType, data: data})
	return p.err
}

var accountRowColumns = []string{"id", "name", "email", "address", "phone_number", "date_joined"}

func newTestService(t *testing.T, pub EventPublisher) (*AccountCommandService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	svc := NewAccountCommandService(
		repository.NewAccountWriteRepository(db),
		repository.NewAccountReadRepository(db, nil),
		pub,
		zerolog.Nop(),
	)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC) }
	return svc, mock
}

func TestCreateAccount(t *testing.T) {
	pub := &recordingPublisher{}
	svc, mock := newTestService(t, pub)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("Alice", "", "", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	account, err := svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
	assert.Equal(t, "2024-06-01", account.DateJoined.String(), "date_joined defaults to today")

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.AccountEventsStream, pub.events[0].stream)
	assert.Equal(t, events.AccountCreated, pub.events[0].eventType)
}

func TestCreateAccountKeepsGivenDate(t *testing.T) {
	svc, mock := newTestService(t, events.NopPublisher{})

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	date, err := models.ParseDate("2020-02-29")
	require.NoError(t, err)
	account, err := svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Name: "Bob", DateJoined: &date})
	require.NoError(t, err)
	assert.Equal(t, "2020-02-29", account.DateJoined.String())
}

func TestCreateAccountPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc, mock := newTestService(t, pub)

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	account, err := svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Name: "Carol"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), account.ID)
}

func TestCreateAccountStoreFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc, mock := newTestService(t, pub)

	mock.ExpectQuery("INSERT INTO accounts").WillReturnError(errors.New("disk full"))

	_, err := svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Name: "Dan"})
	assert.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestUpdateAccount(t *testing.T) {
	joined := time.Date(2023, 3, 4, 0, 0, 0, 0, time.UTC)

	t.Run("replaces mutable fields", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc, mock := newTestService(t, pub)

		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow(4, "Old", "old@example.com", "Old St", "111", joined))
		mock.ExpectExec("UPDATE accounts").
			WithArgs(int64(4), "New", "", "", "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		account, err := svc.UpdateAccount(context.Background(), cqrs.UpdateAccountCommand{ID: 4, Name: "New"})
		require.NoError(t, err)
		assert.Equal(t, "New", account.Name)
		assert.Empty(t, account.Email)
		assert.Equal(t, "2023-03-04", account.DateJoined.String(), "omitted date_joined keeps the stored value")
		require.Len(t, pub.events, 1)
		assert.Equal(t, events.AccountUpdated, pub.events[0].eventType)
	})

	t.Run("missing account is not created", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc, mock := newTestService(t, pub)

		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(accountRowColumns))

		_, err := svc.UpdateAccount(context.Background(), cqrs.UpdateAccountCommand{ID: 99, Name: "Ghost"})
		assert.ErrorIs(t, err, repository.ErrAccountNotFound)
		assert.Empty(t, pub.events)
	})
}

func TestDeleteAccount(t *testing.T) {
	tests := []struct {
		name       string
		affected   int64
		wantEvents int
	}{
		{name: "existing account", affected: 1, wantEvents: 1},
		{name: "absent account", affected: 0, wantEvents: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc, mock := newTestService(t, pub)

			mock.ExpectExec("DELETE FROM accounts").
				WithArgs(int64(6)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			require.NoError(t, svc.DeleteAccount(context.Background(), cqrs.DeleteAccountCommand{ID: 6}))
			assert.Len(t, pub.events, tt.wantEvents)
		})
	}
}
