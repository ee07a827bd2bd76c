package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/bijuli74/devops-capstone-project/internal/models"
	sharedredis "github.com/bijuli74/devops-capstone-project/internal/redis"
)

// AccountViewKeyPrefix namespaces cached accounts in Redis.
const AccountViewKeyPrefix = "account:view:"

// AccountReadRepository handles all read operations for accounts.
// When a cache is configured it is consulted first and PostgreSQL is the
// fallback; every cold read warms the cache under the generation observed
// before the row was loaded. A nil cache reads straight from PostgreSQL.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.Account]
}

func NewAccountReadRepository(db *sql.DB, cache *sharedredis.ViewCache[models.Account]) *AccountReadRepository {
	return &AccountReadRepository{db: db, cache: cache}
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetByID returns an account, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	key := cacheKey(id)
	var (
		generation int64
		warm       bool
	)
	if r.cache != nil {
		if account, ok := r.cache.Get(ctx, key); ok {
			return account, nil
		}
		generation, warm = r.cache.Generation(ctx, key)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if warm {
		r.cache.Set(ctx, key, generation, account)
	}
	return account, nil
}

// List returns every account ordered by ID. The result is never nil.
func (r *AccountReadRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// InvalidateAccount retires the Redis entry for an account. The command
// service calls it after every committed update and delete.
func (r *AccountReadRepository) InvalidateAccount(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	r.cache.Invalidate(ctx, cacheKey(id))
}
