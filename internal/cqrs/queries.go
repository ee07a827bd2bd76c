package cqrs

// GetAccountQuery fetches a single account by ID.
type GetAccountQuery struct {
	ID int64
}

// ListAccountsQuery fetches every account. There is no paging.
type ListAccountsQuery struct{}
