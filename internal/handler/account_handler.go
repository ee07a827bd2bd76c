package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bijuli74/devops-capstone-project/internal/cqrs"
	"github.com/bijuli74/devops-capstone-project/internal/middleware"
	"github.com/bijuli74/devops-capstone-project/internal/models"
	"github.com/bijuli74/devops-capstone-project/internal/repository"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (*models.Account, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) error
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.Account, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
	logger   zerolog.Logger
}

const (
	msgAccountNotFound = "Account not found"
	msgInternalError   = "An internal error occurred"
)

func NewAccountHandler(commands AccountCommander, queries AccountQuerier, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries, logger: logger}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	h.logger.Info().Msg("Request to create an Account")
	if !middleware.CheckContentType(c, h.logger, middleware.MediaTypeJSON) {
		return
	}

	req, ok := bindAccountRequest(c)
	if !ok {
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		DateJoined:  req.DateJoined,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create account")
		middleware.RespondWithError(c, http.StatusInternalServerError, msgInternalError)
		return
	}

	c.Header("Location", accountLocation(c, account.ID))
	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	h.logger.Info().Msg("Request to list Accounts")

	accounts, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list accounts")
		middleware.RespondWithError(c, http.StatusInternalServerError, msgInternalError)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	c.JSON(http.StatusOK, accounts)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	h.logger.Info().Int64("account_id", id).Msg("Request to read an Account")

	account, ok := h.findAccount(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	h.logger.Info().Int64("account_id", id).Msg("Request to update an Account")

	// A missing account is a 404 whatever the body or its Content-Type.
	if _, ok := h.findAccount(c, id); !ok {
		return
	}
	if !middleware.CheckContentType(c, h.logger, middleware.MediaTypeJSON) {
		return
	}

	req, ok := bindAccountRequest(c)
	if !ok {
		return
	}

	account, err := h.commands.UpdateAccount(c.Request.Context(), cqrs.UpdateAccountCommand{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		DateJoined:  req.DateJoined,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, msgAccountNotFound)
			return
		}
		h.logger.Error().Err(err).Int64("account_id", id).Msg("failed to update account")
		middleware.RespondWithError(c, http.StatusInternalServerError, msgInternalError)
		return
	}

	c.JSON(http.StatusOK, account)
}

// DeleteAccount answers 204 whether or not the account existed.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	h.logger.Info().Int64("account_id", id).Msg("Request to delete an Account")

	if err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{ID: id}); err != nil {
		h.logger.Error().Err(err).Int64("account_id", id).Msg("failed to delete account")
		middleware.RespondWithError(c, http.StatusInternalServerError, msgInternalError)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) findAccount(c *gin.Context, id int64) (*models.Account, bool) {
	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{ID: id})
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, msgAccountNotFound)
			return nil, false
		}
		h.logger.Error().Err(err).Int64("account_id", id).Msg("failed to read account")
		middleware.RespondWithError(c, http.StatusInternalServerError, msgInternalError)
		return nil, false
	}
	return account, true
}

// accountID parses the :id path parameter. Anything that is not a base-10
// integer cannot name an account, so it is answered with 404.
func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusNotFound, msgAccountNotFound)
		return 0, false
	}
	return id, true
}

func bindAccountRequest(c *gin.Context) (*models.AccountRequest, bool) {
	var req models.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, "Invalid Account", validationErrors)
		return nil, false
	}
	return &req, true
}

// accountLocation builds the absolute URL of the read endpoint for id,
// honouring X-Forwarded-Proto and X-Forwarded-Host from a reverse proxy.
func accountLocation(c *gin.Context, id int64) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := c.Request.Host
	if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host + "/accounts/" + strconv.FormatInt(id, 10)
}
