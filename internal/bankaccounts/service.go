package bankaccounts

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mealora/mealora-backend/pkg/db/models"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

var (
	routingNumberRe = regexp.MustCompile(`^\d{9}$`)
	accountNumberRe = regexp.MustCompile(`^\d{4,17}$`)
)

// Service manages restaurant bank details for payouts.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*View, error)
	Get(ctx context.Context, restaurantID uuid.UUID) (*View, error)
	Deactivate(ctx context.Context, restaurantID uuid.UUID) error
	HasActive(ctx context.Context, restaurantID uuid.UUID) (bool, error)
}

// UpsertInput carries the full bank details. The raw account number is
// accepted on write only and never returned.
type UpsertInput struct {
	RestaurantID  uuid.UUID
	AccountHolder string
	BankName      string
	RoutingNumber string
	AccountNumber string
}

// View is the masked read model for bank details.
type View struct {
	RestaurantID        uuid.UUID `json:"restaurant_id"`
	AccountHolder       string    `json:"account_holder"`
	BankName            string    `json:"bank_name"`
	AccountNumberMasked string    `json:"account_number_masked"`
	Active              bool      `json:"active"`
}

// ServiceParams wires the bank account service dependencies.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService validates dependencies and returns the bank account service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bank account repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*View, error) {
	if input.RestaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	if strings.TrimSpace(input.AccountHolder) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account holder is required")
	}
	if strings.TrimSpace(input.BankName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bank name is required")
	}
	if !routingNumberRe.MatchString(input.RoutingNumber) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "routing number must be 9 digits")
	}
	if !accountNumberRe.MatchString(input.AccountNumber) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account number must be 4 to 17 digits")
	}

	existing, err := s.repo.GetByRestaurantID(ctx, input.RestaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bank account")
	}

	if existing == nil {
		account := &models.BankAccount{
			RestaurantID:  input.RestaurantID,
			AccountHolder: strings.TrimSpace(input.AccountHolder),
			BankName:      strings.TrimSpace(input.BankName),
			RoutingNumber: input.RoutingNumber,
			AccountNumber: input.AccountNumber,
			Active:        true,
		}
		if err := s.repo.Create(ctx, account); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting bank account")
		}
		return viewOf(account), nil
	}

	existing.AccountHolder = strings.TrimSpace(input.AccountHolder)
	existing.BankName = strings.TrimSpace(input.BankName)
	existing.RoutingNumber = input.RoutingNumber
	existing.AccountNumber = input.AccountNumber
	existing.Active = true
	existing.DeactivatedAt = nil
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating bank account")
	}

	loggedCtx := s.logg.WithRestaurantID(ctx, input.RestaurantID.String())
	s.logg.Info(loggedCtx, "bank account updated")
	return viewOf(existing), nil
}

func (s *service) Get(ctx context.Context, restaurantID uuid.UUID) (*View, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	account, err := s.repo.GetByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bank account")
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bank account not found")
	}
	return viewOf(account), nil
}

func (s *service) Deactivate(ctx context.Context, restaurantID uuid.UUID) error {
	if restaurantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	deactivated, err := s.repo.Deactivate(ctx, restaurantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivating bank account")
	}
	if !deactivated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no active bank account to deactivate")
	}
	return nil
}

func (s *service) HasActive(ctx context.Context, restaurantID uuid.UUID) (bool, error) {
	account, err := s.repo.GetByRestaurantID(ctx, restaurantID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bank account")
	}
	return account != nil && account.Active, nil
}

// MaskAccountNumber keeps only the last four digits visible.
func MaskAccountNumber(number string) string {
	if len(number) <= 4 {
		return "***" + number
	}
	return "***" + number[len(number)-4:]
}

func viewOf(account *models.BankAccount) *View {
	return &View{
		RestaurantID:        account.RestaurantID,
		AccountHolder:       account.AccountHolder,
		BankName:            account.BankName,
		AccountNumberMasked: MaskAccountNumber(account.AccountNumber),
		Active:              account.Active,
	}
}
