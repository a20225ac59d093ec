package merchants

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/mealora/mealora-backend/pkg/db/models"
	"github.com/mealora/mealora-backend/pkg/enums"
	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
	"github.com/mealora/mealora-backend/pkg/logger"
)

const defaultStripeCallTimeout = 10 * time.Second

// Service manages the lifecycle of restaurant merchant accounts.
type Service interface {
	CreateAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error)
	StartOnboarding(ctx context.Context, restaurantID uuid.UUID) (string, error)
	RefreshStatus(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error)
	GetAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error)
	CanReceivePayments(ctx context.Context, restaurantID uuid.UUID) (bool, error)
}

// ServiceParams wires the merchant service dependencies.
type ServiceParams struct {
	Repo                 Repository
	Stripe               StripeAccountClient
	Logger               *logger.Logger
	CallTimeout          time.Duration
	OnboardingReturnURL  string
	OnboardingRefreshURL string
}

type service struct {
	repo        Repository
	stripe      StripeAccountClient
	logg        *logger.Logger
	callTimeout time.Duration
	returnURL   string
	refreshURL  string
}

// NewService validates dependencies and returns the merchant service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("merchant repository required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe account client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	callTimeout := params.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultStripeCallTimeout
	}
	return &service{
		repo:        params.Repo,
		stripe:      params.Stripe,
		logg:        params.Logger,
		callTimeout: callTimeout,
		returnURL:   params.OnboardingReturnURL,
		refreshURL:  params.OnboardingRefreshURL,
	}, nil
}

func (s *service) CreateAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}

	existing, err := s.repo.GetByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading merchant account")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "merchant account already exists")
	}

	return s.provisionAccount(ctx, restaurantID)
}

func (s *service) provisionAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	stripeAccount, err := s.stripe.CreateAccount(callCtx, &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
		Metadata: map[string]string{"restaurant_id": restaurantID.String()},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating stripe connected account")
	}

	account := &models.MerchantAccount{
		RestaurantID:    restaurantID,
		StripeAccountID: stripeAccount.ID,
		Status:          enums.MerchantAccountStatusCreated,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting merchant account")
	}

	loggedCtx := s.logg.WithRestaurantID(ctx, restaurantID.String())
	s.logg.Info(loggedCtx, "merchant account created")
	return account, nil
}

func (s *service) StartOnboarding(ctx context.Context, restaurantID uuid.UUID) (string, error) {
	if restaurantID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}

	account, err := s.repo.GetByRestaurantID(ctx, restaurantID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading merchant account")
	}
	if account == nil {
		// First onboarding attempt provisions the connected account.
		account, err = s.provisionAccount(ctx, restaurantID)
		if err != nil {
			return "", err
		}
	}
	if account.DetailsSubmitted {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "onboarding details already submitted")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	link, err := s.stripe.CreateAccountLink(callCtx, &stripe.AccountLinkParams{
		Account:    stripe.String(account.StripeAccountID),
		ReturnURL:  stripe.String(s.returnURL),
		RefreshURL: stripe.String(s.refreshURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating stripe onboarding link")
	}

	if account.Status == enums.MerchantAccountStatusCreated {
		account.Status = enums.MerchantAccountStatusOnboarding
		if err := s.repo.Update(ctx, account); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating merchant account status")
		}
	}

	return link.URL, nil
}

func (s *service) RefreshStatus(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
	account, err := s.requireAccount(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	remote, err := s.stripe.GetAccount(callCtx, account.StripeAccountID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching stripe connected account")
	}

	account.ChargesEnabled = remote.ChargesEnabled
	account.PayoutsEnabled = remote.PayoutsEnabled
	account.DetailsSubmitted = remote.DetailsSubmitted

	switch {
	case remote.ChargesEnabled && remote.PayoutsEnabled:
		account.Status = enums.MerchantAccountStatusActive
		if account.OnboardedAt == nil {
			now := time.Now().UTC()
			account.OnboardedAt = &now
		}
	case remote.DetailsSubmitted:
		account.Status = enums.MerchantAccountStatusRestricted
	default:
		account.Status = enums.MerchantAccountStatusOnboarding
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating merchant account")
	}

	return account, nil
}

func (s *service) GetAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
	return s.requireAccount(ctx, restaurantID)
}

func (s *service) CanReceivePayments(ctx context.Context, restaurantID uuid.UUID) (bool, error) {
	account, err := s.repo.GetByRestaurantID(ctx, restaurantID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading merchant account")
	}
	if account == nil {
		return false, nil
	}
	return account.Status == enums.MerchantAccountStatusActive && account.ChargesEnabled, nil
}

func (s *service) requireAccount(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
	if restaurantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	account, err := s.repo.GetByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading merchant account")
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant account not found")
	}
	return account, nil
}
