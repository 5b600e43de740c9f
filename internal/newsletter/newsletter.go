package newsletter

import (
	"log/slog"

	"gorm.io/gorm"

	errors "github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/core/common/validation"
	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/newsletter"
)

type Repository interface {
	Create(sub *datamodel.Subscription) error
	GetByEmail(email string) (*datamodel.Subscription, error)
	ListEmails() ([]string, error)
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

func (r *SubscribeRequest) Validate() error {
	if appErr := validation.ValidateDonorEmail(r.Email); appErr != nil {
		return appErr
	}
	return nil
}

type Service struct {
	repository Repository
	logger     *slog.Logger
}

func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
	}
}

// Subscribe records a newsletter subscription. Subscribing an address
// that is already on the list is a no-op, not an error.
func (s *Service) Subscribe(req *SubscribeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	_, err := s.repository.GetByEmail(req.Email)
	if err == nil {
		s.logger.Info("newsletter subscription already exists", "email", req.Email)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return errors.NewInternalError("subscription lookup failed", err)
	}

	if err := s.repository.Create(&datamodel.Subscription{Email: req.Email}); err != nil {
		s.logger.Error("failed to create newsletter subscription", "error", err, "email", req.Email)
		return errors.NewInternalError("failed to create subscription", err)
	}

	s.logger.Info("newsletter subscription created", "email", req.Email)
	return nil
}
