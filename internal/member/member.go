package member

import (
	"log/slog"

	errors "github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/core/common/validation"
	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/member"
)

type Repository interface {
	Create(m *datamodel.Member) error
	GetByID(id int64) (*datamodel.Member, error)
	UpdateStatus(id int64, status string) error
	ListApprovedEmails() ([]string, error)
}

type ApplyRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (r *ApplyRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("fullName", r.FullName).Required().MaxLength(200)
	validator.Field("email", r.Email).Required().Email()

	if appErr := validator.Validate(); appErr != nil {
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

// Apply records a membership application in pending status; an admin
// approves or rejects it later.
func (s *Service) Apply(req *ApplyRequest) (*datamodel.Member, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record := &datamodel.Member{
		FullName: req.FullName,
		Email:    req.Email,
		Status:   datamodel.StatusPending,
	}

	if err := s.repository.Create(record); err != nil {
		s.logger.Error("failed to create member record", "error", err, "email", req.Email)
		return nil, errors.NewInternalError("failed to create member record", err)
	}

	s.logger.Info("membership application recorded", "member_id", record.ID, "email", req.Email)
	return record, nil
}

// SetStatus moves a member between pending, approved, and rejected.
func (s *Service) SetStatus(id int64, status string) error {
	switch status {
	case datamodel.StatusPending, datamodel.StatusApproved, datamodel.StatusRejected:
	default:
		return errors.NewValidationError("invalid member status", errors.ErrCodeValidationFailed)
	}

	if _, err := s.repository.GetByID(id); err != nil {
		return errors.NewNotFoundError("Member not found", errors.ErrCodeMemberNotFound)
	}

	if err := s.repository.UpdateStatus(id, status); err != nil {
		s.logger.Error("failed to update member status", "error", err, "member_id", id, "status", status)
		return errors.NewInternalError("failed to update member status", err)
	}

	s.logger.Info("member status updated", "member_id", id, "status", status)
	return nil
}
