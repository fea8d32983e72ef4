package payer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

type Service struct {
	repo     repository.PayerRepository
	validate *validator.Validator
}

func NewService(repo repository.PayerRepository, validate *validator.Validator) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePayerRequest) (*model.Payer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	payer := &model.Payer{
		Name:   req.Name,
		Active: true,
	}
	if req.Active != nil {
		payer.Active = *req.Active
	}

	if err := s.repo.Create(ctx, payer); err != nil {
		return nil, err
	}

	log.Info().Int64("payer_id", payer.ID).Str("name", payer.Name).Msg("payer created")
	return payer, nil
}

func (s *Service) List(ctx context.Context, req *model.ListPayersRequest) ([]*model.Payer, error) {
	return s.repo.List(ctx, req != nil && req.ActiveOnly)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Payer, error) {
	return s.repo.Get(ctx, id)
}

// Update applies the fields present in req
func (s *Service) Update(ctx context.Context, id int64, req *model.UpdatePayerRequest) (*model.Payer, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	payer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		payer.Name = *req.Name
	}
	if req.Active != nil {
		payer.Active = *req.Active
	}

	if err := s.repo.Update(ctx, payer); err != nil {
		return nil, err
	}
	return payer, nil
}

// Delete removes a payer no appointment refers to
func (s *Service) Delete(ctx context.Context, id int64) error {
	payer, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountAppointments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"cannot delete payer %q: %d appointment(s) are associated with it", payer.Name, count), nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("payer_id", id).Msg("payer deleted")
	return nil
}
