package services

import (
	"context"
	"strconv"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/repositories"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// TeacherService manages the staff profiles of the "our team" page.
type TeacherService interface {
	List(ctx context.Context, status models.ContentStatus) ([]*models.Teacher, error)
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	Create(ctx context.Context, req *dto.CreateTeacherRequest) (*models.Teacher, error)
	Update(ctx context.Context, id int64, req *dto.UpdateTeacherRequest) (*models.Teacher, error)
	Delete(ctx context.Context, id int64) error
}

type teacherServiceImpl struct {
	teacherRepo repositories.ITeacherRepository
	counts      CountsInvalidator
	logger      zerolog.Logger
}

// NewTeacherService creates a new TeacherService. counts may be nil.
func NewTeacherService(teacherRepo repositories.ITeacherRepository, counts CountsInvalidator, logger zerolog.Logger) TeacherService {
	return &teacherServiceImpl{
		teacherRepo: teacherRepo,
		counts:      counts,
		logger:      logger,
	}
}

func (s *teacherServiceImpl) invalidateCounts() {
	if s.counts != nil {
		s.counts.InvalidateCounts()
	}
}

func displayOrder(value *int) (int, error) {
	if value == nil {
		return 0, nil
	}
	if *value < 0 {
		return 0, apperrors.NewValidationError("displayOrder", dto.FieldMessage("displayOrder", "min", strconv.Itoa(0)))
	}
	return *value, nil
}

func (s *teacherServiceImpl) List(ctx context.Context, status models.ContentStatus) ([]*models.Teacher, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status", dto.FieldMessage("status", "oneof", ""))
	}
	return s.teacherRepo.List(ctx, status)
}

func (s *teacherServiceImpl) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}

func (s *teacherServiceImpl) Create(ctx context.Context, req *dto.CreateTeacherRequest) (*models.Teacher, error) {
	teacher := &models.Teacher{Bio: optionalText(req.Bio)}
	var err error

	if teacher.FirstName, err = requiredText("firstName", req.FirstName, 100); err != nil {
		return nil, err
	}
	if teacher.LastName, err = requiredText("lastName", req.LastName, 100); err != nil {
		return nil, err
	}
	if teacher.Position, err = requiredText("position", req.Position, 150); err != nil {
		return nil, err
	}
	if teacher.PhotoURL, err = optionalURL("photoUrl", req.PhotoURL); err != nil {
		return nil, err
	}
	if teacher.Status, err = resolveStatus(req.Status); err != nil {
		return nil, err
	}
	if teacher.DisplayOrder, err = displayOrder(req.DisplayOrder); err != nil {
		return nil, err
	}

	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		return nil, err
	}

	s.invalidateCounts()
	s.logger.Info().Int64("teacherID", teacher.ID).Msg("Teacher created")
	return teacher, nil
}

func (s *teacherServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateTeacherRequest) (*models.Teacher, error) {
	teacher, err := s.teacherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		if teacher.FirstName, err = requiredText("firstName", *req.FirstName, 100); err != nil {
			return nil, err
		}
	}
	if req.LastName != nil {
		if teacher.LastName, err = requiredText("lastName", *req.LastName, 100); err != nil {
			return nil, err
		}
	}
	if req.Position != nil {
		if teacher.Position, err = requiredText("position", *req.Position, 150); err != nil {
			return nil, err
		}
	}
	if req.Bio.Set {
		teacher.Bio = optionalText(req.Bio.Ptr())
	}
	if req.PhotoURL.Set {
		if teacher.PhotoURL, err = optionalURL("photoUrl", req.PhotoURL.Ptr()); err != nil {
			return nil, err
		}
	}
	if req.Status != "" {
		if teacher.Status, err = resolveStatus(req.Status); err != nil {
			return nil, err
		}
	}
	if req.DisplayOrder.Set {
		if teacher.DisplayOrder, err = displayOrder(req.DisplayOrder.Ptr()); err != nil {
			return nil, err
		}
	}

	if err := s.teacherRepo.Update(ctx, teacher); err != nil {
		return nil, err
	}

	s.invalidateCounts()
	s.logger.Info().Int64("teacherID", teacher.ID).Msg("Teacher updated")
	return teacher, nil
}

func (s *teacherServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.teacherRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCounts()
	s.logger.Info().Int64("teacherID", id).Msg("Teacher deleted")
	return nil
}
