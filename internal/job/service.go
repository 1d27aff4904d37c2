package job

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	internal "github.com/veidstad/craft-tracker/internal"
)

// Service fronts the raw job repository with input validation. Jobs have
// no derived totals, so unlike work entries there is no orchestration
// here; deleting a job referenced by work entries is permitted and leaves
// a dangling reference (checked again at backup-validation time).
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateJob(dto CreateJobDTO) (*Job, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("job validation failed", "error", err)
		return nil, err
	}

	job := &Job{
		ID:                uuid.NewString(),
		Name:              dto.Name,
		Client:            dto.Client,
		DefaultHourlyRate: dto.DefaultHourlyRate,
		Active:            dto.Active,
		CreatedAt:         time.Now().Format(time.RFC3339),
	}

	if err := s.repo.Create(job); err != nil {
		s.logger.Error("failed to create job", "error", err, "job_id", job.ID)
		return nil, err
	}

	s.logger.Info("job created", "job_id", job.ID, "name", job.Name)
	return job, nil
}

func (s *Service) UpdateJob(id string, dto CreateJobDTO) (*Job, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("job validation failed", "error", err, "job_id", id)
		return nil, err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrJobNotFound
	}

	job := &Job{
		ID:                id,
		Name:              dto.Name,
		Client:            dto.Client,
		DefaultHourlyRate: dto.DefaultHourlyRate,
		Active:            dto.Active,
		CreatedAt:         existing.CreatedAt,
	}

	if err := s.repo.Update(job); err != nil {
		s.logger.Error("failed to update job", "error", err, "job_id", id)
		return nil, err
	}

	s.logger.Info("job updated", "job_id", id)
	return job, nil
}

func (s *Service) DeleteJob(id string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrJobNotFound
	}
	if err := s.repo.Remove(id); err != nil {
		s.logger.Error("failed to delete job", "error", err, "job_id", id)
		return err
	}
	s.logger.Info("job deleted", "job_id", id)
	return nil
}

func (s *Service) GetJob(id string) (*Job, error) {
	job, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrJobNotFound
	}
	return job, nil
}

func (s *Service) GetAllJobs() ([]*Job, error) {
	return s.repo.GetAll()
}

func (s *Service) GetActiveJobs() ([]*Job, error) {
	return s.repo.GetActive()
}
