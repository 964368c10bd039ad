package services

import (
	"context"

	"github.com/aduanatrack/core/internal/domain/entities"
	"github.com/aduanatrack/core/internal/infrastructure/logger"
	"github.com/aduanatrack/core/internal/ports"
)

// AdviceService fronts the external generative-text collaborator. The
// provider is optional and best-effort: a missing credential, a network
// failure or a malformed response all collapse to ErrAdviceUnavailable.
// Advice never blocks or touches task data.
type AdviceService struct {
	provider ports.AdviceProvider
	logger   *logger.Logger
}

// NewAdviceService creates a new advice service. provider may be nil when
// no credential is configured.
func NewAdviceService(provider ports.AdviceProvider, logger *logger.Logger) *AdviceService {
	return &AdviceService{
		provider: provider,
		logger:   logger,
	}
}

// Available reports whether a provider is configured at all.
func (s *AdviceService) Available() bool {
	return s.provider != nil
}

// GetMaintenanceAdvice asks the collaborator for safety steps and tools
// for the given task description. The request is bound to ctx: a caller
// that has moved on cancels the context and the response is discarded
// instead of being applied to the wrong task.
func (s *AdviceService) GetMaintenanceAdvice(ctx context.Context, description string) (*entities.MaintenanceAdvice, error) {
	if s.provider == nil {
		s.logger.Warn("Advice requested but no API key is configured")
		return nil, entities.ErrAdviceUnavailable
	}

	advice, err := s.provider.GetMaintenanceAdvice(ctx, description)
	if err != nil {
		s.logger.Errorw("Advice request failed", "error", err)
		return nil, entities.ErrAdviceUnavailable
	}

	return advice, nil
}
