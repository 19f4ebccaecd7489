package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/core"
	"github.com/leozw/launchpad/internal/storage"
)

// Cache is the dispatch-table cache surface. *redis.Client satisfies it.
type Cache interface {
	CacheDispatchLimits(ctx context.Context, scriptID string, limits interface{}) error
	GetCachedDispatchLimits(ctx context.Context, scriptID string, dest interface{}) error
	CacheOutboundWorker(ctx context.Context, scriptID string, worker interface{}) error
	GetCachedOutboundWorker(ctx context.Context, scriptID string, dest interface{}) error
	InvalidateDispatch(ctx context.Context, scriptID string) error
}

// Service owns the per-script side tables the execution fabric consults at
// run time: resource limits and outbound-egress routing. Both are keyed by
// script id and live independently of any project or deployment; deleting a
// project never touches them.
type Service struct {
	repo   storage.DispatchRepository
	cache  Cache
	logger *zap.Logger
}

// NewService wires the registry. cache may be nil; lookups then always hit
// the database.
func NewService(repo storage.DispatchRepository, cache Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) SetLimits(ctx context.Context, scriptID string, cpuMs int, memory int64) (*core.DispatchLimits, error) {
	if scriptID == "" {
		return nil, fmt.Errorf("%w: script_id is required", core.ErrValidation)
	}

	limits := &core.DispatchLimits{
		ScriptID: scriptID,
		CPUMs:    cpuMs,
		Memory:   memory,
	}
	if err := s.repo.UpsertDispatchLimits(ctx, limits); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheDispatchLimits(ctx, scriptID, limits); err != nil {
			s.logger.Warn("failed to cache dispatch limits",
				zap.Error(err),
				zap.String("script_id", scriptID),
			)
			s.dropCache(ctx, scriptID)
		}
	}

	return limits, nil
}

func (s *Service) GetLimits(ctx context.Context, scriptID string) (*core.DispatchLimits, error) {
	if scriptID == "" {
		return nil, fmt.Errorf("%w: script_id is required", core.ErrValidation)
	}

	if s.cache != nil {
		var cached core.DispatchLimits
		if err := s.cache.GetCachedDispatchLimits(ctx, scriptID, &cached); err == nil {
			return &cached, nil
		}
	}

	limits, err := s.repo.GetDispatchLimits(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheDispatchLimits(ctx, scriptID, limits); err != nil {
			s.logger.Warn("failed to cache dispatch limits",
				zap.Error(err),
				zap.String("script_id", scriptID),
			)
		}
	}

	return limits, nil
}

func (s *Service) SetRoute(ctx context.Context, scriptID, outboundScriptID string) (*core.OutboundWorker, error) {
	if scriptID == "" {
		return nil, fmt.Errorf("%w: script_id is required", core.ErrValidation)
	}
	if outboundScriptID == "" {
		return nil, fmt.Errorf("%w: outbound_script_id is required", core.ErrValidation)
	}

	worker := &core.OutboundWorker{
		ScriptID:         scriptID,
		OutboundScriptID: outboundScriptID,
	}
	if err := s.repo.UpsertOutboundWorker(ctx, worker); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheOutboundWorker(ctx, scriptID, worker); err != nil {
			s.logger.Warn("failed to cache outbound worker",
				zap.Error(err),
				zap.String("script_id", scriptID),
			)
			s.dropCache(ctx, scriptID)
		}
	}

	return worker, nil
}

func (s *Service) GetRoute(ctx context.Context, scriptID string) (*core.OutboundWorker, error) {
	if scriptID == "" {
		return nil, fmt.Errorf("%w: script_id is required", core.ErrValidation)
	}

	if s.cache != nil {
		var cached core.OutboundWorker
		if err := s.cache.GetCachedOutboundWorker(ctx, scriptID, &cached); err == nil {
			return &cached, nil
		}
	}

	worker, err := s.repo.GetOutboundWorker(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheOutboundWorker(ctx, scriptID, worker); err != nil {
			s.logger.Warn("failed to cache outbound worker",
				zap.Error(err),
				zap.String("script_id", scriptID),
			)
		}
	}

	return worker, nil
}

// dropCache removes both dispatch keys after a failed cache write so a
// stale entry cannot outlive the database row that replaced it.
func (s *Service) dropCache(ctx context.Context, scriptID string) {
	if err := s.cache.InvalidateDispatch(ctx, scriptID); err != nil {
		s.logger.Warn("failed to invalidate dispatch cache",
			zap.Error(err),
			zap.String("script_id", scriptID),
		)
	}
}
