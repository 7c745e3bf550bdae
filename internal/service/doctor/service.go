package doctor

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const (
	cacheName   = "doctors"
	listCacheID = "list"
)

// CacheConfig controls the in-process directory cache. Doctors are never
// updated, so only creation invalidates it, and only in this process:
// other replicas see a new doctor once TTL expires. A TTL of zero or less
// turns the cache off.
type CacheConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:             30 * time.Second,
		CleanupInterval: time.Minute,
	}
}

type Service struct {
	store     repository.Store
	cache     *cache.Cache
	caching   bool
	validator *validator.Validator
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewService(
	store repository.Store,
	config CacheConfig,
	v *validator.Validator,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:     store,
		cache:     cache.New(config.TTL, config.CleanupInterval),
		caching:   config.TTL > 0,
		validator: v,
		logger:    log,
		metrics:   m,
	}
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	if cached, found := s.cache.Get(listCacheID); found {
		s.metrics.ObserveCache(cacheName, true)
		return cached.([]*model.Doctor), nil
	}
	s.metrics.ObserveCache(cacheName, false)

	doctors, err := s.store.Doctors().List(ctx)
	if err != nil {
		return nil, err
	}
	s.remember(listCacheID, doctors)
	return doctors, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	key := strconv.FormatInt(id, 10)
	if cached, found := s.cache.Get(key); found {
		s.metrics.ObserveCache(cacheName, true)
		return cached.(*model.Doctor), nil
	}
	s.metrics.ObserveCache(cacheName, false)

	d, err := s.store.Doctors().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.remember(key, d)
	return d, nil
}

func (s *Service) remember(key string, v interface{}) {
	if s.caching {
		s.cache.Set(key, v, cache.DefaultExpiration)
	}
}

// Create adds a doctor to the directory. Doctors have no timeline.
func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	d := &model.Doctor{
		Name:           req.Name,
		Qualification:  req.Qualification,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Department:     req.Department,
		ImageURL:       req.ImageURL,
	}
	if err := s.store.Doctors().Create(ctx, d); err != nil {
		return nil, err
	}
	s.cache.Delete(listCacheID)

	s.logger.Info("Doctor added", "doctor_id", d.ID, "department", d.Department)
	return d, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Doctors().Count(ctx)
}
