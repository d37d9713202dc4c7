package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantService resolves tenants by id or slug. Lookup order: cache, then the
// in-process fallback store (demo / non-persistent mode), then the backing
// database with a case-insensitive slug match. Any non-cache hit populates
// both cache namespaces so the next lookup by either key is cheap.
type TenantService struct {
	db    *gorm.DB
	cache *TenantCache

	mu           sync.RWMutex
	fallbackSlug map[string]*models.Tenant
	fallbackID   map[string]*models.Tenant
}

func NewTenantService(db *gorm.DB, cache *TenantCache) *TenantService {
	return &TenantService{
		db:           db,
		cache:        cache,
		fallbackSlug: make(map[string]*models.Tenant),
		fallbackID:   make(map[string]*models.Tenant),
	}
}

// NormalizeSlug lower-cases and trims a slug so lookups differing only in
// case or surrounding whitespace resolve to the same tenant and share one
// cache entry.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func slugCacheKey(slug string) string { return "slug:" + slug }
func idCacheKey(id string) string     { return "id:" + id }

// ResolveBySlug returns the tenant for slug, or nil when no tenant matches.
// Absence is not an error; only a store failure returns a non-nil error.
func (s *TenantService) ResolveBySlug(slug string) (*models.Tenant, error) {
	norm := NormalizeSlug(slug)
	if norm == "" {
		return nil, nil
	}

	if t := s.cache.Get(slugCacheKey(norm)); t != nil {
		return t, nil
	}

	s.mu.RLock()
	t := s.fallbackSlug[norm]
	s.mu.RUnlock()
	if t != nil {
		s.populateCache(t)
		return t, nil
	}

	if s.db == nil {
		return nil, nil
	}

	var tenant models.Tenant
	err := s.db.Where("LOWER(slug) = ?", norm).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.populateCache(&tenant)
	return &tenant, nil
}

// ResolveByID returns the tenant for id, or nil when no tenant matches.
func (s *TenantService) ResolveByID(id string) (*models.Tenant, error) {
	if id == "" {
		return nil, nil
	}

	if t := s.cache.Get(idCacheKey(id)); t != nil {
		return t, nil
	}

	s.mu.RLock()
	t := s.fallbackID[id]
	s.mu.RUnlock()
	if t != nil {
		s.populateCache(t)
		return t, nil
	}

	if s.db == nil {
		return nil, nil
	}

	var tenant models.Tenant
	err := s.db.Where("id = ?", id).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.populateCache(&tenant)
	return &tenant, nil
}

// populateCache fills both namespaces. The two insertions are not atomic; a
// concurrent reader may briefly observe one populated and the other not.
func (s *TenantService) populateCache(t *models.Tenant) {
	s.cache.Set(slugCacheKey(NormalizeSlug(t.Slug)), t)
	s.cache.Set(idCacheKey(t.ID), t)
}

// SeedFallback registers a tenant in the in-process fallback store. Used in
// demo mode where no persistent store is configured.
func (s *TenantService) SeedFallback(t *models.Tenant) {
	norm := NormalizeSlug(t.Slug)
	s.mu.Lock()
	s.fallbackSlug[norm] = t
	s.fallbackID[t.ID] = t
	s.mu.Unlock()
	logger.Infof("[Tenant] Seeded fallback tenant: %s (%s)", t.Name, norm)
}

// Create registers a new tenant with a generated id and normalized slug.
func (s *TenantService) Create(name, slug string) (*models.Tenant, error) {
	norm := NormalizeSlug(slug)
	if norm == "" || name == "" {
		return nil, errors.New("tenant name and slug are required")
	}

	tenant := &models.Tenant{
		ID:     uuid.NewString(),
		Slug:   norm,
		Name:   name,
		Status: models.TenantStatusActive,
	}

	if s.db == nil {
		s.SeedFallback(tenant)
		s.populateCache(tenant)
		return tenant, nil
	}

	if existing, err := s.ResolveBySlug(norm); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errors.New("slug already in use")
	}

	if err := s.db.Create(tenant).Error; err != nil {
		return nil, err
	}

	s.populateCache(tenant)
	return tenant, nil
}

// List returns all tenants, newest first.
func (s *TenantService) List() ([]models.Tenant, error) {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		tenants := make([]models.Tenant, 0, len(s.fallbackID))
		for _, t := range s.fallbackID {
			tenants = append(tenants, *t)
		}
		return tenants, nil
	}

	var tenants []models.Tenant
	if err := s.db.Order("created_at DESC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// UpdateStatus changes a tenant's lifecycle status and drops its cache
// entries so the next resolution observes the new state.
func (s *TenantService) UpdateStatus(id, status string) (*models.Tenant, error) {
	if status != models.TenantStatusActive && status != models.TenantStatusSuspended {
		return nil, errors.New("invalid tenant status")
	}

	tenant, err := s.ResolveByID(id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, nil
	}

	tenant.Status = status
	tenant.UpdatedAt = time.Now()
	if s.db != nil {
		if err := s.db.Model(&models.Tenant{}).Where("id = ?", id).
			Update("status", status).Error; err != nil {
			return nil, err
		}
	}

	s.cache.Invalidate(slugCacheKey(NormalizeSlug(tenant.Slug)))
	s.cache.Invalidate(idCacheKey(tenant.ID))
	return tenant, nil
}
