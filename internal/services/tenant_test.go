package services

import (
	"testing"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
)

func newTestTenantService() *TenantService {
	cache := NewTenantCache(DefaultTenantCacheTTL, DefaultTenantCacheCapacity)
	return NewTenantService(nil, cache)
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hotel-sol", "hotel-sol"},
		{"Hotel-Sol", "hotel-sol"},
		{"HOTEL-SOL", "hotel-sol"},
		{"  hotel-sol  ", "hotel-sol"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeSlug(tt.input); got != tt.expected {
			t.Errorf("NormalizeSlug(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestTenantService_ResolveBySlug_NotFound(t *testing.T) {
	svc := newTestTenantService()

	tenant, err := svc.ResolveBySlug("missing")
	if err != nil {
		t.Fatalf("ResolveBySlug() error = %v", err)
	}
	if tenant != nil {
		t.Errorf("expected nil for unknown slug, got %v", tenant)
	}
}

func TestTenantService_ResolveBySlug_EmptySlug(t *testing.T) {
	svc := newTestTenantService()

	tenant, err := svc.ResolveBySlug("   ")
	if err != nil {
		t.Fatalf("ResolveBySlug() error = %v", err)
	}
	if tenant != nil {
		t.Error("blank slug should resolve to nil")
	}
}

func TestTenantService_FallbackResolution(t *testing.T) {
	svc := newTestTenantService()
	svc.SeedFallback(&models.Tenant{
		ID:     "t1",
		Slug:   "hotel-sol",
		Name:   "Hotel Sol",
		Status: models.TenantStatusActive,
	})

	tenant, err := svc.ResolveBySlug("hotel-sol")
	if err != nil {
		t.Fatalf("ResolveBySlug() error = %v", err)
	}
	if tenant == nil || tenant.ID != "t1" {
		t.Fatalf("expected tenant t1, got %v", tenant)
	}

	byID, err := svc.ResolveByID("t1")
	if err != nil {
		t.Fatalf("ResolveByID() error = %v", err)
	}
	if byID == nil || byID.Slug != "hotel-sol" {
		t.Errorf("expected slug hotel-sol, got %v", byID)
	}
}

func TestTenantService_CaseInsensitiveResolution(t *testing.T) {
	svc := newTestTenantService()
	svc.SeedFallback(&models.Tenant{ID: "t1", Slug: "hotel-sol", Name: "Hotel Sol"})

	for _, slug := range []string{"hotel-sol", "HOTEL-SOL", "Hotel-Sol", " hotel-sol "} {
		tenant, err := svc.ResolveBySlug(slug)
		if err != nil {
			t.Fatalf("ResolveBySlug(%q) error = %v", slug, err)
		}
		if tenant == nil || tenant.ID != "t1" {
			t.Errorf("ResolveBySlug(%q) = %v, expected tenant t1", slug, tenant)
		}
	}

	// All variants share one cache entry
	if n := svc.cache.Len(); n != 2 { // slug: + id:
		t.Errorf("cache Len = %d, expected 2 (one per namespace)", n)
	}
}

func TestTenantService_ResolutionPopulatesBothNamespaces(t *testing.T) {
	svc := newTestTenantService()
	svc.SeedFallback(&models.Tenant{ID: "t1", Slug: "hotel-sol", Name: "Hotel Sol"})

	if _, err := svc.ResolveBySlug("hotel-sol"); err != nil {
		t.Fatalf("ResolveBySlug() error = %v", err)
	}

	if svc.cache.Get("slug:hotel-sol") == nil {
		t.Error("slug namespace entry missing after resolution")
	}
	if svc.cache.Get("id:t1") == nil {
		t.Error("id namespace entry missing after resolution")
	}
}

func TestTenantService_Create_WithoutStore(t *testing.T) {
	svc := newTestTenantService()

	tenant, err := svc.Create("Hotel Sol", "Hotel-Sol")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tenant.ID == "" {
		t.Error("Create() should assign an id")
	}
	if tenant.Slug != "hotel-sol" {
		t.Errorf("Slug = %q, expected normalized %q", tenant.Slug, "hotel-sol")
	}
	if tenant.Status != models.TenantStatusActive {
		t.Errorf("Status = %q, expected %q", tenant.Status, models.TenantStatusActive)
	}

	resolved, err := svc.ResolveBySlug("hotel-sol")
	if err != nil {
		t.Fatalf("ResolveBySlug() error = %v", err)
	}
	if resolved == nil || resolved.ID != tenant.ID {
		t.Error("created tenant should be resolvable")
	}
}

func TestTenantService_Create_Validation(t *testing.T) {
	svc := newTestTenantService()

	if _, err := svc.Create("", "hotel-sol"); err == nil {
		t.Error("Create() without name should fail")
	}
	if _, err := svc.Create("Hotel Sol", "  "); err == nil {
		t.Error("Create() with blank slug should fail")
	}
}

func TestTenantService_UpdateStatus_InvalidatesCache(t *testing.T) {
	svc := newTestTenantService()
	svc.SeedFallback(&models.Tenant{ID: "t1", Slug: "hotel-sol", Name: "Hotel Sol", Status: models.TenantStatusActive})

	// Warm the cache
	if _, err := svc.ResolveByID("t1"); err != nil {
		t.Fatalf("ResolveByID() error = %v", err)
	}

	tenant, err := svc.UpdateStatus("t1", models.TenantStatusSuspended)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if tenant.Status != models.TenantStatusSuspended {
		t.Errorf("Status = %q, expected suspended", tenant.Status)
	}

	if svc.cache.Get("slug:hotel-sol") != nil || svc.cache.Get("id:t1") != nil {
		t.Error("cache entries should be invalidated after status change")
	}

	// Next resolution observes the new state
	resolved, _ := svc.ResolveByID("t1")
	if resolved == nil || resolved.Status != models.TenantStatusSuspended {
		t.Errorf("resolved status = %v, expected suspended", resolved)
	}
}

func TestTenantService_UpdateStatus_Invalid(t *testing.T) {
	svc := newTestTenantService()
	if _, err := svc.UpdateStatus("t1", "paused"); err == nil {
		t.Error("UpdateStatus() with unknown status should fail")
	}
}

func TestTenantService_CacheServesResolution(t *testing.T) {
	svc := newTestTenantService()
	svc.SeedFallback(&models.Tenant{ID: "t1", Slug: "hotel-sol", Name: "Hotel Sol"})

	if _, err := svc.ResolveBySlug("hotel-sol"); err != nil {
		t.Fatalf("ResolveBySlug() error = %v", err)
	}

	// Remove the fallback entry; the cache alone must now serve lookups
	svc.mu.Lock()
	delete(svc.fallbackSlug, "hotel-sol")
	delete(svc.fallbackID, "t1")
	svc.mu.Unlock()

	tenant, err := svc.ResolveBySlug("hotel-sol")
	if err != nil {
		t.Fatalf("ResolveBySlug() error = %v", err)
	}
	if tenant == nil || tenant.ID != "t1" {
		t.Error("cached entry should serve resolution")
	}
}
