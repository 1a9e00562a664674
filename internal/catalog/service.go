package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"booking-api/internal/apperr"
	"booking-api/internal/cache"
	"booking-api/internal/models"
	"booking-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	providersKey     = "providers:all"
	servicesKey      = "services:all"
	servicePrefixKey = "services:"
)

// Manager serves provider and service records. List reads and single
// service lookups go through the cache; every write invalidates it.
type Manager struct {
	providers ProviderRepository
	services  ServiceRepository
	cache     cache.Cache
	cacheTTL  time.Duration
	val       *validation.Validator
	log       *slog.Logger
	now       func() time.Time
}

func NewManager(providers ProviderRepository, services ServiceRepository, c cache.Cache, cacheTTL time.Duration, val *validation.Validator, log *slog.Logger) *Manager {
	if c == nil {
		c = cache.NewNoop()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		providers: providers,
		services:  services,
		cache:     c,
		cacheTTL:  cacheTTL,
		val:       val,
		log:       log,
		now:       time.Now,
	}
}

func (m *Manager) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}

func (m *Manager) ListProviders(ctx context.Context) ([]models.Provider, error) {
	var cached []models.Provider
	if m.cachedJSON(ctx, providersKey, &cached) {
		return cached, nil
	}

	items, err := m.providers.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "database error")
	}
	m.storeJSON(ctx, providersKey, items)
	return items, nil
}

func (m *Manager) GetProvider(ctx context.Context, id string) (models.Provider, error) {
	if !validation.IsObjectID(id) {
		return models.Provider{}, apperr.Validation("Invalid provider id")
	}
	item, err := m.providers.FindByID(ctx, id)
	if err != nil {
		return models.Provider{}, storeError(err, "Provider not found")
	}
	return item, nil
}

func (m *Manager) CreateProvider(ctx context.Context, req ProviderCreateRequest) (models.Provider, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := m.val.Check(req); err != nil {
		return models.Provider{}, err
	}

	specialties := req.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := m.timestamp()
	item := models.Provider{
		ID:           primitive.NewObjectID().Hex(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		Specialties:  specialties,
		Availability: req.Availability,
		IsActive:     isActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := m.providers.Create(ctx, item); err != nil {
		return models.Provider{}, storeError(err, "Provider not found")
	}
	m.invalidate(ctx, providersKey)
	return item, nil
}

func (m *Manager) UpdateProvider(ctx context.Context, id string, req ProviderUpdateRequest) (models.Provider, error) {
	if !validation.IsObjectID(id) {
		return models.Provider{}, apperr.Validation("Invalid provider id")
	}

	set := bson.M{}
	if req.Name.Present() {
		v, ok := req.Name.Get()
		if !ok || strings.TrimSpace(v) == "" {
			return models.Provider{}, apperr.Validation("name is required")
		}
		set["name"] = strings.TrimSpace(v)
	}
	if req.Email.Present() {
		v, ok := req.Email.Get()
		v = strings.ToLower(strings.TrimSpace(v))
		if !ok || !validation.IsEmailShape(v) {
			return models.Provider{}, apperr.Validation("email must be a valid email address")
		}
		set["email"] = v
	}
	if req.Phone.Present() {
		set["phone"] = strings.TrimSpace(req.Phone.Value())
	}
	if req.Specialties.Present() {
		v := req.Specialties.Value()
		if v == nil {
			v = []string{}
		}
		set["specialties"] = v
	}
	if req.Availability.Present() {
		set["availability"] = req.Availability.Value()
	}
	if req.IsActive.Present() {
		v, ok := req.IsActive.Get()
		if !ok {
			return models.Provider{}, apperr.Validation("isActive must be a boolean")
		}
		set["isActive"] = v
	}
	if len(set) == 0 {
		return models.Provider{}, apperr.Validation("No fields to update")
	}
	set["updatedAt"] = m.timestamp()

	item, err := m.providers.Update(ctx, id, set)
	if err != nil {
		return models.Provider{}, storeError(err, "Provider not found")
	}
	m.invalidate(ctx, providersKey)
	return item, nil
}

func (m *Manager) DeleteProvider(ctx context.Context, id string) error {
	if !validation.IsObjectID(id) {
		return apperr.Validation("Invalid provider id")
	}
	deleted, err := m.providers.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err, "database error")
	}
	if !deleted {
		return apperr.NotFound("Provider not found")
	}
	m.invalidate(ctx, providersKey)
	return nil
}

func (m *Manager) ListServices(ctx context.Context) ([]models.Service, error) {
	var cached []models.Service
	if m.cachedJSON(ctx, servicesKey, &cached) {
		return cached, nil
	}

	items, err := m.services.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "database error")
	}
	m.storeJSON(ctx, servicesKey, items)
	return items, nil
}

// GetService also backs end time derivation for appointments.
func (m *Manager) GetService(ctx context.Context, id string) (models.Service, error) {
	if !validation.IsObjectID(id) {
		return models.Service{}, apperr.Validation("Invalid service id")
	}

	var cached models.Service
	if m.cachedJSON(ctx, servicePrefixKey+id, &cached) {
		return cached, nil
	}

	item, err := m.services.FindByID(ctx, id)
	if err != nil {
		return models.Service{}, storeError(err, "Service not found")
	}
	m.storeJSON(ctx, servicePrefixKey+id, item)
	return item, nil
}

func (m *Manager) CreateService(ctx context.Context, req ServiceCreateRequest) (models.Service, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := m.val.Check(req); err != nil {
		return models.Service{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := m.timestamp()
	item := models.Service{
		ID:          primitive.NewObjectID().Hex(),
		Name:        req.Name,
		DurationMin: *req.DurationMin,
		Price:       *req.Price,
		Description: trimmedOrNil(req.Description),
		Category:    trimmedOrNil(req.Category),
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.services.Create(ctx, item); err != nil {
		return models.Service{}, storeError(err, "Service not found")
	}
	m.invalidate(ctx, servicesKey)
	return item, nil
}

func (m *Manager) UpdateService(ctx context.Context, id string, req ServiceUpdateRequest) (models.Service, error) {
	if !validation.IsObjectID(id) {
		return models.Service{}, apperr.Validation("Invalid service id")
	}

	set := bson.M{}
	if req.Name.Present() {
		v, ok := req.Name.Get()
		if !ok || strings.TrimSpace(v) == "" {
			return models.Service{}, apperr.Validation("name is required")
		}
		set["name"] = strings.TrimSpace(v)
	}
	if req.DurationMin.Present() {
		v, ok := req.DurationMin.Get()
		if !ok || v < 1 {
			return models.Service{}, apperr.Validation("durationMin must be an integer >= 1")
		}
		set["durationMin"] = v
	}
	if req.Price.Present() {
		v, ok := req.Price.Get()
		if !ok || v < 0 {
			return models.Service{}, apperr.Validation("price must be >= 0")
		}
		set["price"] = v
	}
	if req.Description.Present() {
		set["description"] = optionalText(req.Description.Get())
	}
	if req.Category.Present() {
		set["category"] = optionalText(req.Category.Get())
	}
	if req.IsActive.Present() {
		v, ok := req.IsActive.Get()
		if !ok {
			return models.Service{}, apperr.Validation("isActive must be a boolean")
		}
		set["isActive"] = v
	}
	if len(set) == 0 {
		return models.Service{}, apperr.Validation("No fields to update")
	}
	set["updatedAt"] = m.timestamp()

	item, err := m.services.Update(ctx, id, set)
	if err != nil {
		return models.Service{}, storeError(err, "Service not found")
	}
	m.invalidate(ctx, servicesKey, servicePrefixKey+id)
	return item, nil
}

func (m *Manager) DeleteService(ctx context.Context, id string) error {
	if !validation.IsObjectID(id) {
		return apperr.Validation("Invalid service id")
	}
	deleted, err := m.services.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err, "database error")
	}
	if !deleted {
		return apperr.NotFound("Service not found")
	}
	m.invalidate(ctx, servicesKey, servicePrefixKey+id)
	return nil
}

// cachedJSON treats cache failures as misses; the store stays authoritative.
func (m *Manager) cachedJSON(ctx context.Context, key string, dst interface{}) bool {
	ok, err := cache.GetJSON(ctx, m.cache, key, dst)
	if err != nil {
		m.log.Warn("catalog cache: get failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return ok
}

func (m *Manager) storeJSON(ctx context.Context, key string, value interface{}) {
	if err := cache.SetJSON(ctx, m.cache, key, value, m.cacheTTL); err != nil {
		m.log.Warn("catalog cache: set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (m *Manager) invalidate(ctx context.Context, keys ...string) {
	if err := m.cache.Delete(ctx, keys...); err != nil {
		m.log.Warn("catalog cache: invalidate failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound(notFound)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Conflict("Email already in use")
	default:
		return apperr.Internal(err, "database error")
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func optionalText(v string, ok bool) interface{} {
	if !ok {
		return nil
	}
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return nil
}
