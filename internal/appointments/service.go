package appointments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"booking-api/internal/apperr"
	"booking-api/internal/events"
	"booking-api/internal/models"
	"booking-api/internal/optional"
	"booking-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const statusEnumMessage = "status must be one of: scheduled, confirmed, completed, cancelled"

// ServiceLookup resolves the service an appointment books. A missing
// service is reported as an apperr NotFound.
type ServiceLookup interface {
	GetService(ctx context.Context, id string) (models.Service, error)
}

// Manager owns the appointment lifecycle: input validation, end time
// derivation and partial updates. Status moves freely between the four
// values; there is no transition graph.
type Manager struct {
	repo      Repository
	services  ServiceLookup
	val       *validation.Validator
	publisher events.Publisher
	log       *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewManager(repo Repository, services ServiceLookup, val *validation.Validator, publisher events.Publisher, log *slog.Logger) *Manager {
	if publisher == nil {
		publisher = events.NewNoop()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		repo:      repo,
		services:  services,
		val:       val,
		publisher: publisher,
		log:       log,
		tracer:    otel.Tracer("booking-api/appointments"),
		now:       time.Now,
	}
}

func (m *Manager) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}

func (m *Manager) Create(ctx context.Context, req CreateRequest) (item models.Appointment, err error) {
	ctx, span := m.tracer.Start(ctx, "appointments.create")
	defer func() { endSpan(span, err) }()

	req.EndAt = strings.TrimSpace(req.EndAt)
	req.Status = strings.TrimSpace(req.Status)
	if err := m.val.Check(req); err != nil {
		return models.Appointment{}, err
	}

	startAt, err := validation.ParseInstant(req.StartAt)
	if err != nil {
		return models.Appointment{}, apperr.Validation("startAt must be a valid ISO date")
	}

	status := req.Status
	if status == "" {
		status = models.AppointmentStatusScheduled
	}

	var endAt time.Time
	if req.EndAt != "" {
		endAt, err = validation.ParseInstant(req.EndAt)
		if err != nil {
			return models.Appointment{}, apperr.Validation("endAt must be a valid ISO date")
		}
	} else {
		derived, ok, err := m.deriveEndAt(ctx, req.ServiceID, startAt)
		if err != nil {
			return models.Appointment{}, err
		}
		if !ok {
			return models.Appointment{}, apperr.Validation("endAt is required when service has no durationMin")
		}
		endAt = derived
	}

	var notes *string
	if req.Notes != nil && *req.Notes != "" {
		n := *req.Notes
		notes = &n
	}
	var createdBy *string
	if req.CreatedBy != nil {
		c := *req.CreatedBy
		createdBy = &c
	}

	now := m.timestamp()
	item = models.Appointment{
		ID:         primitive.NewObjectID().Hex(),
		ClientID:   req.ClientID,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StartAt:    startAt,
		EndAt:      endAt,
		Status:     status,
		Notes:      notes,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	span.SetAttributes(attribute.String("appointment.id", item.ID))

	if err := m.repo.Create(ctx, item); err != nil {
		return models.Appointment{}, apperr.Internal(err, "database error")
	}

	m.publish(ctx, events.AppointmentCreated, item)
	return item, nil
}

func (m *Manager) Get(ctx context.Context, id string) (models.Appointment, error) {
	if !validation.IsObjectID(id) {
		return models.Appointment{}, apperr.Validation("Invalid appointment id")
	}
	item, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return models.Appointment{}, notFoundOr(err)
	}
	return item, nil
}

func (m *Manager) List(ctx context.Context) ([]models.Appointment, error) {
	items, err := m.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "database error")
	}
	return items, nil
}

func (m *Manager) Update(ctx context.Context, id string, req UpdateRequest) (item models.Appointment, err error) {
	ctx, span := m.tracer.Start(ctx, "appointments.update", trace.WithAttributes(attribute.String("appointment.id", id)))
	defer func() { endSpan(span, err) }()

	if !validation.IsObjectID(id) {
		return models.Appointment{}, apperr.Validation("Invalid appointment id")
	}

	existing, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return models.Appointment{}, notFoundOr(err)
	}

	set, err := buildUpdate(req)
	if err != nil {
		return models.Appointment{}, err
	}
	if len(set) == 0 {
		return models.Appointment{}, apperr.Validation("no fields to update")
	}

	_, endGiven := set["endAt"]
	if !endGiven && (req.StartAt.Present() || req.ServiceID.Present()) {
		nextStart := existing.StartAt
		if v, ok := set["startAt"].(time.Time); ok {
			nextStart = v
		}
		nextService := existing.ServiceID
		if v, ok := set["serviceId"].(string); ok {
			nextService = v
		}
		derived, ok, err := m.deriveEndAt(ctx, nextService, nextStart)
		if err != nil {
			return models.Appointment{}, err
		}
		// unlike create, a service without a duration keeps the stored endAt
		if ok {
			set["endAt"] = derived
		}
	}

	set["updatedAt"] = m.timestamp()

	item, err = m.repo.Update(ctx, id, set)
	if err != nil {
		return models.Appointment{}, notFoundOr(err)
	}

	m.publish(ctx, events.AppointmentUpdated, item)
	return item, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if !validation.IsObjectID(id) {
		return apperr.Validation("Invalid appointment id")
	}
	deleted, err := m.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err, "database error")
	}
	if !deleted {
		return apperr.NotFound("Appointment not found")
	}
	m.publish(ctx, events.AppointmentDeleted, map[string]string{"id": id})
	return nil
}

// deriveEndAt computes startAt + the service duration. ok is false when
// the service does not exist or has no usable duration.
func (m *Manager) deriveEndAt(ctx context.Context, serviceID string, startAt time.Time) (time.Time, bool, error) {
	svc, err := m.services.GetService(ctx, serviceID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, apperr.Internal(err, "service lookup failed")
	}
	if svc.DurationMin <= 0 {
		return time.Time{}, false, nil
	}
	return startAt.Add(time.Duration(svc.DurationMin) * time.Minute), true, nil
}

func (m *Manager) publish(ctx context.Context, key string, data interface{}) {
	if err := m.publisher.Publish(ctx, key, data); err != nil {
		m.log.Warn("appointments event: publish failed", slog.String("event", key), slog.String("error", err.Error()))
	}
}

// buildUpdate validates every present field and returns the $set document.
func buildUpdate(req UpdateRequest) (bson.M, error) {
	set := bson.M{}

	refs := []struct {
		name  string
		field optional.Field[string]
	}{
		{"clientId", req.ClientID},
		{"providerId", req.ProviderID},
		{"serviceId", req.ServiceID},
	}
	for _, ref := range refs {
		if !ref.field.Present() {
			continue
		}
		v, ok := ref.field.Get()
		if !ok {
			return nil, apperr.Validation("%s is required", ref.name)
		}
		if !validation.IsObjectID(v) {
			return nil, apperr.Validation("%s must be a valid ObjectId", ref.name)
		}
		set[ref.name] = v
	}

	if req.StartAt.Present() {
		v, ok := req.StartAt.Get()
		if !ok {
			return nil, apperr.Validation("startAt is required")
		}
		t, err := validation.ParseInstant(v)
		if err != nil {
			return nil, apperr.Validation("startAt must be a valid ISO date")
		}
		set["startAt"] = t
	}

	if req.EndAt.Present() {
		v, ok := req.EndAt.Get()
		if !ok {
			return nil, apperr.Validation("endAt cannot be null")
		}
		t, err := validation.ParseInstant(v)
		if err != nil {
			return nil, apperr.Validation("endAt must be a valid ISO date")
		}
		set["endAt"] = t
	}

	if req.Status.Present() {
		v, ok := req.Status.Get()
		if !ok || !models.IsValidAppointmentStatus(v) {
			return nil, apperr.Validation(statusEnumMessage)
		}
		set["status"] = v
	}

	if req.Notes.Present() {
		if v, ok := req.Notes.Get(); ok {
			set["notes"] = v
		} else {
			set["notes"] = nil
		}
	}

	if req.CreatedBy.Present() {
		v, ok := req.CreatedBy.Get()
		switch {
		case !ok:
			set["createdBy"] = nil
		case !validation.IsObjectID(v):
			return nil, apperr.Validation("createdBy must be a valid ObjectId")
		default:
			set["createdBy"] = v
		}
	}

	return set, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("Appointment not found")
	}
	return apperr.Internal(err, "database error")
}

func endSpan(span trace.Span, err error) {
	if err != nil && apperr.KindOf(err) == apperr.KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
