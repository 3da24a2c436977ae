package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"civicreport/internal/auth"
	"civicreport/internal/cache"
	apperrors "civicreport/internal/errors"
	"civicreport/internal/model"
	"civicreport/internal/repository"
)

const incidentCacheTTL = 5 * time.Minute

// BlobStore keeps incident photos. *storage.S3Store satisfies it.
type BlobStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// Photo is an uploaded image attached to a new incident.
type Photo struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateIncidentInput carries a new report.
type CreateIncidentInput struct {
	CategoryID  uint
	CityID      *uint
	Latitude    decimal.Decimal
	Longitude   decimal.Decimal
	Description string
	AddressRef  *string
	Photo       *Photo
}

// IncidentService handles incident operations.
type IncidentService interface {
	Create(ctx context.Context, userID uint, in CreateIncidentInput) (*model.Incident, error)
	Get(ctx context.Context, id uint) (*model.Incident, error)
	UpdateStatus(ctx context.Context, id, statusID uint) (*model.Incident, error)
	Delete(ctx context.Context, caller auth.Principal, id uint) error
}

type incidentService struct {
	repo  repository.IncidentRepository
	blobs BlobStore
	cache *cache.Client
	log   zerolog.Logger
}

// NewIncidentService creates a new incident service.
func NewIncidentService(repo repository.IncidentRepository, blobs BlobStore, cache *cache.Client, log zerolog.Logger) IncidentService {
	return &incidentService{
		repo:  repo,
		blobs: blobs,
		cache: cache,
		log:   log.With().Str("component", "incident_service").Logger(),
	}
}

func (s *incidentService) cacheKey(id uint) string {
	return fmt.Sprintf("incident:%d", id)
}

// Create stores a report filed by userID, uploading the photo first when
// present.
func (s *incidentService) Create(ctx context.Context, userID uint, in CreateIncidentInput) (*model.Incident, error) {
	incident := &model.Incident{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		StatusID:    model.StatusReported,
		CityID:      in.CityID,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Description: DecodeDescription(in.Description),
		AddressRef:  in.AddressRef,
	}

	if in.Photo != nil {
		url, err := s.blobs.Upload(ctx, in.Photo.Filename, in.Photo.ContentType, in.Photo.Body)
		if err != nil {
			return nil, fmt.Errorf("upload photo: %w", err)
		}
		incident.PhotoURL = &url
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		if incident.PhotoURL != nil {
			_ = s.blobs.Delete(ctx, *incident.PhotoURL)
		}
		return nil, err
	}

	s.log.Info().Uint("incident_id", incident.ID).Uint("user_id", userID).Msg("incident reported")
	return incident, nil
}

// Get returns an incident, served from cache when possible.
func (s *incidentService) Get(ctx context.Context, id uint) (*model.Incident, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Incident
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(incident); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, incidentCacheTTL)
	}
	return incident, nil
}

// UpdateStatus moves an incident to statusID and returns the stored result.
func (s *incidentService) UpdateStatus(ctx context.Context, id, statusID uint) (*model.Incident, error) {
	if err := s.repo.UpdateStatus(ctx, id, statusID); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	return s.repo.FindByID(ctx, id)
}

// Delete removes an incident. Only its owner or an ADMIN may do so.
func (s *incidentService) Delete(ctx context.Context, caller auth.Principal, id uint) error {
	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if caller.Role != model.RoleAdmin && incident.UserID != caller.ID {
		return fmt.Errorf("delete incident %d by user %d: %w", id, caller.ID, apperrors.ErrAccessDenied)
	}

	if incident.PhotoURL != nil {
		_ = s.blobs.Delete(ctx, *incident.PhotoURL)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	s.log.Info().Uint("incident_id", id).Uint("by", caller.ID).Msg("incident deleted")
	return nil
}

// DecodeDescription undoes the base64 wrapping clients apply to free text.
// Input that is not valid base64 of UTF-8 text is kept as sent.
func DecodeDescription(raw string) string {
	if raw == "" {
		return raw
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || !utf8.Valid(decoded) {
		return raw
	}
	return string(decoded)
}
