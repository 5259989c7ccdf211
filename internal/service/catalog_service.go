package service

import (
	"context"
	"time"

	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/Its-Samir/booking-api/internal/store"
	"github.com/Its-Samir/booking-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventsPageSize = 5

// CatalogStore is the slice of the store the catalog service depends on.
type CatalogStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	AttendeeCount(ctx context.Context, eventID string) (int, error)
	IsAttendee(ctx context.Context, eventID, userID string) (bool, error)
	SearchEvents(ctx context.Context, f store.EventSearchFilter, offset, limit int) ([]models.Event, int, error)
	GetUserCity(ctx context.Context, userID string) (string, error)
	AddReview(ctx context.Context, review *models.Review) error
	EditReview(ctx context.Context, review *models.Review) error
	ListReviews(ctx context.Context, eventID string) ([]models.Review, error)
	ToggleLike(ctx context.Context, eventID, userID string) (bool, error)
}

// CatalogService owns event creation, browsing, reviews and likes.
type CatalogService struct {
	store  CatalogStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateEventRequest carries the organizer-supplied event fields
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Address     string    `json:"address" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	EventTime   string    `json:"time" binding:"required"`
	MaxPeople   int       `json:"max_people" binding:"required,min=1"`
	TicketPrice int64     `json:"ticket_price" binding:"required,min=0"`
	Category    string    `json:"category" binding:"required"`
	ImageURL    string    `json:"image_url"`
}

// CreateEvent creates an event owned by the organizer. Events scheduled in
// the past are rejected.
func (s *CatalogService) CreateEvent(ctx context.Context, organizerID string, req *CreateEventRequest) (*models.Event, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateEvent")
	defer span.End()

	now := time.Now()
	if req.StartDate.Before(now) || req.EndDate.Before(now) {
		return nil, models.ErrPastSchedule
	}

	event := &models.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		EventTime:   req.EventTime,
		MaxPeople:   req.MaxPeople,
		TicketPrice: req.TicketPrice,
		Category:    req.Category,
		OrganizerID: organizerID,
		ImageURL:    req.ImageURL,
	}

	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("organizer_id", organizerID))
	return event, nil
}

// EventDetail is an event with its reviews, remaining seats and whether the
// caller already holds a seat.
type EventDetail struct {
	*models.Event
	Reviews        []models.Review `json:"reviews"`
	AvailableSeats int             `json:"available_seats"`
	IsBooked       bool            `json:"isBooked"`
}

// GetEvent returns the full event detail. callerID may be empty for
// anonymous browsing.
func (s *CatalogService) GetEvent(ctx context.Context, eventID, callerID string) (*EventDetail, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetEvent")
	defer span.End()

	event, err := s.store.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviews(ctx, eventID)
	if err != nil {
		return nil, err
	}

	taken, err := s.store.AttendeeCount(ctx, eventID)
	if err != nil {
		return nil, err
	}

	isBooked := false
	if callerID != "" {
		isBooked, err = s.store.IsAttendee(ctx, eventID, callerID)
		if err != nil {
			return nil, err
		}
	}

	return &EventDetail{
		Event:          event,
		Reviews:        reviews,
		AvailableSeats: event.MaxPeople - taken,
		IsBooked:       isBooked,
	}, nil
}

// SearchEvents returns one page of upcoming events matching the filter.
// When no explicit location is given and a userID is, the user's profile
// city becomes the default location filter.
func (s *CatalogService) SearchEvents(ctx context.Context, f store.EventSearchFilter, userID string, page int) ([]models.Event, PageInfo, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SearchEvents")
	defer span.End()

	if f.Location == "" && userID != "" {
		city, err := s.store.GetUserCity(ctx, userID)
		if err != nil {
			return nil, PageInfo{}, err
		}
		f.Location = city
	}

	if page < 1 {
		page = 1
	}
	events, total, err := s.store.SearchEvents(ctx, f, (page-1)*eventsPageSize, eventsPageSize)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return events, NewPageInfo(page, eventsPageSize, total), nil
}

// AddReview appends the user's review; a user reviews an event at most once.
func (s *CatalogService) AddReview(ctx context.Context, eventID, userID string, rating int, comment string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.AddReview")
	defer span.End()

	if rating < 1 || rating > 5 {
		return models.ErrInvalidRating
	}

	return s.store.AddReview(ctx, &models.Review{
		EventID: eventID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	})
}

// EditReview replaces the user's existing review in place.
func (s *CatalogService) EditReview(ctx context.Context, eventID, userID string, rating int, comment string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.EditReview")
	defer span.End()

	if rating < 1 || rating > 5 {
		return models.ErrInvalidRating
	}

	return s.store.EditReview(ctx, &models.Review{
		EventID: eventID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	})
}

// ToggleLike flips the user's like; returns true when the event ended up
// liked.
func (s *CatalogService) ToggleLike(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ToggleLike")
	defer span.End()

	if _, err := s.store.GetEventByID(ctx, eventID); err != nil {
		return false, err
	}
	return s.store.ToggleLike(ctx, eventID, userID)
}
