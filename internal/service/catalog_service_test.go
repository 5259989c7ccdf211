package service

import (
	"context"
	"testing"
	"time"

	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/Its-Samir/booking-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogStore struct {
	events     map[string]*models.Event
	reviews    map[string][]models.Review
	attendees  map[string]map[string]bool
	likes      map[string]map[string]bool
	userCities map[string]string

	lastFilter store.EventSearchFilter
	lastOffset int
	lastLimit  int
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		events:     make(map[string]*models.Event),
		reviews:    make(map[string][]models.Review),
		attendees:  make(map[string]map[string]bool),
		likes:      make(map[string]map[string]bool),
		userCities: make(map[string]string),
	}
}

func (f *fakeCatalogStore) CreateEvent(ctx context.Context, event *models.Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeCatalogStore) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return event, nil
}

func (f *fakeCatalogStore) AttendeeCount(ctx context.Context, eventID string) (int, error) {
	return len(f.attendees[eventID]), nil
}

func (f *fakeCatalogStore) IsAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	return f.attendees[eventID][userID], nil
}

func (f *fakeCatalogStore) SearchEvents(ctx context.Context, filter store.EventSearchFilter, offset, limit int) ([]models.Event, int, error) {
	f.lastFilter = filter
	f.lastOffset = offset
	f.lastLimit = limit
	return []models.Event{}, 0, nil
}

func (f *fakeCatalogStore) GetUserCity(ctx context.Context, userID string) (string, error) {
	return f.userCities[userID], nil
}

func (f *fakeCatalogStore) AddReview(ctx context.Context, review *models.Review) error {
	for _, r := range f.reviews[review.EventID] {
		if r.UserID == review.UserID {
			return models.ErrDuplicateReview
		}
	}
	f.reviews[review.EventID] = append(f.reviews[review.EventID], *review)
	f.recomputeRating(review.EventID)
	return nil
}

func (f *fakeCatalogStore) EditReview(ctx context.Context, review *models.Review) error {
	for i, r := range f.reviews[review.EventID] {
		if r.UserID == review.UserID {
			f.reviews[review.EventID][i].Rating = review.Rating
			f.reviews[review.EventID][i].Comment = review.Comment
			f.recomputeRating(review.EventID)
			return nil
		}
	}
	return models.ErrReviewNotFound
}

func (f *fakeCatalogStore) ListReviews(ctx context.Context, eventID string) ([]models.Review, error) {
	return f.reviews[eventID], nil
}

func (f *fakeCatalogStore) ToggleLike(ctx context.Context, eventID, userID string) (bool, error) {
	if f.likes[eventID] == nil {
		f.likes[eventID] = make(map[string]bool)
	}
	if f.likes[eventID][userID] {
		delete(f.likes[eventID], userID)
		return false, nil
	}
	f.likes[eventID][userID] = true
	return true, nil
}

func (f *fakeCatalogStore) recomputeRating(eventID string) {
	event, ok := f.events[eventID]
	if !ok {
		return
	}
	sum := 0
	for _, r := range f.reviews[eventID] {
		sum += r.Rating
	}
	if n := len(f.reviews[eventID]); n > 0 {
		event.Rating = float64(sum) / float64(n)
	} else {
		event.Rating = 0
	}
}

func catalogFixture() (*CatalogService, *fakeCatalogStore) {
	fs := newFakeCatalogStore()
	return NewCatalogService(fs), fs
}

func validCreateEventRequest() *CreateEventRequest {
	return &CreateEventRequest{
		Title:       "Jazz Night",
		Description: "Live jazz downtown",
		Address:     "12 Main St",
		Location:    "Berlin",
		StartDate:   time.Now().Add(48 * time.Hour),
		EndDate:     time.Now().Add(52 * time.Hour),
		EventTime:   "20:00",
		MaxPeople:   50,
		TicketPrice: 500,
		Category:    "music",
	}
}

func TestCreateEvent(t *testing.T) {
	svc, fs := catalogFixture()

	event, err := svc.CreateEvent(context.Background(), "organizer-1", validCreateEventRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "organizer-1", event.OrganizerID)
	assert.Contains(t, fs.events, event.ID)
}

func TestCreateEventRejectsPastSchedule(t *testing.T) {
	svc, _ := catalogFixture()

	req := validCreateEventRequest()
	req.StartDate = time.Now().Add(-24 * time.Hour)

	_, err := svc.CreateEvent(context.Background(), "organizer-1", req)
	assert.ErrorIs(t, err, models.ErrPastSchedule)
}

func TestGetEventDetail(t *testing.T) {
	svc, fs := catalogFixture()
	ctx := context.Background()

	fs.events["event-1"] = &models.Event{ID: "event-1", MaxPeople: 10}
	fs.attendees["event-1"] = map[string]bool{"user-1": true, "user-2": true}
	fs.reviews["event-1"] = []models.Review{{EventID: "event-1", UserID: "user-1", Rating: 4}}

	detail, err := svc.GetEvent(ctx, "event-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 8, detail.AvailableSeats)
	assert.True(t, detail.IsBooked)
	assert.Len(t, detail.Reviews, 1)

	anon, err := svc.GetEvent(ctx, "event-1", "")
	require.NoError(t, err)
	assert.False(t, anon.IsBooked)
}

func TestSearchEventsDefaultsLocationToUserCity(t *testing.T) {
	svc, fs := catalogFixture()
	fs.userCities["user-1"] = "Hamburg"

	_, _, err := svc.SearchEvents(context.Background(), store.EventSearchFilter{}, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Hamburg", fs.lastFilter.Location)

	_, _, err = svc.SearchEvents(context.Background(), store.EventSearchFilter{Location: "Berlin"}, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", fs.lastFilter.Location)
}

func TestSearchEventsPaging(t *testing.T) {
	svc, fs := catalogFixture()

	_, _, err := svc.SearchEvents(context.Background(), store.EventSearchFilter{}, "", 3)
	require.NoError(t, err)
	assert.Equal(t, 10, fs.lastOffset)
	assert.Equal(t, 5, fs.lastLimit)

	_, _, err = svc.SearchEvents(context.Background(), store.EventSearchFilter{}, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, fs.lastOffset)
}

func TestAddReviewRecomputesRating(t *testing.T) {
	svc, fs := catalogFixture()
	ctx := context.Background()

	fs.events["event-1"] = &models.Event{ID: "event-1"}

	require.NoError(t, svc.AddReview(ctx, "event-1", "user-1", 5, "great"))
	require.NoError(t, svc.AddReview(ctx, "event-1", "user-2", 2, "meh"))
	assert.InDelta(t, 3.5, fs.events["event-1"].Rating, 0.0001)

	require.NoError(t, svc.EditReview(ctx, "event-1", "user-2", 4, "better than I thought"))
	assert.InDelta(t, 4.5, fs.events["event-1"].Rating, 0.0001)
}

func TestAddReviewValidatesRating(t *testing.T) {
	svc, _ := catalogFixture()
	ctx := context.Background()

	assert.ErrorIs(t, svc.AddReview(ctx, "event-1", "user-1", 0, ""), models.ErrInvalidRating)
	assert.ErrorIs(t, svc.AddReview(ctx, "event-1", "user-1", 6, ""), models.ErrInvalidRating)
	assert.ErrorIs(t, svc.EditReview(ctx, "event-1", "user-1", -1, ""), models.ErrInvalidRating)
}

func TestAddReviewOncePerUser(t *testing.T) {
	svc, fs := catalogFixture()
	ctx := context.Background()

	fs.events["event-1"] = &models.Event{ID: "event-1"}

	require.NoError(t, svc.AddReview(ctx, "event-1", "user-1", 5, "great"))
	assert.ErrorIs(t, svc.AddReview(ctx, "event-1", "user-1", 3, "again"), models.ErrDuplicateReview)
}

func TestToggleLike(t *testing.T) {
	svc, fs := catalogFixture()
	ctx := context.Background()

	fs.events["event-1"] = &models.Event{ID: "event-1"}

	liked, err := svc.ToggleLike(ctx, "event-1", "user-1")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(ctx, "event-1", "user-1")
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = svc.ToggleLike(ctx, "missing", "user-1")
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}
