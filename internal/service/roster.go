package service

import (
	"context"

	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/Its-Samir/booking-api/internal/redisclient"
	"github.com/Its-Samir/booking-api/internal/store"
	"github.com/Its-Samir/booking-api/internal/util"

	"go.uber.org/zap"
)

// RosterClient manages event roster membership. Redis holds per-event seat
// counters as a fast-path gate; the database transaction remains the
// authoritative capacity check, and a claimed counter is released when the
// database rejects the add.
type RosterClient struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewRosterClient creates a new roster client
func NewRosterClient(store *store.Store, redis *redisclient.Client) *RosterClient {
	return &RosterClient{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// AddAttendee claims a seat for the user in the event's roster. Returns
// added=false when the user already held a seat; the Redis claim taken for
// such a no-op add is released again so the counter stays aligned with the
// roster table.
func (rc *RosterClient) AddAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, span := util.StartSpan(ctx, "RosterClient.AddAttendee")
	defer span.End()

	claimed, err := rc.redis.ClaimSeat(ctx, eventID)
	if err != nil {
		rc.logger.Warn("Redis seat claim unavailable, falling back to DB",
			zap.String("event_id", eventID),
			zap.Error(err))
		return rc.store.AddAttendee(ctx, eventID, userID)
	}

	if !claimed {
		util.SeatClaimsFailed.WithLabelValues("event_full").Inc()
		return false, models.ErrEventFull
	}

	added, err := rc.store.AddAttendee(ctx, eventID, userID)
	if err != nil || !added {
		if releaseErr := rc.redis.ReleaseSeat(ctx, eventID); releaseErr != nil {
			rc.logger.Error("Failed to release seat counter after no-op add",
				zap.String("event_id", eventID),
				zap.Error(releaseErr))
		}
		return false, err
	}

	return true, nil
}

// RemoveAttendee removes the user from the roster and frees the seat counter
func (rc *RosterClient) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	ctx, span := util.StartSpan(ctx, "RosterClient.RemoveAttendee")
	defer span.End()

	if err := rc.store.RemoveAttendee(ctx, eventID, userID); err != nil {
		return err
	}

	if err := rc.redis.ReleaseSeat(ctx, eventID); err != nil {
		rc.logger.Error("Failed to release seat counter",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
	return nil
}

// SyncRostersToRedis seeds the seat counters for all upcoming events
func (rc *RosterClient) SyncRostersToRedis(ctx context.Context) error {
	rc.logger.Info("Starting roster sync to Redis")

	rosters, err := rc.store.ListEventRosters(ctx)
	if err != nil {
		return err
	}

	for _, r := range rosters {
		if err := rc.redis.InitRoster(ctx, r.EventID, r.MaxPeople, r.Taken); err != nil {
			rc.logger.Error("Failed to init roster counters",
				zap.String("event_id", r.EventID),
				zap.Error(err))
		}
	}

	rc.logger.Info("Roster sync completed", zap.Int("count", len(rosters)))
	return nil
}
