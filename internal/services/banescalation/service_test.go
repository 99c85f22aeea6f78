package banescalation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	"github.com/hungwahenry/cheevo-sub000/internal/services/modconfig"
)

type memoryBanStore struct {
	history      []model.UserBanHistory
	historyTimes []time.Time
	bans         []model.UserBan
	insertBanErr error
}

func (s *memoryBanStore) CountHistorySince(_ context.Context, userID int64, cutoff time.Time) (int, error) {
	count := 0
	for i, entry := range s.history {
		if entry.UserID == userID && !s.historyTimes[i].Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (s *memoryBanStore) InsertBan(_ context.Context, ban model.UserBan) error {
	if s.insertBanErr != nil {
		return s.insertBanErr
	}
	s.bans = append(s.bans, ban)
	return nil
}

func (s *memoryBanStore) InsertHistory(_ context.Context, entry model.UserBanHistory) error {
	s.history = append(s.history, entry)
	s.historyTimes = append(s.historyTimes, time.Now().UTC())
	return nil
}

func (s *memoryBanStore) addHistoryAt(userID int64, at time.Time) {
	s.history = append(s.history, model.UserBanHistory{UserID: userID})
	s.historyTimes = append(s.historyTimes, at)
}

func defaultTiers() modconfig.TierSettings {
	return modconfig.TierSettings{TierDays: []int{7, 14, 28, 56}, MaxBanDays: 180, ResetWindowDays: 90}
}

func newService(store Store) *Service {
	return NewService(store, nil, defaultTiers(), nil)
}

func TestFirstViolationGetsTierOneShadowBan(t *testing.T) {
	store := &memoryBanStore{}
	svc := newService(store)

	esc, err := svc.RecordViolation(context.Background(), 1, []string{"hate"}, []byte(`{}`))
	if err != nil {
		t.Fatalf("record violation: %v", err)
	}

	if esc.BanType != enums.BanTypeShadow {
		t.Fatalf("unexpected ban type: %s", esc.BanType)
	}
	if esc.DurationDays != 7 || esc.ViolationCount != 1 {
		t.Fatalf("unexpected escalation: %+v", esc)
	}
	if esc.ExpiresAt == nil {
		t.Fatalf("shadow ban must have expiry")
	}
	if len(store.bans) != 1 || len(store.history) != 1 {
		t.Fatalf("expected one ban and one history row, got %d/%d", len(store.bans), len(store.history))
	}
	if store.bans[0].Reason != "hate" {
		t.Fatalf("unexpected reason: %q", store.bans[0].Reason)
	}
	if store.bans[0].BanDurationDays == nil || *store.bans[0].BanDurationDays != 7 {
		t.Fatalf("unexpected ban duration: %v", store.bans[0].BanDurationDays)
	}
	if store.bans[0].CreatedBy != nil {
		t.Fatalf("system bans must have nil created_by")
	}
}

func TestLadderEscalatesThroughTiers(t *testing.T) {
	store := &memoryBanStore{}
	svc := newService(store)
	ctx := context.Background()
	userID := int64(2)

	wantDurations := []int{7, 14, 28, 56}
	for i, want := range wantDurations {
		esc, err := svc.RecordViolation(ctx, userID, []string{"spam"}, nil)
		if err != nil {
			t.Fatalf("violation #%d: %v", i+1, err)
		}
		if esc.DurationDays != want {
			t.Fatalf("violation #%d: got %d days want %d", i+1, esc.DurationDays, want)
		}
		if esc.ViolationCount != i+1 {
			t.Fatalf("violation #%d: unexpected ordinal %d", i+1, esc.ViolationCount)
		}
		if esc.BanType != enums.BanTypeShadow {
			t.Fatalf("violation #%d: unexpected ban type %s", i+1, esc.BanType)
		}
	}
}

func TestFifthViolationIsPermanent(t *testing.T) {
	store := &memoryBanStore{}
	svc := newService(store)
	ctx := context.Background()
	userID := int64(3)

	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		store.addHistoryAt(userID, now.Add(-time.Duration(i+1)*24*time.Hour))
	}

	esc, err := svc.RecordViolation(ctx, userID, []string{"hate/threatening"}, nil)
	if err != nil {
		t.Fatalf("record violation: %v", err)
	}

	if esc.BanType != enums.BanTypePermanent {
		t.Fatalf("fifth violation must be permanent, got %s", esc.BanType)
	}
	if esc.DurationDays != 180 || esc.ViolationCount != 5 {
		t.Fatalf("unexpected escalation: %+v", esc)
	}
	if esc.ExpiresAt != nil {
		t.Fatalf("permanent ban must have nil expiry")
	}
	ban := store.bans[len(store.bans)-1]
	if ban.ExpiresAt != nil || ban.BanDurationDays != nil {
		t.Fatalf("permanent ban row must have nil expiry and duration: %+v", ban)
	}
}

func TestViolationsOutsideResetWindowDoNotCount(t *testing.T) {
	store := &memoryBanStore{}
	svc := newService(store)
	ctx := context.Background()
	userID := int64(4)

	// one violation 91 days ago, outside the 90-day window
	store.addHistoryAt(userID, time.Now().UTC().Add(-91*24*time.Hour))

	esc, err := svc.RecordViolation(ctx, userID, []string{"harassment"}, nil)
	if err != nil {
		t.Fatalf("record violation: %v", err)
	}

	if esc.ViolationCount != 1 || esc.DurationDays != 7 {
		t.Fatalf("stale history must not escalate: %+v", esc)
	}
}

func TestMultipleCategoriesJoinIntoReason(t *testing.T) {
	store := &memoryBanStore{}
	svc := newService(store)

	if _, err := svc.RecordViolation(context.Background(), 5, []string{"hate", "violence/graphic"}, nil); err != nil {
		t.Fatalf("record violation: %v", err)
	}

	if store.bans[0].Reason != "hate, violence/graphic" {
		t.Fatalf("unexpected reason: %q", store.bans[0].Reason)
	}
	if store.history[0].ViolationType != "hate,violence/graphic" {
		t.Fatalf("unexpected violation type: %q", store.history[0].ViolationType)
	}
}

func TestRecordViolationValidation(t *testing.T) {
	svc := newService(&memoryBanStore{})

	if _, err := svc.RecordViolation(context.Background(), 0, []string{"hate"}, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad user id, got %v", err)
	}
	if _, err := svc.RecordViolation(context.Background(), 1, nil, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty violations, got %v", err)
	}
}

func TestInsertBanFailureSurfacesError(t *testing.T) {
	store := &memoryBanStore{insertBanErr: errors.New("pg down")}
	svc := newService(store)

	if _, err := svc.RecordViolation(context.Background(), 6, []string{"spam"}, nil); err == nil {
		t.Fatalf("expected error when ban insert fails")
	}
	if len(store.history) != 0 {
		t.Fatalf("history must not be written when the ban insert fails")
	}
}

type invalidateRecorder struct {
	userIDs []int64
}

func (r *invalidateRecorder) Invalidate(_ context.Context, userID int64) error {
	r.userIDs = append(r.userIDs, userID)
	return nil
}

func TestRecordViolationInvalidatesBanCache(t *testing.T) {
	store := &memoryBanStore{}
	svc := newService(store)
	cache := &invalidateRecorder{}
	svc.AttachBanCache(cache)

	if _, err := svc.RecordViolation(context.Background(), 7, []string{"hate"}, nil); err != nil {
		t.Fatalf("record violation: %v", err)
	}
	if len(cache.userIDs) != 1 || cache.userIDs[0] != 7 {
		t.Fatalf("expected cache invalidation for user 7, got %v", cache.userIDs)
	}
}
