package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestBoardNeedsRefresh(t *testing.T) {
	utc := time.UTC

	cases := []struct {
		name          string
		lastRefreshed time.Time
		localNow      time.Time
		want          bool
	}{
		{
			name:          "never refreshed",
			lastRefreshed: time.Time{},
			localNow:      time.Date(2025, 6, 10, 12, 0, 0, 0, utc),
			want:          true,
		},
		{
			name:          "refreshed after this morning's anchor",
			lastRefreshed: time.Date(2025, 6, 10, 8, 0, 0, 0, utc),
			localNow:      time.Date(2025, 6, 10, 12, 0, 0, 0, utc),
			want:          false,
		},
		{
			name:          "refreshed yesterday",
			lastRefreshed: time.Date(2025, 6, 9, 8, 0, 0, 0, utc),
			localNow:      time.Date(2025, 6, 10, 12, 0, 0, 0, utc),
			want:          true,
		},
		{
			name:          "before 7am anchor is yesterday's",
			lastRefreshed: time.Date(2025, 6, 9, 23, 0, 0, 0, utc),
			localNow:      time.Date(2025, 6, 10, 6, 30, 0, 0, utc),
			want:          false,
		},
		{
			name:          "before 7am but refreshed before yesterday's anchor",
			lastRefreshed: time.Date(2025, 6, 9, 5, 0, 0, 0, utc),
			localNow:      time.Date(2025, 6, 10, 6, 30, 0, 0, utc),
			want:          true,
		},
		{
			name:          "exactly at the anchor does not need refresh",
			lastRefreshed: time.Date(2025, 6, 10, 7, 0, 0, 0, utc),
			localNow:      time.Date(2025, 6, 10, 7, 0, 0, 0, utc),
			want:          false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := boardNeedsRefresh(tc.lastRefreshed, tc.localNow); got != tc.want {
				t.Fatalf("boardNeedsRefresh(%v, %v) = %v, want %v", tc.lastRefreshed, tc.localNow, got, tc.want)
			}
		})
	}
}

func TestBoardNeedsRefreshAcrossTimezones(t *testing.T) {
	la := mustLocation(t, "America/Los_Angeles")

	// refreshed 24h ago in UTC; it is now noon in Los Angeles
	localNow := time.Date(2025, 6, 10, 12, 0, 0, 0, la)
	lastRefreshed := localNow.Add(-24 * time.Hour).UTC()
	if !boardNeedsRefresh(lastRefreshed, localNow) {
		t.Fatal("board refreshed a full day ago must need refresh")
	}

	// refreshed two hours ago, still inside the current LA day
	lastRefreshed = localNow.Add(-2 * time.Hour).UTC()
	if boardNeedsRefresh(lastRefreshed, localNow) {
		t.Fatal("board refreshed within the current local day must not need refresh")
	}
}

func newTestBoardService(t *testing.T, db *gorm.DB, llm OpenAIClient) QuestBoardService {
	t.Helper()
	log := newTestLogger(t)
	generator, profileSvc := newTestGenerator(t, db, llm)
	return NewQuestBoardService(
		db,
		log,
		repos.NewQuestBoardRepo(db, log),
		repos.NewUserQuestRepo(db, log),
		repos.NewQuestTemplateRepo(db, log),
		profileSvc,
		NewQuestLifecycleService(db, log, repos.NewUserQuestRepo(db, log)),
		generator,
	)
}

func TestRefreshPopulatesThreePotentialQuests(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBoardService(t, db, llmAlwaysFailing())
	user := createTestUser(t, db)

	bw, err := svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, bw.Quests, 3)
	for _, quest := range bw.Quests {
		require.Equal(t, types.StatusPotential, quest.Status)
		require.NotNil(t, quest.QuestBoardID)
		require.Equal(t, bw.Board.ID, *quest.QuestBoardID)
		require.NotNil(t, quest.Template)
		require.True(t, quest.Template.FallbackUsed)
	}
	require.False(t, bw.Board.LastRefreshed.IsZero())

	needs, err := svc.NeedsRefresh(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, needs, "fresh board must not need another refresh")
}

func TestRefreshCyclesStaleQuests(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBoardService(t, db, llmAlwaysFailing())
	log := newTestLogger(t)
	lifecycle := NewQuestLifecycleService(db, log, repos.NewUserQuestRepo(db, log))
	user := createTestUser(t, db)

	first, err := svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, first.Quests, 3)

	// accept one quest, leave the others potential
	accepted, err := lifecycle.Transition(context.Background(), nil, first.Quests[0].ID, types.StatusAccepted, nil)
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, second.Quests, 3)

	questRepo := repos.NewUserQuestRepo(db, log)
	for _, old := range first.Quests {
		reloaded, err := questRepo.GetByID(context.Background(), nil, old.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded)
		require.Nil(t, reloaded.QuestBoardID, "stale quest %s must be detached", old.ID)
		if old.ID == accepted.ID {
			require.Equal(t, types.StatusFailed, reloaded.Status)
			require.NotNil(t, reloaded.FailedAt)
		} else {
			require.Equal(t, types.StatusDeclined, reloaded.Status)
			require.NotNil(t, reloaded.DeclinedAt)
		}
	}

	// terminal statuses survive the cycle untouched
	for _, q := range second.Quests {
		require.Equal(t, types.StatusPotential, q.Status)
	}
}

func TestRefreshKeepsCompletedStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBoardService(t, db, llmAlwaysFailing())
	log := newTestLogger(t)
	lifecycle := NewQuestLifecycleService(db, log, repos.NewUserQuestRepo(db, log))
	user := createTestUser(t, db)

	first, err := svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = lifecycle.Transition(context.Background(), nil, first.Quests[0].ID, types.StatusAccepted, nil)
	require.NoError(t, err)
	_, err = lifecycle.Transition(context.Background(), nil, first.Quests[0].ID, types.StatusCompleted, nil)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)

	questRepo := repos.NewUserQuestRepo(db, log)
	reloaded, err := questRepo.GetByID(context.Background(), nil, first.Quests[0].ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, reloaded.Status)
	require.Nil(t, reloaded.QuestBoardID)
}

func TestGetRefreshedOnlyRefreshesWhenStale(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBoardService(t, db, llmAlwaysFailing())
	user := createTestUser(t, db)

	first, err := svc.GetRefreshed(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, first.Quests, 3)

	second, err := svc.GetRefreshed(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, first.Board.ID, second.Board.ID)
	require.Equal(t, first.Board.LastRefreshed.Unix(), second.Board.LastRefreshed.Unix())

	firstIDs := map[string]bool{}
	for _, q := range first.Quests {
		firstIDs[q.ID.String()] = true
	}
	for _, q := range second.Quests {
		require.True(t, firstIDs[q.ID.String()], "same-day board must keep its quests")
	}
}

func TestDayRolloverForcesRefresh(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBoardService(t, db, llmAlwaysFailing())
	log := newTestLogger(t)
	user := createTestUser(t, db)

	profileSvc := NewUserProfileService(db, log, repos.NewUserProfileRepo(db, log))
	tz := "America/Los_Angeles"
	_, err := profileSvc.Update(context.Background(), user.ID, ProfileUpdate{Timezone: &tz})
	require.NoError(t, err)

	first, err := svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)

	// push the board a full day into the past
	boardRepo := repos.NewQuestBoardRepo(db, log)
	first.Board.LastRefreshed = time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, boardRepo.Save(context.Background(), nil, first.Board))

	needs, err := svc.NeedsRefresh(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, needs)

	_, err = svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)

	questRepo := repos.NewUserQuestRepo(db, log)
	reloaded, err := questRepo.GetByID(context.Background(), nil, first.Quests[0].ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusDeclined, reloaded.Status)
	require.Nil(t, reloaded.QuestBoardID)
}

func TestDeactivateBoard(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBoardService(t, db, llmAlwaysFailing())
	user := createTestUser(t, db)

	bw, err := svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, bw.Board.IsActive)

	require.NoError(t, svc.Deactivate(context.Background(), user.ID))

	log := newTestLogger(t)
	boardRepo := repos.NewQuestBoardRepo(db, log)
	active, err := boardRepo.GetActiveByUserID(context.Background(), nil, user.ID)
	require.NoError(t, err)
	require.Nil(t, active)
}

func TestRefreshLogsGenerationAndReleasesPool(t *testing.T) {
	// the test pool has a single connection, so any stray read on the base
	// handle while the refresh transaction is open would deadlock here
	db := newTestDB(t)
	svc := newTestBoardService(t, db, llmAlwaysFailing())
	log := newTestLogger(t)
	user := createTestUser(t, db)

	bw, err := svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, bw.Quests, 3)

	genLogRepo := repos.NewGenerationLogRepo(db, log)
	count, err := genLogRepo.CountByUser(context.Background(), nil, &user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "each refresh records one generation")
}

func TestConcurrentRefreshLoserKeepsWinnersBoard(t *testing.T) {
	db := newTestDB(t)
	svc := newTestBoardService(t, db, llmAlwaysFailing())
	user := createTestUser(t, db)

	winner, err := svc.Refresh(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, winner.Quests, 3)

	// a request that saw the stale board before the winner committed takes
	// the non-forced path and must leave the fresh board alone
	loser, err := svc.(*questBoardService).refresh(context.Background(), user.ID, false)
	require.NoError(t, err)
	require.Equal(t, winner.Board.ID, loser.Board.ID)
	require.Equal(t, winner.Board.LastRefreshed.Unix(), loser.Board.LastRefreshed.Unix())

	winnerIDs := map[string]bool{}
	for _, q := range winner.Quests {
		winnerIDs[q.ID.String()] = true
	}
	require.Len(t, loser.Quests, 3)
	for _, q := range loser.Quests {
		require.True(t, winnerIDs[q.ID.String()], "loser must observe the winner's quests")
		require.Equal(t, types.StatusPotential, q.Status, "winner's quests must not be cycled")
	}
}
