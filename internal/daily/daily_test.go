package daily_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infosphere/wordgame/assets"
	"github.com/infosphere/wordgame/internal/daily"
	"github.com/infosphere/wordgame/internal/store"
)

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]daily.Period{
		"":        daily.Day,
		"daily":   daily.Day,
		"WEEK":    daily.Week,
		"weekly":  daily.Week,
		"monthly": daily.Month,
	} {
		got, err := daily.ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := daily.ParsePeriod("yearly")
	assert.ErrorIs(t, err, daily.ErrUnknownPeriod)
}

func TestPeriodKey(t *testing.T) {
	ts := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-18", daily.PeriodKey(daily.Day, ts))
	assert.Equal(t, "2026-W42", daily.PeriodKey(daily.Week, ts))
	assert.Equal(t, "2026-10", daily.PeriodKey(daily.Month, ts))

	// Keys are computed in UTC.
	paris := time.FixedZone("CEST", 2*3600)
	assert.Equal(t, "2026-10-18", daily.PeriodKey(daily.Day, time.Date(2026, 10, 19, 1, 0, 0, 0, paris)))

	// ISO week years differ from calendar years around New Year.
	assert.Equal(t, "2026-W53", daily.PeriodKey(daily.Week, time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestWordIndex(t *testing.T) {
	a := daily.WordIndex("2026-10-18", "salt", 100)
	b := daily.WordIndex("2026-10-18", "salt", 100)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 100)

	assert.Equal(t, 0, daily.WordIndex("2026-10-18", "salt", 0))

	// Different salts or keys spread over the list.
	seen := map[int]bool{}
	for d := 1; d <= 28; d++ {
		key := daily.PeriodKey(daily.Day, time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC))
		seen[daily.WordIndex(key, "salt", 1000)] = true
	}
	assert.Greater(t, len(seen), 20)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, store.Migrate(db, assets.Migrations()))

	s := daily.NewStore(db)

	played, err := s.AlreadyPlayed(ctx, "p1", daily.Day, "2026-10-18")
	require.NoError(t, err)
	assert.False(t, played)

	rows := []daily.Result{
		{PlayerID: "p1", Period: daily.Day, Key: "2026-10-18", Guesses: 4, Won: true, ElapsedMs: 9000},
		{PlayerID: "p2", Period: daily.Day, Key: "2026-10-18", Guesses: 3, Won: true, ElapsedMs: 20000},
		{PlayerID: "p3", Period: daily.Day, Key: "2026-10-18", Guesses: 3, Won: true, ElapsedMs: 15000},
		{PlayerID: "p4", Period: daily.Day, Key: "2026-10-18", Guesses: 5, Won: false, ElapsedMs: 1000},
		{PlayerID: "p1", Period: daily.Week, Key: "2026-W42", Guesses: 1, Won: true, ElapsedMs: 100},
	}
	for _, r := range rows {
		require.NoError(t, s.InsertResult(ctx, r))
	}
	// Second attempt for the same period is ignored.
	require.NoError(t, s.InsertResult(ctx, daily.Result{PlayerID: "p1", Period: daily.Day, Key: "2026-10-18", Guesses: 1, Won: true}))

	played, err = s.AlreadyPlayed(ctx, "p1", daily.Day, "2026-10-18")
	require.NoError(t, err)
	assert.True(t, played)
	played, err = s.AlreadyPlayed(ctx, "p1", daily.Month, "2026-10")
	require.NoError(t, err)
	assert.False(t, played)

	lb, err := s.Leaderboard(ctx, daily.Day, "2026-10-18", 0)
	require.NoError(t, err)
	assert.Equal(t, []daily.LBRow{
		{PlayerID: "p3", Guesses: 3, ElapsedMs: 15000},
		{PlayerID: "p2", Guesses: 3, ElapsedMs: 20000},
		{PlayerID: "p1", Guesses: 4, ElapsedMs: 9000},
	}, lb)

	lb, err = s.Leaderboard(ctx, daily.Month, "2026-10", 5)
	require.NoError(t, err)
	assert.Empty(t, lb)
}
