package idola

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func startedClient(t *testing.T, f *fakeUpstream, sink ProfileSink) *Client {
	client := newTestClient(t, f, sink)
	err := client.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestLatestEvent(t *testing.T) {
	f := newFakeUpstream(t)
	client := startedClient(t, f, nil)

	arena, err := client.LatestEvent(context.Background(), KindArena)
	require.Nil(t, err)
	require.Equal(t, int64(11), arena.EventID)
	require.True(t, arena.EndDate.Equal(time.Unix(1600000000, 0)))

	creation, err := client.LatestEvent(context.Background(), KindRaidCreation)
	require.Nil(t, err)
	require.Equal(t, int64(22), creation.EventID)
	require.True(t, creation.EndDate.Equal(time.Unix(1600003600, 0)))
}

func TestTopN(t *testing.T) {
	f := newFakeUpstream(t)
	for offset := 0; offset < 100; offset += RankingPageSize {
		f.pages[KindRaidSuppression][offset] = rows(offset+1, offset+RankingPageSize)
	}
	sink := &mapSink{}
	client := startedClient(t, f, sink)

	entries, err := client.TopN(context.Background(), KindRaidSuppression, 22, 45)
	require.Nil(t, err)
	require.Len(t, entries, 45)
	require.Equal(t, 3, f.callCount("/raid/offsetranking"))

	seen := map[int64]bool{}
	for i, entry := range entries {
		require.Equal(t, i+1, entry.Rank)
		require.False(t, seen[entry.ProfileID])
		seen[entry.ProfileID] = true
	}

	id, ok := sink.get("player57")
	require.True(t, ok)
	require.Equal(t, int64(1057), id)
}

func TestTopNOverlappingPages(t *testing.T) {
	f := newFakeUpstream(t)
	first := rows(41, 60)
	second := rows(58, 77)
	// profile 42 moved between the two requests
	first[16] = rankingRow{ScoreRank: 57, ScorePoint: 5000, FriendProfile: friendProfile{ProfileID: 42, Name: "mover"}}
	second[0] = rankingRow{ScoreRank: 58, ScorePoint: 4990, FriendProfile: friendProfile{ProfileID: 42, Name: "mover"}}
	f.pages[KindArena][0] = rows(1, 20)
	f.pages[KindArena][20] = rows(21, 40)
	f.pages[KindArena][40] = first
	f.pages[KindArena][60] = second
	f.pages[KindArena][80] = rows(78, 97)

	client := startedClient(t, f, nil)
	entries, err := client.TopN(context.Background(), KindArena, 11, 100)
	require.Nil(t, err)

	count := 0
	for i, entry := range entries {
		if i > 0 {
			require.LessOrEqual(t, entries[i-1].Rank, entry.Rank)
		}
		if entry.ProfileID == 42 {
			count++
			require.Equal(t, 57, entry.Rank)
		}
		require.LessOrEqual(t, entry.Rank, 100)
	}
	require.Equal(t, 1, count)
}

func TestDedupeRanking(t *testing.T) {
	observed := []RankingEntry{
		{ProfileID: 3, Rank: 3, Score: 70},
		{ProfileID: 1, Rank: 1, Score: 90},
		{ProfileID: 2, Rank: 2, Score: 80},
		{ProfileID: 2, Rank: 3, Score: 79},
		{ProfileID: 4, Rank: 4, Score: 60},
		{ProfileID: 5, Rank: 6, Score: 50},
	}
	expect := []RankingEntry{
		{ProfileID: 1, Rank: 1, Score: 90},
		{ProfileID: 2, Rank: 2, Score: 80},
		{ProfileID: 3, Rank: 3, Score: 70},
		{ProfileID: 4, Rank: 4, Score: 60},
	}
	diff := cmp.Diff(expect, DedupeRanking(observed, 5))
	require.Empty(t, diff)

	require.Len(t, DedupeRanking(observed, 0), 5)
	require.Empty(t, DedupeRanking(nil, 10))
}

func TestFindBorder(t *testing.T) {
	window := rows(81, 100)
	result := FindBorder(toEntries(window), 100)
	require.True(t, result.Known)
	require.Equal(t, int64(100000-100*10), result.Score)

	short := rows(81, 95)
	result = FindBorder(toEntries(short), 100)
	require.False(t, result.Known)
	require.Equal(t, 100, result.Tier)

	result = FindBorder(nil, 1)
	require.False(t, result.Known)
}

func toEntries(rows []rankingRow) []RankingEntry {
	out := make([]RankingEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry()
	}
	return out
}

func TestBorder(t *testing.T) {
	f := newFakeUpstream(t)
	f.pages[KindRaidCreation][99] = rows(100, 119)
	f.pages[KindRaidCreation][999] = rows(990, 999)
	client := startedClient(t, f, nil)

	ctx := context.Background()
	result, err := client.Border(ctx, KindRaidCreation, 22, 100)
	require.Nil(t, err)
	require.True(t, result.Known)
	require.Equal(t, int64(100000-100*10), result.Score)

	result, err = client.Border(ctx, KindRaidCreation, 22, 1000)
	require.Nil(t, err)
	require.False(t, result.Known)

	result, err = client.Border(ctx, KindRaidSuppression, 22, 5000)
	require.Nil(t, err)
	require.False(t, result.Known)

	_, err = client.Border(ctx, KindArena, 11, 0)
	require.NotNil(t, err)
}
