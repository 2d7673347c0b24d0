package idola

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	report_client_home_notice        = "client.home-notice"
	report_client_fetch_ranking_page = "client.fetch-ranking-page"
)

// RankingPageSize is how many entries one offset ranking call returns.
const RankingPageSize = 20

type EventNotice struct {
	EventID int64
	EndDate time.Time
}

func (c *Client) homeNotice(ctx context.Context) (homeNoticeReplace, error) {
	return call[homeNoticeReplace](
		ctx, c, report_client_home_notice, pathHomeNotice,
		&homeNoticeRequest{IsTutorial: "false"},
	)
}

// LatestEvent returns the current event of the given kind, both raid
// leaderboards share the raid event.
func (c *Client) LatestEvent(ctx context.Context, kind Kind) (EventNotice, error) {
	notice, err := c.homeNotice(ctx)
	if err != nil {
		return EventNotice{}, err
	}
	event := notice.Raid
	if kind == KindArena {
		event = notice.Ant
	}
	return EventNotice{
		EventID: event.EventID,
		EndDate: time.Unix(event.EndDate, 0).UTC(),
	}, nil
}

func (c *Client) LatestEventID(ctx context.Context, kind Kind) (int64, error) {
	event, err := c.LatestEvent(ctx, kind)
	if err != nil {
		return 0, err
	}
	return event.EventID, nil
}

// FetchRankingPage returns up to RankingPageSize entries starting at offset,
// in the order the upstream sent them.
func (c *Client) FetchRankingPage(ctx context.Context, kind Kind, eventId int64, offset int) ([]RankingEntry, error) {
	var rows []rankingRow

	switch kind {
	case KindArena:
		res, err := call[arenaRankingReplace](
			ctx, c, report_client_fetch_ranking_page, pathArenaRanking,
			&arenaRankingRequest{EventID: eventId, RankingOffset: offset},
		)
		if err != nil {
			return nil, err
		}
		rows = res.RankingList
	case KindRaidSuppression, KindRaidCreation:
		rankingType := raidRankingTypeSuppression
		if kind == KindRaidCreation {
			rankingType = raidRankingTypeCreation
		}
		res, err := call[raidRankingReplace](
			ctx, c, report_client_fetch_ranking_page, pathRaidRanking,
			&raidRankingRequest{IdolaEventID: eventId, RankingOffset: offset, RankingType: rankingType},
		)
		if err != nil {
			return nil, err
		}
		rows = res.SuppressionRanking
		if kind == KindRaidCreation {
			rows = res.CreatorRanking
		}
	default:
		return nil, fmt.Errorf("unknown ranking kind %d", kind)
	}

	entries := make([]RankingEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.entry()
		c.observeProfile(row.FriendProfile.Name, row.FriendProfile.ProfileID)
	}
	return entries, nil
}

// TopN fetches ceil(n/20) pages and returns at most n entries ascending by
// rank with unique profile ids.
func (c *Client) TopN(ctx context.Context, kind Kind, eventId int64, n int) ([]RankingEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	var observed []RankingEntry
	for offset := 0; offset < n; offset += RankingPageSize {
		page, err := c.FetchRankingPage(ctx, kind, eventId, offset)
		if err != nil {
			return nil, err
		}
		observed = append(observed, page...)
	}
	return DedupeRanking(observed, n), nil
}

// DedupeRanking keeps one entry per profile: the lowest rank, and among equal
// ranks the one observed first. Entries ranked above limit are dropped,
// limit <= 0 keeps everything.
func DedupeRanking(observed []RankingEntry, limit int) []RankingEntry {
	sorted := make([]RankingEntry, len(observed))
	copy(sorted, observed)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank < sorted[j].Rank
	})

	seen := make(map[int64]struct{}, len(sorted))
	out := make([]RankingEntry, 0, len(sorted))
	for _, entry := range sorted {
		if limit > 0 && entry.Rank > limit {
			break
		}
		if _, dup := seen[entry.ProfileID]; dup {
			continue
		}
		seen[entry.ProfileID] = struct{}{}
		out = append(out, entry)
	}
	return out
}

// Border fetches the single page starting at tier-1 and returns the score of
// the entry ranked exactly tier.
func (c *Client) Border(ctx context.Context, kind Kind, eventId int64, tier int) (BorderResult, error) {
	if tier < 1 {
		return BorderResult{}, fmt.Errorf("border tier must be positive, got %d", tier)
	}
	page, err := c.FetchRankingPage(ctx, kind, eventId, tier-1)
	if err != nil {
		return BorderResult{}, err
	}
	return FindBorder(page, tier), nil
}

// FindBorder picks the entry whose rank equals tier out of a ranking window.
func FindBorder(window []RankingEntry, tier int) BorderResult {
	for _, entry := range window {
		if entry.Rank == tier {
			return BorderResult{Tier: tier, Known: true, Score: entry.Score}
		}
	}
	return BorderResult{Tier: tier}
}
