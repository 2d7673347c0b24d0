package idola

import (
	"context"
	"sort"
)

const (
	report_client_guild_info    = "client.guild-info"
	report_client_guild_members = "client.guild-members"
	report_client_guild_search  = "client.guild-search"
	report_client_guild_ranking = "client.guild-ranking"
)

// GuildPageSize is how many entries one guild ranking call returns.
const GuildPageSize = 10

func (c *Client) GuildInfo(ctx context.Context, guildId int64) (Guild, error) {
	res, err := call[guildInfoReplace](
		ctx, c, report_client_guild_info, pathGuildInfo,
		&guildInfoRequest{GuildID: guildId},
	)
	if err != nil {
		return Guild{}, err
	}
	return res.GuildData.guild(), nil
}

func (c *Client) GuildMembers(ctx context.Context, guildId int64) ([]GuildMember, error) {
	res, err := call[guildMemberListReplace](
		ctx, c, report_client_guild_members, pathGuildMemberList,
		&guildMemberListRequest{GuildID: guildId, PageNumber: 0, IsAll: true},
	)
	if err != nil {
		return nil, err
	}

	members := make([]GuildMember, len(res.GuildMemberList))
	for i, row := range res.GuildMemberList {
		members[i] = GuildMember{
			ProfileID: row.FriendProfile.ProfileID,
			Name:      row.FriendProfile.Name,
			Role:      row.Role,
		}
		c.observeProfile(row.FriendProfile.Name, row.FriendProfile.ProfileID)
	}
	return members, nil
}

// SearchGuildByDisplayID looks a guild up by the id shown in game.
func (c *Client) SearchGuildByDisplayID(ctx context.Context, displayId string) ([]Guild, error) {
	return c.searchGuild(ctx, &guildSearchRequest{DisplayID: displayId})
}

func (c *Client) SearchGuildByName(ctx context.Context, name string) ([]Guild, error) {
	return c.searchGuild(ctx, &guildSearchRequest{GuildName: name})
}

func (c *Client) searchGuild(ctx context.Context, req *guildSearchRequest) ([]Guild, error) {
	res, err := call[guildSearchReplace](ctx, c, report_client_guild_search, pathGuildSearch, req)
	if err != nil {
		return nil, err
	}
	guilds := make([]Guild, len(res.GuildSearchResult))
	for i, row := range res.GuildSearchResult {
		guilds[i] = row.guild()
	}
	return guilds, nil
}

func (c *Client) FetchGuildRankingPage(ctx context.Context, offset int) ([]GuildRankingEntry, error) {
	res, err := call[guildRankingReplace](
		ctx, c, report_client_guild_ranking, pathGuildRanking,
		&guildRankingRequest{RankingOffset: offset},
	)
	if err != nil {
		return nil, err
	}
	entries := make([]GuildRankingEntry, len(res.RankingList))
	for i, row := range res.RankingList {
		entries[i] = GuildRankingEntry{
			GuildID: row.GuildID,
			Name:    row.GuildName,
			Rank:    row.Rank,
			Point:   row.Point,
		}
	}
	return entries, nil
}

// GuildRange returns the guilds ranked within [start, end] ascending by rank,
// one entry per guild id.
func (c *Client) GuildRange(ctx context.Context, start, end int) ([]GuildRankingEntry, error) {
	if start < 1 {
		start = 1
	}
	if end < start {
		return nil, nil
	}

	var observed []GuildRankingEntry
	for offset := start - 1; offset < end; offset += GuildPageSize {
		page, err := c.FetchGuildRankingPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		observed = append(observed, page...)
	}

	sort.SliceStable(observed, func(i, j int) bool {
		return observed[i].Rank < observed[j].Rank
	})
	seen := make(map[int64]struct{}, len(observed))
	out := make([]GuildRankingEntry, 0, len(observed))
	for _, entry := range observed {
		if entry.Rank < start || entry.Rank > end {
			continue
		}
		if _, dup := seen[entry.GuildID]; dup {
			continue
		}
		seen[entry.GuildID] = struct{}{}
		out = append(out, entry)
	}
	return out, nil
}
