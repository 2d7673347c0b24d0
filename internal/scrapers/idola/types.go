package idola

// Kind selects one of the competitive leaderboards.
type Kind int

const (
	KindArena Kind = iota
	KindRaidSuppression
	KindRaidCreation
)

func (k Kind) String() string {
	switch k {
	case KindArena:
		return "arena"
	case KindRaidSuppression:
		return "raid_suppression"
	case KindRaidCreation:
		return "raid_creation"
	}
	return "unknown"
}

// ParseKind accepts the names produced by Kind.String plus the short
// aliases used by chat commands.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "arena":
		return KindArena, true
	case "raid_suppression", "suppression":
		return KindRaidSuppression, true
	case "raid_creation", "creation":
		return KindRaidCreation, true
	}
	return 0, false
}

// RankingEntry is a single leaderboard row.
type RankingEntry struct {
	ProfileID   int64
	DisplayName string
	Rank        int
	Score       int64
}

// BorderResult is the score at an exact rank, Known is false when the
// leaderboard has no entry at that rank.
type BorderResult struct {
	Tier  int
	Known bool
	Score int64
}

type GuildRankingEntry struct {
	GuildID int64
	Name    string
	Rank    int
	Point   int64
}

type Guild struct {
	GuildID     int64
	DisplayID   string
	Name        string
	MemberCount int
	Comment     string
}

type GuildMember struct {
	ProfileID int64
	Name      string
	Role      int
}

// ---- wire shapes ----

type authFields struct {
	AppVer     string `json:"app_ver"`
	ResVer     string `json:"res_ver"`
	AuthKey    string `json:"auth_key"`
	RetransKey string `json:"retrans_key"`
}

func (a *authFields) setAuth(v authFields) {
	*a = v
}

// authBody is implemented by every request struct that embeds authFields.
type authBody interface {
	setAuth(v authFields)
}

// envelopeKeys is decoded before the replace payload so a malformed
// payload still hands over the next retrans key.
type envelopeKeys struct {
	RetransKey string `json:"retrans_key"`
	ResVersion string `json:"res_version"`
}

type envelope[T any] struct {
	RetransKey string `json:"retrans_key"`
	ResVersion string `json:"res_version"`
	Replace    T      `json:"replace"`
}

type appInitRequest struct {
	AppVer     string  `json:"app_ver"`
	RetransKey *string `json:"retrans_key"`
	UUID       string  `json:"uuid"`
}

type preLoginRequest struct {
	AppVer     string `json:"app_ver"`
	ResVer     string `json:"res_ver"`
	RetransKey string `json:"retrans_key"`
	UUID       string `json:"uuid"`
}

type preLoginReplace struct {
	SessionKey string `json:"session_key"`
}

type loginRequest struct {
	authFields
	DeviceID        string `json:"device_id"`
	DeviceToken     string `json:"device_token"`
	LanguageCode    string `json:"language_code"`
	BattleType      int    `json:"battle_type"`
	BattleID        int    `json:"battle_id"`
	IsTutorial      bool   `json:"is_tutorial"`
	Region          string `json:"region"`
	LocalTime       int    `json:"localtime"`
	DeviceName      string `json:"device_name"`
	OperatingSystem string `json:"operating_system"`
	IInfo           int    `json:"i_info"`
}

type homeNoticeRequest struct {
	authFields
	IsTutorial               string `json:"is_tutorial"`
	ReadCharacterPromotionID []int  `json:"readed_character_promotion_id_list"`
}

type eventNotice struct {
	EventID int64 `json:"event_id"`
	EndDate int64 `json:"end_date"`
}

type homeNoticeReplace struct {
	Ant  eventNotice `json:"ant"`
	Raid eventNotice `json:"raid"`
}

type friendProfile struct {
	ProfileID int64  `json:"profile_id"`
	Name      string `json:"name"`
}

type rankingRow struct {
	ScoreRank     int           `json:"score_rank"`
	ScorePoint    int64         `json:"score_point"`
	FriendProfile friendProfile `json:"friend_profile"`
}

func (r rankingRow) entry() RankingEntry {
	return RankingEntry{
		ProfileID:   r.FriendProfile.ProfileID,
		DisplayName: r.FriendProfile.Name,
		Rank:        r.ScoreRank,
		Score:       r.ScorePoint,
	}
}

type arenaRankingRequest struct {
	authFields
	EventID       int64 `json:"event_id"`
	RankingOffset int   `json:"ranking_offset"`
}

type arenaRankingReplace struct {
	RankingList []rankingRow `json:"ranking_list"`
}

const (
	raidRankingTypeCreation    = 1
	raidRankingTypeSuppression = 2
)

type raidRankingRequest struct {
	authFields
	IdolaEventID  int64 `json:"idola_event_id"`
	RankingOffset int   `json:"ranking_offset"`
	RankingType   int   `json:"ranking_type"`
}

type raidRankingReplace struct {
	SuppressionRanking []rankingRow `json:"suppression_ranking"`
	CreatorRanking     []rankingRow `json:"creator_ranking"`
}

type partyDetailsRequest struct {
	authFields
	ProfileID int64 `json:"profile_id"`
}

type partyDetailsReplace struct {
	PartyInfo partyInfoRow `json:"party_info"`
}

type guildInfoRequest struct {
	authFields
	GuildID int64 `json:"guild_id"`
}

type guildRow struct {
	GuildID     int64  `json:"guild_id"`
	DisplayID   string `json:"display_id"`
	GuildName   string `json:"guild_name"`
	MemberCount int    `json:"member_count"`
	Comment     string `json:"comment"`
}

func (g guildRow) guild() Guild {
	return Guild{
		GuildID:     g.GuildID,
		DisplayID:   g.DisplayID,
		Name:        g.GuildName,
		MemberCount: g.MemberCount,
		Comment:     g.Comment,
	}
}

type guildInfoReplace struct {
	GuildData guildRow `json:"guild_data"`
}

type guildMemberListRequest struct {
	authFields
	GuildID    int64 `json:"guild_id"`
	PageNumber int   `json:"page_number"`
	IsAll      bool  `json:"is_all"`
}

type guildMemberRow struct {
	Role          int           `json:"role"`
	FriendProfile friendProfile `json:"friend_profile"`
}

type guildMemberListReplace struct {
	GuildMemberList []guildMemberRow `json:"guild_member_list"`
}

type guildSearchRequest struct {
	authFields
	ActiveHoursType int    `json:"active_hours_type"`
	PlayStyleType   int    `json:"play_style_type"`
	EventType       int    `json:"event_type"`
	GuildName       string `json:"guild_name"`
	DisplayID       string `json:"display_id"`
	AutoAccept      int    `json:"auto_accept"`
}

type guildSearchReplace struct {
	GuildSearchResult []guildRow `json:"guild_search_result"`
}

type guildRankingRequest struct {
	authFields
	RankingOffset int `json:"ranking_offset"`
}

type guildRankingRow struct {
	GuildID   int64  `json:"guild_id"`
	GuildName string `json:"guild_name"`
	Rank      int    `json:"rank"`
	Point     int64  `json:"point"`
}

type guildRankingReplace struct {
	RankingList []guildRankingRow `json:"ranking_list"`
}
