package idola

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"idola-backend/internal/components/telemetry"
)

const (
	testTokenKey   = "token-key"
	testSessionKey = "session-key-1"
	testSecret     = "secret"
)

// fakeUpstream mimics the game API closely enough to exercise the handshake:
// it hands out sequential retrans keys and rejects anything stale.
type fakeUpstream struct {
	t      testing.TB
	server *httptest.Server

	mutex      sync.Mutex
	counter    int
	retransKey string
	calls      map[string]int
	rejectNext bool

	arenaEventId int64
	raidEventId  int64
	endDate      int64
	// pages maps kind -> offset -> rows
	pages      map[Kind]map[int][]rankingRow
	guildPages map[int][]guildRankingRow
	party      map[string]any
	guild      guildRow
	members    []guildMemberRow
}

func newFakeUpstream(t testing.TB) *fakeUpstream {
	f := &fakeUpstream{
		t:            t,
		calls:        map[string]int{},
		arenaEventId: 11,
		raidEventId:  22,
		endDate:      1600000000,
		pages: map[Kind]map[int][]rankingRow{
			KindArena:           {},
			KindRaidSuppression: {},
			KindRaidCreation:    {},
		},
		guildPages: map[int][]guildRankingRow{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) nextKey() string {
	f.counter++
	f.retransKey = fmt.Sprintf("rk-%d", f.counter)
	return f.retransKey
}

func (f *fakeUpstream) callCount(path string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls[path]
}

func (f *fakeUpstream) write(w http.ResponseWriter, replace any) {
	body := map[string]any{
		"retrans_key": f.nextKey(),
		"replace":     replace,
	}
	w.Header().Set("content-type", "application/json")
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		f.t.Error(err)
	}
}

func (f *fakeUpstream) handle(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	path := r.URL.Path
	f.calls[path]++

	var body map[string]any
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if path == "/app/init" {
		if body["app_ver"] != FormatAppVersion("1.0.0", testSecret) {
			w.WriteHeader(http.StatusUpgradeRequired)
			return
		}
		w.Header().Set("content-type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"retrans_key": f.nextKey(),
			"res_version": "res-1",
		})
		return
	}

	if body["retrans_key"] != f.retransKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if path == "/user/prelogin" {
		f.write(w, map[string]any{"session_key": testSessionKey})
		return
	}

	if body["auth_key"] != AuthKey(testTokenKey, testSessionKey) || f.rejectNext {
		f.rejectNext = false
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	number := func(key string) int {
		v, _ := body[key].(float64)
		return int(v)
	}

	switch path {
	case "/user/login":
		f.write(w, map[string]any{})
	case "/home/notice":
		f.write(w, map[string]any{
			"ant":  map[string]any{"event_id": f.arenaEventId, "end_date": f.endDate},
			"raid": map[string]any{"event_id": f.raidEventId, "end_date": f.endDate + 3600},
		})
	case "/ant/offsetranking":
		f.write(w, map[string]any{
			"ranking_list": f.pages[KindArena][number("ranking_offset")],
		})
	case "/raid/offsetranking":
		if number("ranking_type") == raidRankingTypeCreation {
			f.write(w, map[string]any{"creator_ranking": f.pages[KindRaidCreation][number("ranking_offset")]})
			return
		}
		f.write(w, map[string]any{"suppression_ranking": f.pages[KindRaidSuppression][number("ranking_offset")]})
	case "/ant/partydetails":
		f.write(w, map[string]any{"party_info": f.party})
	case "/guild/info":
		f.write(w, map[string]any{"guild_data": f.guild})
	case "/guild/memberlist":
		f.write(w, map[string]any{"guild_member_list": f.members})
	case "/guild/search":
		if body["display_id"] == f.guild.DisplayID || body["guild_name"] == f.guild.GuildName {
			f.write(w, map[string]any{"guild_search_result": []guildRow{f.guild}})
			return
		}
		f.write(w, map[string]any{"guild_search_result": []guildRow{}})
	case "/rod/ranking":
		f.write(w, map[string]any{"ranking_list": f.guildPages[number("ranking_offset")]})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// rows builds a contiguous ranking window, scores strictly decreasing.
func rows(fromRank, toRank int) []rankingRow {
	var out []rankingRow
	for rank := fromRank; rank <= toRank; rank++ {
		out = append(out, rankingRow{
			ScoreRank:  rank,
			ScorePoint: int64(100000 - rank*10),
			FriendProfile: friendProfile{
				ProfileID: int64(1000 + rank),
				Name:      fmt.Sprintf("player%d", rank),
			},
		})
	}
	return out
}

type mapSink struct {
	mutex sync.Mutex
	names map[string]int64
}

func (m *mapSink) Put(name string, profileId int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.names == nil {
		m.names = map[string]int64{}
	}
	m.names[name] = profileId
}

func (m *mapSink) get(name string) (int64, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	id, ok := m.names[name]
	return id, ok
}

func newTestClient(t testing.TB, f *fakeUpstream, sink ProfileSink) *Client {
	return NewClient(Options{
		ApiUrl:  f.server.URL,
		InitUrl: f.server.URL + "/app/init",
		Credentials: Credentials{
			UserAgent:   "test-agent",
			DeviceID:    "device",
			DeviceToken: "device-token",
			TokenKey:    testTokenKey,
			UUID:        "uuid",
		},
		Versions:          StaticVersion{Version: "1.0.0", Secret: testSecret},
		Profiles:          sink,
		RequestsPerSecond: 1000,
	}, telemetry.SlogAPI{})
}
