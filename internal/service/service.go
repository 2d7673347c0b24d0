package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"idola-backend/internal/components/assert"
	"idola-backend/internal/components/chrono"
	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/party"
	"idola-backend/internal/profiles"
	"idola-backend/internal/scrapers/idola"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("idola.service")

const (
	report_service_relogin = "service.relogin"
	report_service_save    = "service.save"
	report_service_load    = "service.load"
	report_service_border  = "service.border-status"
	report_service_resolve = "service.resolve-profile"
)

// ResolveSearchDepth is how many arena entries are scanned when a name is not
// cached yet.
const ResolveSearchDepth = 100

// ErrNoDatabase is returned by Save and Load when the service runs without
// persistence.
var ErrNoDatabase = errors.New("service: no database configured")

// GameAPI is everything the service needs from the upstream game client.
//
// note: fault injection point
type GameAPI interface {
	Start(ctx context.Context) error
	LatestEvent(ctx context.Context, kind idola.Kind) (idola.EventNotice, error)
	TopN(ctx context.Context, kind idola.Kind, eventId int64, n int) ([]idola.RankingEntry, error)
	Border(ctx context.Context, kind idola.Kind, eventId int64, tier int) (idola.BorderResult, error)
	PartyDetails(ctx context.Context, profileId int64) (idola.PartyInfo, error)
	GuildInfo(ctx context.Context, guildId int64) (idola.Guild, error)
	GuildMembers(ctx context.Context, guildId int64) ([]idola.GuildMember, error)
	SearchGuildByDisplayID(ctx context.Context, displayId string) ([]idola.Guild, error)
	SearchGuildByName(ctx context.Context, name string) ([]idola.Guild, error)
	GuildRange(ctx context.Context, start, end int) ([]idola.GuildRankingEntry, error)
}

type Options struct {
	Game      GameAPI
	Cache     *profiles.Cache
	Registry  *profiles.Registry
	Formatter party.Formatter
	// optional, Save and Load fail with ErrNoDatabase without it
	DB    *sql.DB
	Clock chrono.API
}

// Service is the query surface consumed by the chat bot and the cli.
type Service struct {
	game      GameAPI
	cache     *profiles.Cache
	registry  *profiles.Registry
	formatter party.Formatter
	db        *sql.DB
	clock     chrono.API
	tel       telemetry.API
}

func NewService(opts Options, tel telemetry.API) Service {
	assert.NotNil(opts.Game)
	assert.NotNil(opts.Cache)
	assert.NotNil(opts.Registry)
	assert.NotNil(opts.Clock)
	assert.NotNil(tel)

	return Service{
		game:      opts.Game,
		cache:     opts.Cache,
		registry:  opts.Registry,
		formatter: opts.Formatter,
		db:        opts.DB,
		clock:     opts.Clock,
		tel:       telemetry.NewScopedAPI("service", tel),
	}
}

// withRelogin runs fn, and when it fails because the session is no longer
// valid it re-runs the whole handshake and tries fn exactly once more.
func withRelogin[T any](ctx context.Context, s Service, fn func() (T, error)) (T, error) {
	out, err := fn()
	if err == nil || !idola.NeedsRelogin(err) {
		return out, err
	}

	s.tel.ReportWarning(report_service_relogin, err)
	startErr := s.game.Start(ctx)
	if startErr != nil {
		var zero T
		return zero, fmt.Errorf("relogin: %w", startErr)
	}
	return fn()
}

// Relogin re-runs the session handshake.
func (s Service) Relogin(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Relogin")
	defer span.End()

	err := s.game.Start(ctx)
	if err != nil {
		s.tel.ReportBroken(report_service_relogin, err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

type EventTiming struct {
	EventID  int64
	EndDate  time.Time
	TimeLeft string
}

func (s Service) EventEndDate(ctx context.Context, kind idola.Kind) (EventTiming, error) {
	event, err := withRelogin(ctx, s, func() (idola.EventNotice, error) {
		return s.game.LatestEvent(ctx, kind)
	})
	if err != nil {
		return EventTiming{}, err
	}
	return EventTiming{
		EventID:  event.EventID,
		EndDate:  event.EndDate.In(s.clock.Location()),
		TimeLeft: chrono.TimeLeft(s.clock.Now(), event.EndDate),
	}, nil
}

// TopN returns the current event's top n of the given leaderboard.
func (s Service) TopN(ctx context.Context, kind idola.Kind, n int) ([]idola.RankingEntry, error) {
	ctx, span := tracer.Start(ctx, "TopN")
	defer span.End()
	span.SetAttributes(attribute.String("kind", kind.String()), attribute.Int("n", n))

	return withRelogin(ctx, s, func() ([]idola.RankingEntry, error) {
		event, err := s.game.LatestEvent(ctx, kind)
		if err != nil {
			return nil, err
		}
		return s.game.TopN(ctx, kind, event.EventID, n)
	})
}

// Border returns the score at exactly rank tier of the current event.
func (s Service) Border(ctx context.Context, kind idola.Kind, tier int) (idola.BorderResult, error) {
	ctx, span := tracer.Start(ctx, "Border")
	defer span.End()
	span.SetAttributes(attribute.String("kind", kind.String()), attribute.Int("tier", tier))

	return withRelogin(ctx, s, func() (idola.BorderResult, error) {
		event, err := s.game.LatestEvent(ctx, kind)
		if err != nil {
			return idola.BorderResult{}, err
		}
		return s.game.Border(ctx, kind, event.EventID, tier)
	})
}

// FormatBorder renders a border score with thousands separators, an absent
// rank renders as "unknown".
func FormatBorder(result idola.BorderResult) string {
	if !result.Known {
		return "unknown"
	}
	return humanize.Comma(result.Score)
}

// BorderStatus is the one line status published periodically, it never
// fails: an upstream failure degrades to a "down" message.
func (s Service) BorderStatus(ctx context.Context, kind idola.Kind, tier int) string {
	label := fmt.Sprintf("%sBorderTop%d", borderLabel(kind), tier)
	result, err := s.Border(ctx, kind, tier)
	if err != nil {
		s.tel.ReportWarning(report_service_border, err)
		return "Popona is down"
	}
	return fmt.Sprintf("%s - %s", FormatBorder(result), label)
}

func borderLabel(kind idola.Kind) string {
	switch kind {
	case idola.KindRaidSuppression:
		return "Suppression"
	case idola.KindRaidCreation:
		return "Creation"
	default:
		return "Arena"
	}
}

func (s Service) partyInfo(ctx context.Context, profileId int64) (idola.PartyInfo, error) {
	return withRelogin(ctx, s, func() (idola.PartyInfo, error) {
		return s.game.PartyDetails(ctx, profileId)
	})
}

func (s Service) Party(ctx context.Context, profileId int64) (party.Composition, error) {
	ctx, span := tracer.Start(ctx, "Party")
	defer span.End()

	info, err := s.partyInfo(ctx, profileId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return party.Composition{}, err
	}
	return s.formatter.Compose(info), nil
}

// PartyByName resolves name first, ok is false when no profile matches.
func (s Service) PartyByName(ctx context.Context, name string) (composition party.Composition, ok bool, err error) {
	profileId, ok, err := s.ResolveProfileByName(ctx, name)
	if err != nil || !ok {
		return party.Composition{}, false, err
	}
	composition, err = s.Party(ctx, profileId)
	if err != nil {
		return party.Composition{}, false, err
	}
	return composition, true, nil
}

func (s Service) NextOptions(ctx context.Context, profileId int64) (string, []party.OptionChange, error) {
	info, err := s.partyInfo(ctx, profileId)
	if err != nil {
		return "", nil, err
	}
	return info.PlayerName, s.formatter.NextOptions(info), nil
}

func (s Service) Guild(ctx context.Context, guildId int64) (idola.Guild, error) {
	return withRelogin(ctx, s, func() (idola.Guild, error) {
		return s.game.GuildInfo(ctx, guildId)
	})
}

func (s Service) GuildMembers(ctx context.Context, guildId int64) ([]idola.GuildMember, error) {
	return withRelogin(ctx, s, func() ([]idola.GuildMember, error) {
		return s.game.GuildMembers(ctx, guildId)
	})
}

// SearchGuild treats query as a display id first and falls back to a name
// search when nothing has that id.
func (s Service) SearchGuild(ctx context.Context, query string) ([]idola.Guild, error) {
	query = strings.TrimSpace(query)
	return withRelogin(ctx, s, func() ([]idola.Guild, error) {
		guilds, err := s.game.SearchGuildByDisplayID(ctx, query)
		if err != nil || len(guilds) > 0 {
			return guilds, err
		}
		return s.game.SearchGuildByName(ctx, query)
	})
}

func (s Service) GuildRange(ctx context.Context, start, end int) ([]idola.GuildRankingEntry, error) {
	return withRelogin(ctx, s, func() ([]idola.GuildRankingEntry, error) {
		return s.game.GuildRange(ctx, start, end)
	})
}

// ResolveProfileByName returns the profile id of an exact cache hit, then
// falls back to the first arena top entry whose name starts with name. A
// blank name never matches.
func (s Service) ResolveProfileByName(ctx context.Context, name string) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, nil
	}

	ctx, span := tracer.Start(ctx, "ResolveProfileByName")
	defer span.End()

	profileId, ok := s.cache.Get(name)
	if ok {
		span.SetAttributes(attribute.Bool("cached", true))
		return profileId, true, nil
	}

	entries, err := s.TopN(ctx, idola.KindArena, ResolveSearchDepth)
	if err != nil {
		s.tel.ReportWarning(report_service_resolve, err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.DisplayName, name) {
			return entry.ProfileID, true, nil
		}
	}
	return 0, false, nil
}

// Suggest lists cached names resembling name, for "did you mean" replies.
func (s Service) Suggest(name string, limit int) []profiles.Suggestion {
	return s.cache.Suggest(name, limit)
}

func (s Service) RegisterExternalID(externalId string, profileId int64) {
	s.registry.Register(externalId, profileId)
}

func (s Service) ProfileByExternalID(externalId string) (int64, bool) {
	return s.registry.Lookup(externalId)
}

// Save persists the profile cache and the external id registry.
func (s Service) Save(ctx context.Context) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()

	err := errors.Join(
		s.cache.Persist(ctx, s.db),
		s.registry.Persist(ctx, s.db),
	)
	if err != nil {
		s.tel.ReportBroken(report_service_save, err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Load restores what Save persisted.
func (s Service) Load(ctx context.Context) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	err := errors.Join(
		s.cache.Load(ctx, s.db),
		s.registry.Load(ctx, s.db),
	)
	if err != nil {
		s.tel.ReportBroken(report_service_load, err)
	}
	return err
}
