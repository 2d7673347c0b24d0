package presence

import (
	"context"
	"fmt"
	"sync"

	"idola-backend/internal/components/assert"
	"idola-backend/internal/components/telemetry"

	"github.com/bwmarrin/discordgo"
)

const report_presence_update = "presence.update"

// Publisher shows a one line status to the community.
type Publisher interface {
	Publish(ctx context.Context, status string) error
	Close() error
}

// LogPublisher only reports the status, it is used when no chat token is
// configured.
type LogPublisher struct {
	tel telemetry.API

	mutex sync.Mutex
	last  string
}

func NewLogPublisher(tel telemetry.API) *LogPublisher {
	assert.NotNil(tel)
	return &LogPublisher{tel: telemetry.NewScopedAPI("presence", tel)}
}

func (p *LogPublisher) Publish(ctx context.Context, status string) error {
	p.mutex.Lock()
	p.last = status
	p.mutex.Unlock()
	p.tel.ReportDebug("status", status)
	return nil
}

// Last returns the most recently published status.
func (p *LogPublisher) Last() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.last
}

func (p *LogPublisher) Close() error {
	return nil
}

// Discord sets the bot's "playing" activity.
type Discord struct {
	session *discordgo.Session
	tel     telemetry.API
}

// OpenDiscord connects to the gateway with a bot token.
func OpenDiscord(token string, tel telemetry.API) (*Discord, error) {
	assert.NotEmptyStr(token)
	assert.NotNil(tel)

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	err = session.Open()
	if err != nil {
		return nil, fmt.Errorf("open discord gateway: %w", err)
	}
	return &Discord{
		session: session,
		tel:     telemetry.NewScopedAPI("presence", tel),
	}, nil
}

func (d *Discord) Publish(ctx context.Context, status string) error {
	err := d.session.UpdateGameStatus(0, status)
	if err != nil {
		d.tel.ReportBroken(report_presence_update, err)
	}
	return err
}

func (d *Discord) Close() error {
	return d.session.Close()
}
