package notification

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Alerter posts operational messages for the marketplace administrators.
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

// DiscordAlerter posts alerts to a Discord channel through a bot.
type DiscordAlerter struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordAlerter(botToken, channelID string) (*DiscordAlerter, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return &DiscordAlerter{
		session:   session,
		channelID: channelID,
	}, nil
}

func (a *DiscordAlerter) Alert(ctx context.Context, message string) error {
	_, err := a.session.ChannelMessageSend(a.channelID, message, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send Discord message: %w", err)
	}

	return nil
}

// LogAlerter writes alerts to the log when no Discord channel is configured.
type LogAlerter struct{}

func (LogAlerter) Alert(_ context.Context, message string) error {
	log.Warn().Str("alert", message).Msg("admin alert")
	return nil
}

// NewAlerter returns a Discord alerter when a bot token and channel are configured, a LogAlerter otherwise.
func NewAlerter(botToken, channelID string) (Alerter, error) {
	if botToken == "" || channelID == "" {
		return LogAlerter{}, nil
	}

	return NewDiscordAlerter(botToken, channelID)
}
