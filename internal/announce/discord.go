package announce

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordAnnouncer mirrors platform-wide announcements into an ops channel,
// so the team sees what was just pushed to every user.
type DiscordAnnouncer struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordAnnouncer(botToken string, channelID string) (*DiscordAnnouncer, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &DiscordAnnouncer{
		session:   session,
		channelID: channelID,
	}, nil
}

func (a *DiscordAnnouncer) Announce(title string, body string) error {
	_, err := a.session.ChannelMessageSendEmbed(a.channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: body,
	})
	if err != nil {
		return fmt.Errorf("failed to send discord announcement: %w", err)
	}

	return nil
}
