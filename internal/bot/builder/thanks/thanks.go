package thanks

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/havenhelper/internal/bot/constants"
	"github.com/robalyx/havenhelper/internal/bot/utils"
	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/robalyx/havenhelper/internal/gratitude"
)

// FullListHeader heads the complete all-time listing.
const FullListHeader = "**Most Thanked Users (All-Time Full List):**"

// ThankedMessage is the public confirmation of a recorded thanks.
func ThankedMessage(thankingMention, thankedMention, game, note string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s thanked %s!", thankingMention, thankedMention)

	if game != "" {
		b.WriteString("\n**Game:** " + game)
	}

	if note != "" {
		b.WriteString("\n**Message:** " + note)
	}

	return b.String()
}

// MilestoneAnnouncement builds the congratulation posted when a user crosses a milestone.
// An empty roleMention leaves out the request to the moderators.
func MilestoneAnnouncement(userMention string, m gratitude.Milestone, roleMention string) discord.MessageCreate {
	content := fmt.Sprintf("🎉 %s just hit **%d thanks** and earned **%s**!", userMention, m.Threshold, m.Title)

	if roleMention != "" {
		content += fmt.Sprintf("\n%s please award this role in recognition of their support.", roleMention)
	}

	return discord.NewMessageCreateBuilder().
		SetContent(content).
		SetAllowedMentions(&discord.AllowedMentions{
			Parse: []discord.AllowedMentionType{
				discord.AllowedMentionTypeUsers,
				discord.AllowedMentionTypeRoles,
			},
		}).
		Build()
}

// TopList formats the text top list of a scope.
func TopList(scope gratitude.Scope, rows []*types.LeaderboardRow) string {
	header := fmt.Sprintf("**Most Thanked Users (%s):**", scope.LongLabel())

	if len(rows) == 0 {
		return header + "\nNo thanks recorded for the specified period."
	}

	return header + "\n" + strings.Join(rowLines(rows), "\n")
}

// FullList formats every ranked row, split into messages that fit Discord's limit.
func FullList(rows []*types.LeaderboardRow) []string {
	if len(rows) == 0 {
		return []string{FullListHeader + "\nNo thanks recorded."}
	}

	return utils.SplitMessage(FullListHeader, rowLines(rows), constants.MessageLimit)
}

// Feedback formats the latest thanks received by a user.
// It returns nil when there is nothing to show.
func Feedback(name string, facts []*types.ThanksFact) []string {
	if len(facts) == 0 {
		return nil
	}

	entries := make([]string, len(facts))
	for i, fact := range facts {
		game := fact.Game
		if game == "" {
			game = constants.NotApplicable
		}

		note := fact.Note
		if note == "" {
			note = constants.NoMessage
		}

		entries[i] = fmt.Sprintf("**From:** %s\n**Game:** %s\n**Message:** %s\n**Date:** %s",
			fact.ThankingName, game, note, fact.CreatedAt.UTC().Format(time.DateTime))
	}

	return utils.SplitMessage(fmt.Sprintf("**Feedback for %s:**", name), entries, constants.MessageLimit)
}

// NoFeedback is shown when a user has not been thanked yet.
func NoFeedback(userMention string) string {
	return fmt.Sprintf("No feedback found for %s.", userMention)
}

func rowLines(rows []*types.LeaderboardRow) []string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		name := row.DisplayName
		if name == "" {
			name = fmt.Sprintf("User %d", row.UserID)
		}

		lines[i] = fmt.Sprintf("%s - %d thanks", name, row.ThankCount)
	}

	return lines
}
