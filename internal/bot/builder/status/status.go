package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/robalyx/havenhelper/internal/bot/utils"
)

// Report is a snapshot of the bot's health.
type Report struct {
	Uptime      time.Duration
	DatabaseErr error
	Commands    int
}

// Build formats the health check reply.
func (r Report) Build() string {
	database := "✅ Connected"
	if r.DatabaseErr != nil {
		database = "❌ Error: " + r.DatabaseErr.Error()
	}

	var b strings.Builder

	b.WriteString("**Haven's Helper Health Check:**\n")
	fmt.Fprintf(&b, "- **Uptime:** %s\n", utils.FormatUptime(r.Uptime))
	fmt.Fprintf(&b, "- **Database:** %s\n", database)
	fmt.Fprintf(&b, "- **Registered Commands:** %d\n", r.Commands)

	return b.String()
}
