package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/certhub/examdesk/internal/models"
	"github.com/certhub/examdesk/internal/services"
)

// Digest reminds the admin chat of upcoming sessions, with how many
// tickets still have no room.
type Digest struct {
	svc     *services.Service
	c       *Client
	chatID  int64
	offsets []time.Duration
	loc     *time.Location
	log     *slog.Logger
}

func NewDigest(svc *services.Service, c *Client, chatID int64, offsets []time.Duration, loc *time.Location, log *slog.Logger) *Digest {
	return &Digest{svc: svc, c: c, chatID: chatID, offsets: offsets, loc: loc, log: log}
}

// Run ticks once a minute until ctx is done.
func (d *Digest) Run(ctx context.Context) {
	if !d.c.Enabled() || d.chatID == 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.Tick(ctx, now)
		}
	}
}

// Tick sends one message per session whose reminder falls in the minute
// starting at now. A strict [tick, tick+1m) window avoids duplicate sends.
func (d *Digest) Tick(ctx context.Context, now time.Time) int {
	tick := now.UTC().Truncate(time.Minute)
	next := tick.Add(time.Minute)

	sent := 0
	for _, ahead := range d.offsets {
		sessions, err := d.svc.UpcomingSessions(ctx, tick.Add(ahead), next.Add(ahead))
		if err != nil {
			d.log.Warn("digest: load sessions", "err", err)
			continue
		}
		for _, sess := range sessions {
			text, err := d.message(ctx, sess)
			if err != nil {
				d.log.Warn("digest: roster", "session_id", sess.ID, "err", err)
				continue
			}
			if err := d.c.SendMessage(ctx, d.chatID, text); err != nil {
				d.log.Warn("digest: send", "session_id", sess.ID, "err", err)
				continue
			}
			sent++
		}
	}
	return sent
}

func (d *Digest) message(ctx context.Context, sess models.ExamSession) (string, error) {
	tickets, err := d.svc.TicketRoster(ctx, services.RosterFilter{SessionID: sess.ID})
	if err != nil {
		return "", err
	}
	unassigned := 0
	for _, t := range tickets {
		if t.RoomID == nil {
			unassigned++
		}
	}
	cert := ""
	if sess.Certificate != nil {
		cert = sess.Certificate.Code
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏰ Ca thi %s lúc %s\n", cert, sess.ScheduledAt.In(d.loc).Format("15:04 02/01/2006"))
	fmt.Fprintf(&b, "Địa điểm: %s\n", sess.Location)
	fmt.Fprintf(&b, "Thí sinh: %d", len(tickets))
	if unassigned > 0 {
		fmt.Fprintf(&b, "\nChưa xếp phòng: <b>%d</b>", unassigned)
	}
	return b.String(), nil
}
