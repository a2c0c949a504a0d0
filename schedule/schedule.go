// Package schedule pushes call-time reminders to connected users. Slots
// are daily "HH:MM" wall-clock times in Korea; a one-minute loop matches
// them against the current time and fires through the event sender.
package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/core"
	"github.com/tripot-labs/companion-engine/store"
)

const (
	reminderMessage = "정시 대화 시간입니다! 대화를 시작하시겠어요?"
	checkInterval   = time.Minute
	clockLayout     = "15:04"
	firedLayout     = "2006-01-02 15:04"
)

// Source lists the enabled call slots. Implemented by store.Store.
type Source interface {
	ActiveSchedules(ctx context.Context) ([]store.ScheduledCall, error)
}

// Notifier runs the reminder loop. Slots are re-read from the source on
// every tick so schedule changes take effect within a minute.
type Notifier struct {
	source Source
	sender core.Sender
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time

	// lastFired keys userID+slot to the minute it last fired, so a tick
	// landing twice in the same minute sends one reminder.
	lastFired map[string]string
}

// New builds a notifier on Korean wall-clock time.
func New(source Source, sender core.Sender, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &Notifier{
		source:    source,
		sender:    sender,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
		lastFired: make(map[string]string),
	}
}

// Run ticks once immediately and then every minute until ctx is
// cancelled. Intended to run on its own goroutine.
func (n *Notifier) Run(ctx context.Context) {
	n.logger.Info("call reminder loop started")
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	n.tick(ctx, n.now())
	for {
		select {
		case <-ctx.Done():
			n.logger.Info("call reminder loop stopped")
			return
		case <-ticker.C:
			n.tick(ctx, n.now())
		}
	}
}

// tick fires every slot matching the current Korean minute that has not
// fired this minute yet.
func (n *Notifier) tick(ctx context.Context, now time.Time) {
	slots, err := n.source.ActiveSchedules(ctx)
	if err != nil {
		n.logger.Warn("loading call schedules failed", zap.Error(err))
		return
	}

	local := now.In(n.loc)
	minute := local.Format(clockLayout)
	stamp := local.Format(firedLayout)

	for _, slot := range slots {
		if slot.CallTime != minute {
			continue
		}
		key := slot.UserID + "|" + slot.CallTime
		if n.lastFired[key] == stamp {
			continue
		}
		n.lastFired[key] = stamp

		if err := n.sender.Send(slot.UserID, core.NewScheduledCall(reminderMessage, now)); err != nil {
			n.logger.Warn("sending call reminder failed",
				zap.String("user_id", slot.UserID), zap.Error(err))
			continue
		}
		n.logger.Info("call reminder sent",
			zap.String("user_id", slot.UserID), zap.String("call_time", slot.CallTime))
	}
}
