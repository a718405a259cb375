// Package notify maps schedule blocks to reminder scheduling decisions and
// maintains the bounded notification history with its three-state
// lifecycle. Actual platform delivery sits behind the Delivery interface.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
)

const historyCap = 100

// Request carries everything the platform needs to schedule one reminder.
type Request struct {
	Title   string
	Body    string
	At      time.Time
	Payload map[string]string
}

// Delivery is the external scheduling primitive. Implementations wrap the
// actual OS notification APIs; tests and the dev server use LocalDelivery.
type Delivery interface {
	Schedule(ctx context.Context, req Request) (handle string, err error)
	Cancel(ctx context.Context, handle string) error
	CancelAll(ctx context.Context) error
	Pending(ctx context.Context) ([]string, error)
}

type Planner struct {
	delivery Delivery
	logger   internal.Logger
}

func NewPlanner(delivery Delivery, logger internal.Logger) *Planner {
	return &Planner{delivery: delivery, logger: logger}
}

// Replan cancels every outstanding reminder and schedules the new block set.
// Cancel-before-schedule is the one ordering guarantee: it is what prevents
// duplicate or stale reminders after a schedule regeneration. A failure on
// one block never aborts the rest.
func (p *Planner) Replan(ctx context.Context, history []internal.NotificationHistoryItem, blocks []internal.ScheduleBlock, permissionGranted bool, now time.Time) []internal.NotificationHistoryItem {
	history = p.cancelScheduled(ctx, history, now)
	for _, b := range blocks {
		history = append(history, p.planBlock(ctx, b, permissionGranted, now))
	}
	return Trim(history)
}

// planBlock makes the per-block decision: no permission means a canceled
// entry, a start in the past means a sent entry without scheduling, and a
// scheduling failure degrades to a canceled entry.
func (p *Planner) planBlock(ctx context.Context, block internal.ScheduleBlock, permissionGranted bool, now time.Time) internal.NotificationHistoryItem {
	title, body := messageFor(block)
	item := internal.NotificationHistoryItem{
		ID:           uuid.NewString(),
		BlockID:      block.ID,
		Kind:         block.Kind,
		ScheduledFor: block.StartTime,
		Title:        title,
		Body:         body,
		CreatedAt:    now,
	}

	if !permissionGranted {
		item.Status = internal.NotificationCanceled
		item.CanceledAt = &now
		return item
	}
	if !block.StartTime.After(now) {
		item.Status = internal.NotificationSent
		item.SentAt = &now
		return item
	}

	handle, err := p.delivery.Schedule(ctx, Request{
		Title: title,
		Body:  body,
		At:    block.StartTime,
		Payload: map[string]string{
			"block_id": block.ID,
			"kind":     string(block.Kind),
		},
	})
	if err != nil {
		p.logger.Warnf("notify: scheduling %s reminder failed: %v", block.Kind, err)
		item.Status = internal.NotificationCanceled
		item.CanceledAt = &now
		return item
	}
	item.Handle = handle
	item.Status = internal.NotificationScheduled
	return item
}

func (p *Planner) cancelScheduled(ctx context.Context, history []internal.NotificationHistoryItem, now time.Time) []internal.NotificationHistoryItem {
	if err := p.delivery.CancelAll(ctx); err != nil {
		p.logger.Warnf("notify: cancel-all failed: %v", err)
	}
	out := make([]internal.NotificationHistoryItem, len(history))
	for i, item := range history {
		out[i] = cancelItem(item, now)
	}
	return out
}

// CancelOne transitions a single scheduled item to canceled, cancelling its
// platform reminder. Items in any other state are left untouched.
func (p *Planner) CancelOne(ctx context.Context, history []internal.NotificationHistoryItem, id string, now time.Time) []internal.NotificationHistoryItem {
	out := make([]internal.NotificationHistoryItem, len(history))
	for i, item := range history {
		if item.ID != id || item.Status != internal.NotificationScheduled {
			out[i] = item
			continue
		}
		if item.Handle != "" {
			if err := p.delivery.Cancel(ctx, item.Handle); err != nil {
				p.logger.Warnf("notify: cancel %s failed: %v", item.Handle, err)
			}
		}
		out[i] = cancelItem(item, now)
	}
	return out
}

// MarkSent records a confirmed delivery, keyed by the platform handle.
// Only the scheduled state transitions; everything else is a no-op.
func MarkSent(history []internal.NotificationHistoryItem, handle string, now time.Time) []internal.NotificationHistoryItem {
	out := make([]internal.NotificationHistoryItem, len(history))
	for i, item := range history {
		if item.Handle == handle && item.Status == internal.NotificationScheduled {
			item.Status = internal.NotificationSent
			t := now
			item.SentAt = &t
		}
		out[i] = item
	}
	return out
}

// Trim caps the history at the 100 most recent entries, oldest dropped
// first. Entries are appended in creation order, so the tail is newest.
func Trim(history []internal.NotificationHistoryItem) []internal.NotificationHistoryItem {
	if len(history) <= historyCap {
		return history
	}
	return history[len(history)-historyCap:]
}

func cancelItem(item internal.NotificationHistoryItem, now time.Time) internal.NotificationHistoryItem {
	if item.Status != internal.NotificationScheduled {
		return item
	}
	item.Status = internal.NotificationCanceled
	t := now
	item.CanceledAt = &t
	return item
}

func messageFor(block internal.ScheduleBlock) (title, body string) {
	at := block.StartTime.Format("3:04 PM")
	switch block.Kind {
	case internal.BlockNap:
		return "Nap time soon", fmt.Sprintf("Next nap is coming up at %s.", at)
	case internal.BlockWindDown:
		return "Wind-down time", fmt.Sprintf("Start winding down at %s to ease into sleep.", at)
	case internal.BlockBedtime:
		return "Bedtime", fmt.Sprintf("Bedtime is at %s tonight.", at)
	default:
		return "Sleep reminder", fmt.Sprintf("Upcoming sleep block at %s.", at)
	}
}
