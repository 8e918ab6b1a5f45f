package bot

import (
	"context"
	"log/slog"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/services/lore"
)

// handleLoreMenuCallback redraws the lore main menu in place
func (d *Dispatcher) handleLoreMenuCallback(ctx context.Context, ev Event) {
	if !d.policy.CanViewContent(ev.User.ID) {
		d.notifier.Answer(ctx, ev.CallbackID, textAwaitingShort, true)
		return
	}
	d.ack(ctx, ev)

	kb := d.lore.MainMenu()
	if len(kb) == 0 {
		d.editCallback(ctx, ev, lore.NoSectionsText, nil)
		return
	}
	if !d.notifier.Edit(ctx, ev.ChatID, ev.MessageID, lore.MenuPrompt, kb) {
		// The menu message may be a photo caption or gone; send a fresh one.
		d.reply(ctx, ev, lore.MenuPrompt, kb)
	}
}

// handleLoreCallback replaces the pressed menu with the chosen page: its
// image first when it has one, then the text and navigation buttons
func (d *Dispatcher) handleLoreCallback(ctx context.Context, ev Event) {
	if !d.policy.CanViewContent(ev.User.ID) {
		d.notifier.Answer(ctx, ev.CallbackID, textAwaitingShort, true)
		return
	}
	d.ack(ctx, ev)

	view, err := d.lore.Open(ev.Payload)
	if err != nil {
		d.logger.Warn("lore navigation failed", slog.String("payload", ev.Payload), slog.String("error", err.Error()))
		d.editCallback(ctx, ev, lore.NavigationErrText, nil)
		return
	}

	d.notifier.Delete(ctx, ev.ChatID, ev.MessageID)
	if view.Photo != nil {
		fileID, sent := d.notifier.Photo(ctx, messenger.PhotoMessage{ChatID: ev.ChatID, Photo: *view.Photo})
		if sent && !view.Photo.Cached() && fileID != "" {
			if err := d.lore.CacheImage(ctx, view.Path, fileID); err != nil {
				d.logger.Error("error caching lore image", slog.String("payload", ev.Payload), slog.String("error", err.Error()))
			}
		}
	}
	d.notifier.BestEffort(ctx, messenger.Message{
		ChatID:    ev.ChatID,
		Text:      view.Text,
		ParseMode: messenger.ParseHTML,
		Keyboard:  view.Keyboard,
	})
}
