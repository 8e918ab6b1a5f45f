package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/eventide-gm/internal/media"
	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/services/lore"
	"github.com/mcoot/eventide-gm/internal/store"
)

// Telegram rejects messages longer than this
const (
	maxMessageLen = 4096
	chunkLen      = 4090
)

func (d *Dispatcher) handleStart(ctx context.Context, ev Event) {
	p, created, err := d.store.Register(ctx, ev.User.ID, ev.User.FirstName)
	if err != nil {
		d.logger.Error("error registering player", slog.Int64("user_id", int64(ev.User.ID)), slog.String("error", err.Error()))
		d.reply(ctx, ev, textErrorSaving, nil)
		return
	}
	if !created {
		d.notifier.BestEffort(ctx, messenger.Message{
			ChatID:    ev.ChatID,
			Text:      fmt.Sprintf(textWelcomeBackFmt, mention(ev.User)),
			ParseMode: messenger.ParseHTML,
			Keyboard:  mainKeyboard(d.policy.IsPrivileged(ev.User.ID)),
		})
		return
	}

	username := ev.User.Username
	if username == "" {
		username = "N/A"
	}
	d.notify(ctx, d.policy.AdminID(),
		fmt.Sprintf(textAdminNewPlayerFmt, ev.User.FirstName, p.ID, username, p.GameStatus()),
		messenger.ParseNone)
	d.sendWelcome(ctx, ev)
}

// sendWelcome sends the welcome photo, uploading it once per process and
// reusing the handle afterwards. Without a usable photo the caption is sent
// as text.
func (d *Dispatcher) sendWelcome(ctx context.Context, ev Event) {
	d.welcomeMu.Lock()
	cached := d.welcomeFileID
	d.welcomeMu.Unlock()

	photo, ok := media.Resolve(d.cfg.BaseDir, cached, d.cfg.WelcomeImagePath)
	if ok {
		fileID, sent := d.notifier.Photo(ctx, messenger.PhotoMessage{
			ChatID:  ev.ChatID,
			Photo:   photo,
			Caption: textWelcomeCaption,
		})
		if sent {
			if !photo.Cached() && fileID != "" {
				d.welcomeMu.Lock()
				d.welcomeFileID = fileID
				d.welcomeMu.Unlock()
			}
			return
		}
	} else {
		d.logger.Warn("welcome image not found", slog.String("path", d.cfg.WelcomeImagePath))
	}
	d.reply(ctx, ev, textWelcomeCaption, nil)
}

func mention(u User) string {
	return fmt.Sprintf(`<a href="tg://user?id=%s">%s</a>`, u.ID, html.EscapeString(u.FirstName))
}

func (d *Dispatcher) handleLore(ctx context.Context, ev Event) {
	if !d.policy.CanViewContent(ev.User.ID) {
		d.reply(ctx, ev, textAwaitingMission, nil)
		return
	}
	if reason, ok := d.lore.Unavailable(); ok {
		d.reply(ctx, ev, reason, nil)
		return
	}
	kb := d.lore.MainMenu()
	if len(kb) == 0 {
		d.reply(ctx, ev, lore.NoSectionsText, nil)
		return
	}
	d.reply(ctx, ev, lore.MenuPrompt, kb)
}

func (d *Dispatcher) handleCharacter(ctx context.Context, ev Event) {
	if !d.policy.CanViewContent(ev.User.ID) {
		d.reply(ctx, ev, textAwaitingGM, nil)
		return
	}
	p, ok := d.store.Player(ev.User.ID)
	if !ok {
		d.reply(ctx, ev, textNoCharacter, nil)
		return
	}

	sheet := d.characterSheet(p)
	if photo, ok := media.Resolve(d.cfg.BaseDir, p.CharacterImageFileID, p.CharacterImageURL); ok {
		fileID, sent := d.notifier.Photo(ctx, messenger.PhotoMessage{
			ChatID:    ev.ChatID,
			Photo:     photo,
			Caption:   sheet,
			ParseMode: messenger.ParseMarkdown,
		})
		if sent {
			if !photo.Cached() && fileID != "" {
				if err := d.store.CacheCharacterImage(ctx, p.ID, fileID); err != nil {
					d.logger.Error("error caching character image", slog.Int64("player_id", int64(p.ID)), slog.String("error", err.Error()))
				}
			}
			return
		}
	}
	d.replyMarkdown(ctx, ev, sheet, nil)
}

func (d *Dispatcher) characterSheet(p *model.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 **Name:** %s\n", orDefault(p.CharacterName, "Undefined"))
	fmt.Fprintf(&b, "🛠️ **Role:** %s\n", orDefault(p.CharacterRole, "Undefined"))
	fmt.Fprintf(&b, "📝 **Bio:** %s\n", orDefault(p.CharacterBio, "No information."))
	fmt.Fprintf(&b, "🚦 **Ver:** %s\n", p.SheetVersion())

	if p.SecretMissionID == "" {
		return b.String()
	}
	sm, ok := d.store.SecretMission(p.SecretMissionID)
	if !ok {
		fmt.Fprintf(&b, "\n🔒 **Secret Mission ID:** %s (Details not found)\n", p.SecretMissionID)
		return b.String()
	}
	fmt.Fprintf(&b, "\n🔒 **Secret Mission:** %s\n", orDefault(sm.Title, "N/A"))
	if sm.Details != "" {
		fmt.Fprintf(&b, "    **Details:** %s\n", sm.Details)
	}
	return b.String()
}

func (d *Dispatcher) handleMission(ctx context.Context, ev Event) {
	if !d.policy.CanViewContent(ev.User.ID) {
		d.reply(ctx, ev, textAwaitingGM, nil)
		return
	}
	p, ok := d.store.Player(ev.User.ID)
	if !ok {
		d.reply(ctx, ev, textNoCharacter, nil)
		return
	}
	m, ok := d.store.Mission(p.CurrentMissionID)
	if p.CurrentMissionID == "" || !ok {
		d.reply(ctx, ev, textNoMission, nil)
		return
	}

	objectives := textNoObjectives
	if len(m.Objectives) > 0 {
		lines := make([]string, 0, len(m.Objectives))
		for _, o := range m.Objectives {
			lines = append(lines, "- "+o)
		}
		objectives = strings.Join(lines, "\n")
	}
	text := fmt.Sprintf("🎯 **Mission: %s**\n\n📜 **Description:**\n%s\n\n📋 **Objectives:**\n%s",
		orDefault(m.Title, "Untitled"), orDefault(m.Description, "No description."), objectives)
	d.replyMarkdown(ctx, ev, text, nil)
}

func (d *Dispatcher) handleAdminPanel(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textAdminOnly, nil)
		return
	}
	d.showAdminPanel(ctx, ev)
}

func (d *Dispatcher) handleBackToMain(ctx context.Context, ev Event) {
	d.reply(ctx, ev, textReturningToMain, mainKeyboard(d.policy.IsPrivileged(ev.User.ID)))
}

func (d *Dispatcher) handleListPlayers(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	players := d.store.Players()
	if len(players) == 0 {
		d.reply(ctx, ev, textPlayerListEmpty, nil)
		return
	}

	lines := []string{textPlayerListHeader}
	for _, p := range players {
		secret := "None"
		if p.SecretMissionID != "" {
			if sm, ok := d.store.SecretMission(p.SecretMissionID); ok && sm.Title != "" {
				secret = clip(sm.Title, 25)
			}
		}
		lines = append(lines, fmt.Sprintf("- **%s** (ID: `%s`)\n  Act: %s, Status: %s\n  SM: %s",
			p.DisplayName(), p.ID, yesNo(p.IsActive), p.GameStatus(), secret))
	}
	for _, chunk := range chunkLines(lines, maxMessageLen, chunkLen) {
		d.replyMarkdown(ctx, ev, chunk, nil)
	}
}

// chunkLines joins lines with newlines. When the result exceeds max it is
// split into pieces of at most size characters, breaking between lines.
func chunkLines(lines []string, max, size int) []string {
	full := strings.Join(lines, "\n")
	if utf8.RuneCountInString(full) <= max {
		return []string{full}
	}
	var chunks []string
	var cur strings.Builder
	curLen := 0
	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if curLen > 0 && curLen+1+n > size {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte('\n')
			curLen++
		}
		cur.WriteString(line)
		curLen += n
	}
	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func (d *Dispatcher) handleUpdateMission(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	args := ev.Args()
	if len(args) < 2 {
		d.reply(ctx, ev, textUpdateMissionUsage, nil)
		return
	}
	target, missionID := args[0], args[1]
	m, ok := d.store.Mission(missionID)
	if !ok {
		d.reply(ctx, ev, fmt.Sprintf(textMissionNotFoundFmt, missionID), nil)
		return
	}

	all := strings.EqualFold(target, "all")
	var id model.PlayerID
	if !all {
		var err error
		if id, err = model.ParsePlayerID(target); err != nil {
			d.reply(ctx, ev, textInvalidPlayerID, nil)
			return
		}
	}

	updated, err := d.store.AssignMission(ctx, missionID, all, id)
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		d.reply(ctx, ev, fmt.Sprintf(textPlayerNotFoundFmt, id), nil)
		return
	case errors.Is(err, model.ErrMissionNotFound):
		d.reply(ctx, ev, fmt.Sprintf(textMissionNotFoundFmt, missionID), nil)
		return
	case err != nil:
		d.reply(ctx, ev, textErrorSaving, nil)
		return
	}
	if len(updated) == 0 {
		d.reply(ctx, ev, textNoPlayers, nil)
		return
	}

	names := make([]string, 0, len(updated))
	for _, p := range updated {
		names = append(names, p.DisplayName())
	}
	d.reply(ctx, ev, fmt.Sprintf(textMissionSetFmt, orDefault(m.Title, missionID), strings.Join(names, ", ")), nil)
	for _, p := range updated {
		d.notify(ctx, p.ID, textNotifyMission, messenger.ParseNone)
	}
}

func (d *Dispatcher) handleUpdateCharacter(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	fields := strings.Join(store.CharacterFields, ", ")
	args := ev.Args()
	if len(args) < 3 {
		d.reply(ctx, ev, textUpdateCharUsage, nil)
		d.reply(ctx, ev, fmt.Sprintf(textUpdateCharFieldsFmt, fields), nil)
		return
	}
	id, err := model.ParsePlayerID(args[0])
	if err != nil {
		d.reply(ctx, ev, textPlayerIDNotNumber, nil)
		return
	}
	field := strings.ToLower(args[1])
	value := strings.Join(args[2:], " ")

	p, applied, err := d.store.UpdateCharacter(ctx, id, field, value)
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		d.reply(ctx, ev, fmt.Sprintf(textPlayerNotFoundFmt, id), nil)
		return
	case errors.Is(err, model.ErrInvalidField):
		d.reply(ctx, ev, fmt.Sprintf(textInvalidFieldFmt, fields), nil)
		return
	case errors.Is(err, model.ErrInvalidStatus):
		d.reply(ctx, ev, fmt.Sprintf(textInvalidStatusFmt, statusList()), nil)
		return
	case errors.Is(err, model.ErrSecretMissionNotFound):
		d.reply(ctx, ev, fmt.Sprintf(textSecretIDNotFoundFmt, value), nil)
		return
	case err != nil:
		d.reply(ctx, ev, textErrorSaving, nil)
		return
	}

	d.reply(ctx, ev, fmt.Sprintf(textFieldUpdatedFmt, field, p.DisplayName(), applied), nil)
	d.notify(ctx, id, textNotifyCharacter, messenger.ParseNone)
}

func (d *Dispatcher) handleRecipients(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	args := ev.Args()
	if len(args) == 0 {
		d.reply(ctx, ev, textRecipientsUsage, nil)
		return
	}

	action := strings.ToLower(args[0])
	switch action {
	case "add", "remove":
		if len(args) < 2 {
			d.reply(ctx, ev, fmt.Sprintf(textRecipientsUsageAddFmt, action), nil)
			return
		}
		name := strings.Join(args[1:], " ")
		if action == "add" {
			d.addRecipient(ctx, ev, name)
		} else {
			d.removeRecipient(ctx, ev, name)
		}
	case "list":
		names := d.store.Recipients()
		if len(names) == 0 {
			d.reply(ctx, ev, textRecipientsEmpty, nil)
			return
		}
		lines := make([]string, 0, len(names))
		for _, n := range names {
			lines = append(lines, "- "+n)
		}
		d.replyMarkdown(ctx, ev, textRecipientsHeader+strings.Join(lines, "\n"), nil)
	default:
		d.reply(ctx, ev, textRecipientsBadAction, nil)
	}
}

func (d *Dispatcher) addRecipient(ctx context.Context, ev Event, name string) {
	err := d.store.AddRecipient(ctx, name)
	switch {
	case errors.Is(err, model.ErrRecipientExists):
		d.reply(ctx, ev, fmt.Sprintf(textRecipientExistsFmt, name), nil)
	case err != nil:
		d.reply(ctx, ev, textErrorSaving, nil)
	default:
		d.reply(ctx, ev, fmt.Sprintf(textRecipientAddedFmt, name), nil)
	}
}

func (d *Dispatcher) removeRecipient(ctx context.Context, ev Event, name string) {
	err := d.store.RemoveRecipient(ctx, name)
	switch {
	case errors.Is(err, model.ErrRecipientNotFound):
		d.reply(ctx, ev, fmt.Sprintf(textRecipientMissingFmt, name), nil)
	case err != nil:
		d.reply(ctx, ev, textErrorSaving, nil)
	default:
		d.reply(ctx, ev, fmt.Sprintf(textRecipientRemovedFmt, name), nil)
	}
}

func statusList() string {
	names := make([]string, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
