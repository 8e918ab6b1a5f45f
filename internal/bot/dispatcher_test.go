package bot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventide-gm/internal/dependencies/mocks"
	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/services/access"
	"github.com/mcoot/eventide-gm/internal/services/broadcast"
	"github.com/mcoot/eventide-gm/internal/services/lore"
	"github.com/mcoot/eventide-gm/internal/services/relay"
	"github.com/mcoot/eventide-gm/internal/session"
	sessionmemory "github.com/mcoot/eventide-gm/internal/session/memory"
	"github.com/mcoot/eventide-gm/internal/storage/memory"
	"github.com/mcoot/eventide-gm/internal/store"
	"github.com/mcoot/eventide-gm/internal/testutil"
)

const (
	adminID model.PlayerID = 1000
	alice   model.PlayerID = 1
	bob     model.PlayerID = 2
	carol   model.PlayerID = 3
)

const playersDoc = `[
  {"telegram_user_id": 1, "character_name": "Alice", "character_role": "Pilot", "character_bio": "Flies.",
   "is_active": true, "status": "Active (on mission)", "secret_mission_id": "sm1", "current_mission_id": "m2"},
  {"telegram_user_id": 2, "character_name": "Bob", "character_role": "Medic", "character_bio": "Heals.",
   "is_active": true, "status": "Undefined", "current_mission_id": "default_mission"},
  {"telegram_user_id": 3, "character_name": "Carol", "character_role": "Spy", "character_bio": "Hides.",
   "is_active": false, "status": "Undefined", "current_mission_id": "default_mission"}
]`

const missionsDoc = `{
  "default_mission": {"title": "Awaiting Instructions", "description": "Wait.", "objectives": []},
  "m2": {"title": "Heist", "description": "Steal the core.", "objectives": ["Enter", "Escape"]}
}`

const secretMissionsDoc = `{
  "sm1": {"title": "Mole", "details": "Find the leak"},
  "sm2": {"title": "Saboteur"}
}`

const dispatcherLoreDoc = `{
  "introduction": "It was dark.",
  "ch1": {
    "title": "Chapter 1",
    "image_url": "https://example.com/ch1.png",
    "sections": {"s1": {"title": "Scene 1", "text": "It begins."}}
  }
}`

type DispatcherSuite struct {
	suite.Suite
	ctx      context.Context
	storage  *memory.Storage
	store    *store.Store
	sessions *sessionmemory.Store
	clock    *mocks.MockClock
	msgr     *testutil.FakeMessenger
	baseDir  string
	d        *Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.storage.Seed(memory.DocPlayers, []byte(playersDoc))
	s.storage.Seed(memory.DocMissions, []byte(missionsDoc))
	s.storage.Seed(memory.DocSecretMissions, []byte(secretMissionsDoc))
	s.storage.Seed(memory.DocRecipients, []byte(`["ELLI"]`))
	s.storage.Seed(memory.DocLore, []byte(dispatcherLoreDoc))

	s.store = store.New(s.storage, testutil.NopLogger())
	s.Require().NoError(s.store.Load(s.ctx))

	s.clock = mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	s.sessions = sessionmemory.New(s.clock, 0)
	s.msgr = testutil.NewFakeMessenger()
	s.baseDir = s.T().TempDir()

	s.d = New(
		s.store,
		access.New(adminID, s.store),
		s.sessions,
		s.msgr,
		lore.New(s.store, s.baseDir, testutil.NopLogger()),
		broadcast.New(s.msgr, 0, testutil.NopLogger()),
		Config{BaseDir: s.baseDir, WelcomeImagePath: "assets/welcome.png"},
		testutil.NopLogger(),
	)
}

func (s *DispatcherSuite) say(id model.PlayerID, text string) {
	s.d.Handle(s.ctx, Event{
		User:      User{ID: id, FirstName: "User" + id.String(), Username: "user" + id.String()},
		ChatID:    int64(id),
		Text:      text,
		MessageID: 7,
	})
}

func (s *DispatcherSuite) press(id model.PlayerID, payload string) {
	s.d.Handle(s.ctx, Event{
		User:       User{ID: id, FirstName: "User" + id.String()},
		ChatID:     int64(id),
		MessageID:  42,
		CallbackID: "cb-" + payload,
		Payload:    payload,
	})
}

func (s *DispatcherSuite) last(id model.PlayerID) messenger.Message {
	msg, ok := s.msgr.LastTo(int64(id))
	s.Require().True(ok, "no message to %d", id)
	return msg
}

func (s *DispatcherSuite) lastEdit() string {
	edits := s.msgr.EditTexts()
	s.Require().NotEmpty(edits)
	return edits[len(edits)-1]
}

func (s *DispatcherSuite) hasSession(id model.PlayerID) bool {
	_, err := s.sessions.Get(s.ctx, id)
	return err == nil
}

func (s *DispatcherSuite) player(id model.PlayerID) *model.Player {
	p, ok := s.store.Player(id)
	s.Require().True(ok)
	return p
}

func (s *DispatcherSuite) writeWelcomeImage() {
	path := filepath.Join(s.baseDir, "assets", "welcome.png")
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0o755))
	s.Require().NoError(os.WriteFile(path, []byte("png"), 0o644))
}

// Registration

func (s *DispatcherSuite) TestStartRegistersNewPlayer() {
	s.say(50, "/start")

	p := s.player(50)
	s.Equal("New Player User50", p.CharacterName)
	s.False(p.IsActive)
	s.Equal(model.DefaultMissionID, p.CurrentMissionID)

	s.Equal("New player registered: User50 (ID: 50, @user50).\nStatus: Undefined. Awaiting activation.", s.last(adminID).Text)
	// No welcome image on disk: the caption goes out as text
	s.Equal(textWelcomeCaption, s.last(50).Text)
}

func (s *DispatcherSuite) TestWelcomeImageIsUploadedOnce() {
	s.writeWelcomeImage()

	s.say(50, "/start")
	s.say(51, "/start")

	s.Require().Len(s.msgr.Photos, 2)
	s.Equal(filepath.Join(s.baseDir, "assets", "welcome.png"), s.msgr.Photos[0].Photo.Path)
	s.Equal("uploaded-1", s.msgr.Photos[1].Photo.FileID)
	s.Equal(textWelcomeCaption, s.msgr.Photos[1].Caption)
}

func (s *DispatcherSuite) TestStartGreetsReturningPlayer() {
	s.say(alice, "/start")

	msg := s.last(alice)
	s.Equal(`Hello, <a href="tg://user?id=1">User1</a>! Welcome to Eventide: Eclipse.`, msg.Text)
	s.Equal(messenger.ParseHTML, msg.ParseMode)
	s.Equal(mainKeyboard(false), msg.Keyboard)
	s.Empty(s.msgr.To(int64(adminID)))
}

// Player views

func (s *DispatcherSuite) TestInactivePlayerCannotViewContent() {
	s.say(carol, "/character")
	s.Equal(textAwaitingGM, s.last(carol).Text)

	s.say(carol, LabelLore)
	s.Equal(textAwaitingMission, s.last(carol).Text)

	s.say(99, "/mission")
	s.Equal(textAwaitingGM, s.last(99).Text)
}

func (s *DispatcherSuite) TestCharacterSheetShowsSecretMission() {
	s.say(alice, "/character")

	msg := s.last(alice)
	s.Equal(messenger.ParseMarkdown, msg.ParseMode)
	s.Equal("👤 **Name:** Alice\n🛠️ **Role:** Pilot\n📝 **Bio:** Flies.\n🚦 **Ver:** 1.0.0\n"+
		"\n🔒 **Secret Mission:** Mole\n    **Details:** Find the leak\n", msg.Text)
}

func (s *DispatcherSuite) TestCharacterImageHandleIsCached() {
	_, _, err := s.store.UpdateCharacter(s.ctx, bob, "character_image_url", "https://example.com/bob.png")
	s.Require().NoError(err)

	s.say(bob, LabelCharacter)

	s.Require().Len(s.msgr.Photos, 1)
	s.Equal("https://example.com/bob.png", s.msgr.Photos[0].Photo.URL)
	s.Equal("uploaded-1", s.player(bob).CharacterImageFileID)

	s.say(bob, LabelCharacter)
	s.Require().Len(s.msgr.Photos, 2)
	s.Equal("uploaded-1", s.msgr.Photos[1].Photo.FileID)
}

func (s *DispatcherSuite) TestCharacterFallsBackToTextWhenPhotoFails() {
	_, _, err := s.store.UpdateCharacter(s.ctx, bob, "character_image_url", "https://example.com/bob.png")
	s.Require().NoError(err)
	s.msgr.FailPhotos(true)

	s.say(bob, "/character")

	s.Contains(s.last(bob).Text, "**Name:** Bob")
	s.Empty(s.player(bob).CharacterImageFileID)
}

func (s *DispatcherSuite) TestAdminWithoutRecordHasNoCharacter() {
	s.say(adminID, "/character")
	s.Equal(textNoCharacter, s.last(adminID).Text)
}

func (s *DispatcherSuite) TestMission() {
	s.say(alice, "/mission")
	s.Equal("🎯 **Mission: Heist**\n\n📜 **Description:**\nSteal the core.\n\n📋 **Objectives:**\n- Enter\n- Escape", s.last(alice).Text)

	s.say(bob, LabelMission)
	s.Contains(s.last(bob).Text, textNoObjectives)
}

// Relay

func (s *DispatcherSuite) TestRelayToPlayer() {
	s.say(alice, LabelSendMessage)
	s.Equal(textRelayPrompt, s.last(alice).Text)
	s.Equal(recipientKeyboard([]string{"Bob", "ELLI"}), s.last(alice).Keyboard)

	s.say(alice, "Bob")
	s.Equal("Selected: Bob. Now, please enter your message.", s.last(alice).Text)
	s.Equal(messenger.RemoveKeyboard{}, s.last(alice).Keyboard)

	s.say(alice, "meet at dawn")
	s.Equal("--- Msg from Alice(ID:1,Status:Active (on mission)) to Bob ---\nMessage:\nmeet at dawn", s.last(adminID).Text)
	s.Equal("Message from **Alice**:\n\nmeet at dawn", s.last(bob).Text)
	s.Equal(relay.ReplyDelivered, s.last(alice).Text)
	s.False(s.hasSession(alice))
}

func (s *DispatcherSuite) TestRelayToNPCReachesOnlyAdmin() {
	s.say(bob, "/send_message")
	s.say(bob, "ELLI")
	s.say(bob, "status report")

	s.Contains(s.last(adminID).Text, "to ELLI")
	s.Equal(relay.ReplyDelivered, s.last(bob).Text)
	s.Empty(s.msgr.To(int64(alice)))
}

func (s *DispatcherSuite) TestRelayGatedByStatus() {
	_, err := s.store.SetStatus(s.ctx, bob, model.StatusArrested)
	s.Require().NoError(err)

	s.say(bob, "/send_message")
	s.say(bob, "Alice")
	s.say(bob, "help")

	s.Equal("ELLI ALERT: Arrested Bob(ID:2) attempted comm.\nTo:Alice\nMsg:help", s.last(adminID).Text)
	s.Equal(relay.ReplyArrested, s.last(bob).Text)
	s.Empty(s.msgr.To(int64(alice)))
}

func (s *DispatcherSuite) TestRelayAdminFailureSkipsForward() {
	s.msgr.FailChat(int64(adminID))

	s.say(alice, "/send_message")
	s.say(alice, "Bob")
	s.say(alice, "hello")

	s.Equal(relay.ReplyAdminFailed, s.last(alice).Text)
	s.Empty(s.msgr.To(int64(bob)))
}

func (s *DispatcherSuite) TestRelayForwardFailure() {
	s.msgr.FailChat(int64(bob))

	s.say(alice, "/send_message")
	s.say(alice, "Bob")
	s.say(alice, "hello")

	s.Equal(relay.ReplyForwardFailed, s.last(alice).Text)
}

func (s *DispatcherSuite) TestRelayToInactivePlayerReachesOnlyAdmin() {
	_, _, err := s.store.SetActive(s.ctx, bob, false)
	s.Require().NoError(err)

	s.say(alice, "/send_message")
	s.say(alice, "Bob")
	s.Equal("Selected: Bob. Now, please enter your message.", s.last(alice).Text)

	s.say(alice, "are you there?")
	s.Contains(s.last(adminID).Text, " to Bob ---\nMessage:\nare you there?")
	s.Equal(relay.ReplyDelivered, s.last(alice).Text)
	s.Empty(s.msgr.To(int64(bob)))
}

func (s *DispatcherSuite) TestRelayUnknownRecipientKeepsWizard() {
	s.say(alice, "/send_message")
	s.say(alice, "Mallory")

	s.Equal(textRelayUnknown, s.last(alice).Text)
	s.True(s.hasSession(alice))
}

func (s *DispatcherSuite) TestRelayBackCancels() {
	s.say(alice, "/send_message")
	s.say(alice, "Bob")
	s.say(alice, "BACK")

	s.Equal(textRelayCancelled, s.last(alice).Text)
	s.Equal(mainKeyboard(false), s.last(alice).Keyboard)
	s.False(s.hasSession(alice))
	s.Empty(s.msgr.To(int64(adminID)))
}

func (s *DispatcherSuite) TestRelayNobodyAvailable() {
	s.Require().NoError(s.store.RemoveRecipient(s.ctx, "ELLI"))
	_, _, err := s.store.SetActive(s.ctx, bob, false)
	s.Require().NoError(err)

	s.say(alice, "/send_message")

	s.Equal([]string{textRelayNobody, textRelayReturning}, s.msgr.Texts(int64(alice)))
	s.False(s.hasSession(alice))
}

func (s *DispatcherSuite) TestIdleSessionExpiresSilently() {
	s.say(alice, "/send_message")
	s.msgr.Reset()

	s.clock.Advance(301 * time.Second)
	s.say(alice, "Bob")

	s.Empty(s.msgr.Messages)
	s.False(s.hasSession(alice))
}

func (s *DispatcherSuite) TestLoreCallbackDuringRelayKeepsWizard() {
	s.say(alice, "/send_message")
	s.press(alice, "lore_introduction")

	s.Equal("It was dark.", s.last(alice).Text)
	s.True(s.hasSession(alice))

	s.say(alice, "Bob")
	s.Equal("Selected: Bob. Now, please enter your message.", s.last(alice).Text)
}

// Cancellation and routing

func (s *DispatcherSuite) TestCancelWithoutSessionIsIgnored() {
	s.say(alice, "/cancel")
	s.Empty(s.msgr.Messages)
}

func (s *DispatcherSuite) TestCancelAdminWizardShowsPanel() {
	s.say(adminID, "/admin_set_player_status")
	s.say(adminID, "/cancel")

	texts := s.msgr.Texts(int64(adminID))
	s.Equal([]string{textStatusPrompt, textStatusCancelled, textAdminPanel}, texts)
	s.False(s.hasSession(adminID))
}

func (s *DispatcherSuite) TestEntryTriggerReplacesSession() {
	s.say(adminID, LabelBroadcast)
	s.say(adminID, LabelDirectMessage)

	sess, err := s.sessions.Get(s.ctx, adminID)
	s.Require().NoError(err)
	s.Equal(session.FlowDirectMessage, sess.Flow)
}

func (s *DispatcherSuite) TestStatelessCommandKeepsSession() {
	s.say(adminID, LabelBroadcast)
	s.say(adminID, LabelListPlayers)

	s.True(s.hasSession(adminID))
}

func (s *DispatcherSuite) TestWrongInputKindIsIgnored() {
	s.say(adminID, "/admin_set_player_status")
	s.msgr.Reset()

	s.say(adminID, "Bob")
	s.Empty(s.msgr.Messages)
	s.True(s.hasSession(adminID))
}

func (s *DispatcherSuite) TestStaleButtonIsOnlyAcknowledged() {
	s.press(adminID, "activate_3")

	s.Len(s.msgr.Answers, 1)
	s.Empty(s.msgr.Edits)
	s.False(s.player(carol).IsActive)
}

func (s *DispatcherSuite) TestNonAdminIsRejected() {
	for _, cmd := range []string{"/admin_activate_player", "/admin_broadcast", "/admin_list_players", "/admin_recipients list"} {
		s.say(alice, cmd)
		s.Equal(textNoPermission, s.last(alice).Text, cmd)
	}
	s.say(alice, LabelAdminPanel)
	s.Equal(textAdminOnly, s.last(alice).Text)
	s.False(s.hasSession(alice))
}

func (s *DispatcherSuite) TestAdminPanelAndBack() {
	s.say(adminID, LabelAdminPanel)
	s.Equal(adminKeyboard(), s.last(adminID).Keyboard)

	s.say(adminID, LabelBackToMain)
	s.Equal(textReturningToMain, s.last(adminID).Text)
	s.Equal(mainKeyboard(true), s.last(adminID).Keyboard)
}

// Activation

func (s *DispatcherSuite) TestActivatePlayer() {
	s.say(adminID, LabelActivate)
	prompt := s.last(adminID)
	s.Equal("Select player to activate:", prompt.Text)
	kb := prompt.Keyboard.(messenger.InlineKeyboard)
	s.Len(kb, 4)
	s.Equal(messenger.Button{Label: "Carol (ID: 3) - Inactive", Payload: "activate_3"}, kb[2][0])
	s.Equal(messenger.Button{Label: labelCancelAction, Payload: "activate_cancel"}, kb[3][0])

	s.press(adminID, "activate_3")

	s.Equal("Player Carol activated.", s.lastEdit())
	s.Equal(textNotifyActivated, s.last(carol).Text)
	s.Equal(textAdminPanel, s.last(adminID).Text)
	s.True(s.player(carol).IsActive)
	s.False(s.hasSession(adminID))
}

func (s *DispatcherSuite) TestDeactivateAlreadyInactive() {
	saves := s.storage.SaveCount(memory.DocPlayers)
	s.say(adminID, "/admin_deactivate_player")
	s.press(adminID, "deactivate_3")

	s.Equal("Player Carol already inactive.", s.lastEdit())
	s.Empty(s.msgr.To(int64(carol)))
	s.Equal(saves, s.storage.SaveCount(memory.DocPlayers))
}

func (s *DispatcherSuite) TestActivationCancelButton() {
	s.say(adminID, LabelActivate)
	s.press(adminID, "activate_cancel")

	s.Equal(textActionCancelled, s.lastEdit())
	s.Equal(textAdminPanel, s.last(adminID).Text)
	s.False(s.hasSession(adminID))
}

func (s *DispatcherSuite) TestActivationSaveFailure() {
	s.storage.FailSaves(memory.DocPlayers, true)
	s.say(adminID, LabelActivate)
	s.press(adminID, "activate_3")

	s.Equal(textErrorSaving, s.lastEdit())
	s.False(s.player(carol).IsActive)
	s.Empty(s.msgr.To(int64(carol)))
}

func (s *DispatcherSuite) TestActivationIgnoresOtherActionPayload() {
	s.say(adminID, LabelActivate)
	s.press(adminID, "deactivate_1")

	s.True(s.hasSession(adminID))
	s.Empty(s.msgr.Edits)
}

// Status

func (s *DispatcherSuite) TestSetStatus() {
	s.say(adminID, LabelSetStatus)
	s.press(adminID, "setstatus_2")
	s.Equal("Player: Bob. Current status: Undefined.\nSelect new status:", s.lastEdit())
	s.Equal(statusKeyboard(bob), s.msgr.Edits[len(s.msgr.Edits)-1].Keyboard)

	s.press(adminID, "setstatus_2_active_on_mission")

	s.Equal("Status for Bob (ID: 2) set to: Active (on mission).", s.lastEdit())
	s.Equal(model.StatusOnMission, s.player(bob).Status)
	msg := s.last(bob)
	s.Equal("A Game Master has updated your status to: **Active (on mission)**.", msg.Text)
	s.Equal(messenger.ParseMarkdown, msg.ParseMode)
	s.False(s.hasSession(adminID))
}

func (s *DispatcherSuite) TestSetStatusRejectsUnknownToken() {
	s.say(adminID, LabelSetStatus)
	s.press(adminID, "setstatus_2")
	s.press(adminID, "setstatus_2_zombie")

	s.Equal(textStatusInvalid, s.lastEdit())
	s.True(s.hasSession(adminID))
	s.Equal(model.StatusUndefined, s.player(bob).Status)
}

func (s *DispatcherSuite) TestSetStatusCancelFromStatusList() {
	s.say(adminID, LabelSetStatus)
	s.press(adminID, "setstatus_2")
	s.press(adminID, "setstatus_2_cancel")

	s.Equal(textStatusCancelled, s.lastEdit())
	s.False(s.hasSession(adminID))
}

// Secret missions

func (s *DispatcherSuite) TestSetSecretMission() {
	s.say(adminID, LabelSecretMission)
	s.press(adminID, "secretmission_2")
	s.Equal("Player: Bob. Current secret mission: None.\nSelect new secret mission:", s.lastEdit())

	s.press(adminID, "secretmission_set_2_sm2")

	s.Equal("Secret mission 'Saboteur' set for Bob.", s.lastEdit())
	s.Equal("sm2", s.player(bob).SecretMissionID)
	s.Equal("You have a new secret mission: **Saboteur**. Check `/character` for details.", s.last(bob).Text)
}

func (s *DispatcherSuite) TestClearSecretMission() {
	s.say(adminID, LabelSecretMission)
	s.press(adminID, "secretmission_1")
	s.Equal("Player: Alice. Current secret mission: Mole.\nSelect new secret mission:", s.lastEdit())

	s.press(adminID, "secretmission_set_1_clear")

	s.Equal("Secret mission cleared for Alice.", s.lastEdit())
	s.Empty(s.player(alice).SecretMissionID)
	s.Equal(textNotifySecretClear, s.last(alice).Text)
}

func (s *DispatcherSuite) TestSecretMissionSelectionAnnotatesCurrent() {
	s.say(adminID, LabelSecretMission)
	kb := s.last(adminID).Keyboard.(messenger.InlineKeyboard)
	s.Equal("Alice (ID: 1) (SM: Mole...)", kb[0][0].Label)
	s.Equal("Bob (ID: 2)", kb[1][0].Label)
}

func (s *DispatcherSuite) TestSecretMissionUnknownIDRePrompts() {
	s.say(adminID, LabelSecretMission)
	s.press(adminID, "secretmission_2")
	s.press(adminID, "secretmission_set_2_sm9")

	s.Equal("Invalid secret mission ID: sm9. Please try again.", s.lastEdit())
	s.Equal(textSecretChooseAgain, s.last(adminID).Text)
	s.True(s.hasSession(adminID))
}

// Broadcast

func (s *DispatcherSuite) TestBroadcastToActivePlayers() {
	s.say(adminID, LabelBroadcast)
	s.Equal(textBroadcastTarget, s.last(adminID).Text)

	s.press(adminID, "broadcast_target_active")
	s.Equal(textBroadcastSender, s.lastEdit())

	s.say(adminID, "Default")
	s.Equal(textBroadcastBody, s.last(adminID).Text)

	s.say(adminID, "Storm incoming")
	preview := s.last(adminID)
	s.Equal("--PREVIEW--\nFrom: Game Master\nTo: Active Players\n\nStorm incoming\n\nConfirm send?", preview.Text)
	s.Equal(confirmKeyboard(payloadBroadcastYes, payloadBroadcastNo), preview.Keyboard)

	s.press(adminID, payloadBroadcastYes)

	want := "📢 **Game Master:**\n\nStorm incoming"
	s.Equal(want, s.last(alice).Text)
	s.Equal(want, s.last(bob).Text)
	s.Empty(s.msgr.To(int64(carol)))
	s.Equal("Broadcast sent to 2 players.", s.lastEdit())
	s.Equal(textAdminPanel, s.last(adminID).Text)
	s.False(s.hasSession(adminID))
}

func (s *DispatcherSuite) TestBroadcastCountsOnlyDelivered() {
	s.msgr.FailChat(int64(bob))
	s.say(adminID, LabelBroadcast)
	s.press(adminID, "broadcast_target_all")
	s.say(adminID, "HQ")
	s.say(adminID, "Hold")
	s.press(adminID, payloadBroadcastYes)

	s.Equal("Broadcast sent to 2 players.", s.lastEdit())
	s.Equal("📢 **HQ:**\n\nHold", s.last(carol).Text)
}

func (s *DispatcherSuite) TestBroadcastDeclined() {
	s.say(adminID, LabelBroadcast)
	s.press(adminID, "broadcast_target_inactive")
	s.say(adminID, "HQ")
	s.say(adminID, "Hold")
	s.press(adminID, payloadBroadcastNo)

	s.Equal(textBroadcastCancelled, s.lastEdit())
	s.Empty(s.msgr.To(int64(carol)))
}

func (s *DispatcherSuite) TestBroadcastCancelButton() {
	s.say(adminID, LabelBroadcast)
	s.press(adminID, payloadBroadcastCancel)

	s.Equal(textBroadcastCancelled, s.lastEdit())
	s.False(s.hasSession(adminID))
}

// Direct messages

func (s *DispatcherSuite) TestDirectMessage() {
	s.say(adminID, LabelDirectMessage)
	s.press(adminID, "dmselect_3")
	s.Equal("To: Carol.\nEnter sender name (or 'default' for Game Master):", s.lastEdit())

	s.say(adminID, "Handler")
	s.say(adminID, "You are being watched.")
	s.Equal("--PREVIEW DM--\nTo: Carol\nFrom: Handler\n\nYou are being watched.\n\nConfirm?", s.last(adminID).Text)

	s.press(adminID, payloadDMYes)

	s.Equal("✉️ **Handler:**\n\nYou are being watched.", s.last(carol).Text)
	s.Equal("DM sent to player ID 3.", s.lastEdit())
	s.False(s.hasSession(adminID))
}

func (s *DispatcherSuite) TestDirectMessageFailure() {
	s.msgr.FailChat(int64(bob))
	s.say(adminID, LabelDirectMessage)
	s.press(adminID, "dmselect_2")
	s.say(adminID, "default")
	s.say(adminID, "ping")
	s.press(adminID, payloadDMYes)

	s.True(strings.HasPrefix(s.lastEdit(), "Error sending DM: "))
	s.Equal(textAdminPanel, s.last(adminID).Text)
}

// Stateless admin commands

func (s *DispatcherSuite) TestListPlayers() {
	s.say(adminID, "/admin_list_players")

	msg := s.last(adminID)
	s.Equal(messenger.ParseMarkdown, msg.ParseMode)
	s.True(strings.HasPrefix(msg.Text, textPlayerListHeader))
	s.Contains(msg.Text, "- **Alice** (ID: `1`)\n  Act: Yes, Status: Active (on mission)\n  SM: Mole")
	s.Contains(msg.Text, "- **Carol** (ID: `3`)\n  Act: No, Status: Undefined\n  SM: None")
}

func (s *DispatcherSuite) TestChunkLines() {
	lines := []string{"aaaa", "bbbb", "cccc"}
	s.Equal([]string{"aaaa\nbbbb\ncccc"}, chunkLines(lines, 20, 10))
	s.Equal([]string{"aaaa\nbbbb", "cccc"}, chunkLines(lines, 10, 9))
}

func (s *DispatcherSuite) TestUpdateMissionForAll() {
	s.say(adminID, "/admin_update_mission all m2")

	s.Equal("Mission 'Heist' set for: Alice, Bob, Carol.", s.last(adminID).Text)
	for _, id := range []model.PlayerID{alice, bob, carol} {
		s.Equal("m2", s.player(id).CurrentMissionID)
		s.Equal(textNotifyMission, s.last(id).Text)
	}
}

func (s *DispatcherSuite) TestUpdateMissionErrors() {
	s.say(adminID, "/admin_update_mission 2")
	s.Equal(textUpdateMissionUsage, s.last(adminID).Text)

	s.say(adminID, "/admin_update_mission 2 nope")
	s.Equal("Error: Mission 'nope' not found.", s.last(adminID).Text)

	s.say(adminID, "/admin_update_mission bob m2")
	s.Equal(textInvalidPlayerID, s.last(adminID).Text)

	s.say(adminID, "/admin_update_mission 77 m2")
	s.Equal("Player ID 77 not found.", s.last(adminID).Text)

	s.say(adminID, LabelUpdateMission)
	s.Equal(textUpdateMissionUsage, s.last(adminID).Text)
}

func (s *DispatcherSuite) TestUpdateCharacter() {
	s.say(adminID, "/admin_update_character 2 character_bio Field medic, retired")

	s.Equal("Field 'character_bio' for Bob updated to: 'Field medic, retired'.", s.last(adminID).Text)
	s.Equal("Field medic, retired", s.player(bob).CharacterBio)
	s.Equal(textNotifyCharacter, s.last(bob).Text)
}

func (s *DispatcherSuite) TestUpdateCharacterErrors() {
	s.say(adminID, "/admin_update_character 2 bio")
	s.Equal([]string{textUpdateCharUsage, "Fields: " + strings.Join(store.CharacterFields, ", ")}, s.msgr.Texts(int64(adminID)))

	s.say(adminID, "/admin_update_character x status Dead")
	s.Equal(textPlayerIDNotNumber, s.last(adminID).Text)

	s.say(adminID, "/admin_update_character 2 telegram_user_id 5")
	s.Equal("Invalid field. Valid: "+strings.Join(store.CharacterFields, ", "), s.last(adminID).Text)

	s.say(adminID, "/admin_update_character 2 status Zombie")
	s.Equal("Invalid status. Valid: "+statusList(), s.last(adminID).Text)

	s.say(adminID, "/admin_update_character 2 secret_mission_id sm9")
	s.Equal("Error: Secret Mission ID 'sm9' not found. Use 'clear' to remove.", s.last(adminID).Text)

	s.say(adminID, "/admin_update_character 77 status Dead")
	s.Equal("Player ID 77 not found.", s.last(adminID).Text)

	s.Empty(s.msgr.To(int64(bob)))
}

func (s *DispatcherSuite) TestRecipients() {
	s.say(adminID, "/admin_recipients add Mother Superior")
	s.Equal("Recipient 'Mother Superior' added.", s.last(adminID).Text)

	s.say(adminID, "/admin_recipients add ELLI")
	s.Equal("Recipient 'ELLI' already exists.", s.last(adminID).Text)

	s.say(adminID, "/admin_recipients list")
	s.Equal("**Message Recipients (NPCs):**\n- ELLI\n- Mother Superior", s.last(adminID).Text)

	s.say(adminID, "/admin_recipients remove ELLI")
	s.Equal("Recipient 'ELLI' removed.", s.last(adminID).Text)

	s.say(adminID, "/admin_recipients remove ELLI")
	s.Equal("Recipient 'ELLI' not found.", s.last(adminID).Text)

	s.say(adminID, "/admin_recipients add")
	s.Equal("Usage: add <name>", s.last(adminID).Text)

	s.say(adminID, "/admin_recipients purge")
	s.Equal(textRecipientsBadAction, s.last(adminID).Text)

	s.Equal([]string{"Mother Superior"}, s.store.Recipients())
}

// Lore

func (s *DispatcherSuite) TestLoreMenu() {
	s.say(alice, "/lore")

	msg := s.last(alice)
	s.Equal(lore.MenuPrompt, msg.Text)
	s.Equal(messenger.InlineKeyboard{
		{{Label: lore.IntroductionLabel, Payload: "lore_introduction"}},
		{{Label: "Chapter 1", Payload: "lore_ch1"}},
	}, msg.Keyboard)
}

func (s *DispatcherSuite) TestLoreSectionSendsImageAndCachesHandle() {
	s.press(alice, "lore_ch1")

	s.Equal([]testutil.Delete{{ChatID: int64(alice), MessageID: 42}}, s.msgr.Deletes)
	s.Require().Len(s.msgr.Photos, 1)
	s.Equal("https://example.com/ch1.png", s.msgr.Photos[0].Photo.URL)

	msg := s.last(alice)
	s.Equal("Chapter 1", msg.Text)
	s.Equal(messenger.ParseHTML, msg.ParseMode)
	s.Contains(string(s.storage.Raw(memory.DocLore)), `"image_file_id":"uploaded-1"`)

	s.press(alice, "lore_ch1")
	s.Equal("uploaded-1", s.msgr.Photos[1].Photo.FileID)
}

func (s *DispatcherSuite) TestLoreBadPathEditsError() {
	s.press(alice, "lore_ch9")

	s.Equal(lore.NavigationErrText, s.lastEdit())
	s.Empty(s.msgr.Deletes)
}

func (s *DispatcherSuite) TestLoreCallbackGatedWithAlert() {
	s.press(carol, "lore_ch1")

	s.Equal([]testutil.CallbackAnswer{{ID: "cb-lore_ch1", Text: textAwaitingShort, Alert: true}}, s.msgr.Answers)
	s.Empty(s.msgr.Messages)
}

func (s *DispatcherSuite) TestLoreMainMenuCallbackEditsInPlace() {
	s.press(alice, lore.MainMenuPayload)

	s.Require().Len(s.msgr.Edits, 1)
	s.Equal(lore.MenuPrompt, s.msgr.Edits[0].Text)
	s.Equal(42, s.msgr.Edits[0].MessageID)
}
