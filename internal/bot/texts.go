package bot

// Reply keyboard labels
const (
	LabelLore          = "📚 Lore"
	LabelCharacter     = "👤 My character"
	LabelMission       = "🎯 My mission"
	LabelSendMessage   = "✉️ Send a message"
	LabelAdminPanel    = "⚙️ Admin Panel"
	LabelBackToMain    = "⬅️ Back to Main Menu"
	LabelRelayBack     = "Back"
	LabelListPlayers   = "List Players"
	LabelActivate      = "Activate Player"
	LabelDeactivate    = "Deactivate Player"
	LabelSetStatus     = "Set Player Status"
	LabelSecretMission = "Set Secret Mission"
	LabelBroadcast     = "Broadcast Message"
	LabelDirectMessage = "Send Direct Message"
	LabelUpdateMission = "Update Mission"
	LabelUpdateChar    = "Update Character"
	LabelRecipients    = "Manage Recipients"
)

// Access and menus
const (
	textNoPermission      = "No permission."
	textAdminOnly         = "This command is for administrators only."
	textAwaitingGM        = "Your account is awaiting activation by the Game Master."
	textAwaitingMission   = "Your account is awaiting activation for the mission."
	textAwaitingShort     = "Your account is awaiting activation."
	textAdminPanel        = "Admin Panel:"
	textReturningToMain   = "Returning to main menu..."
	textNoPlayers         = "No players found."
	textInvalidSelection  = "Invalid selection."
	textErrorSaving       = "Error saving data."
	textPlayerNotFoundFmt = "Player ID %s not found."
)

// Registration and player views
const (
	textAdminNewPlayerFmt = "New player registered: %s (ID: %s, @%s).\nStatus: %s. Awaiting activation."
	textWelcomeCaption    = "Welcome! Your account is created and awaits activation."
	textWelcomeBackFmt    = "Hello, %s! Welcome to Eventide: Eclipse."
	textNoCharacter       = "Your character information not found. Try /start to register."
	textNoMission         = "Your current mission is not found or not defined."
	textNoObjectives      = "Objectives are not defined."
)

// Relay wizard
const (
	textRelayPrompt      = "Who do you want to send a message to? Choose from the list or select 'Back'."
	textRelayNobody      = "There is no one available to send a message to."
	textRelayReturning   = "Returning to main menu."
	textRelayCancelled   = "Message sending cancelled."
	textRelayUnknown     = "Recipient not found. Please choose from the provided list or select 'Back'."
	textRelaySelectedFmt = "Selected: %s. Now, please enter your message."
)

// Activation wizard
const (
	textActivationPromptFmt = "Select player to %s:"
	textActivatedFmt        = "Player %s activated."
	textAlreadyActiveFmt    = "Player %s already active."
	textDeactivatedFmt      = "Player %s deactivated."
	textAlreadyInactiveFmt  = "Player %s already inactive."
	textNotifyActivated     = "You have been activated for the mission. Godspeed!"
	textNotifyDeactivated   = "Your account has been deactivated by the Game Master."
	textActionCancelled     = "Action cancelled."
)

// Status wizard
const (
	textStatusPrompt        = "Select player to set status:"
	textStatusChooseFmt     = "Player: %s. Current status: %s.\nSelect new status:"
	textStatusSetFmt        = "Status for %s (ID: %s) set to: %s."
	textStatusInvalid       = "Invalid status selected. Please try again."
	textStatusCancelled     = "Set status cancelled."
	textStatusSaveError     = "Error saving status."
	textNotifyStatusFmt     = "A Game Master has updated your status to: **%s**."
	labelCancelStatusChange = "Cancel Status Change"
)

// Secret mission wizard
const (
	textSecretPrompt       = "Select player for secret mission:"
	textSecretChooseFmt    = "Player: %s. Current secret mission: %s.\nSelect new secret mission:"
	textSecretChooseAgain  = "Select new secret mission:"
	textSecretClearedFmt   = "Secret mission cleared for %s."
	textSecretSetFmt       = "Secret mission '%s' set for %s."
	textSecretInvalidFmt   = "Invalid secret mission ID: %s. Please try again."
	textSecretCancelled    = "Set secret mission cancelled."
	textSecretNoneDefined  = "No secret missions defined. Action cancelled."
	textNotifySecretClear  = "Your secret mission has been cleared by the Game Master."
	textNotifySecretSetFmt = "You have a new secret mission: **%s**. Check `/character` for details."
	labelSecretNone        = "No secret missions defined."
	labelSecretClear       = "--- Clear Secret Mission for Player ---"
	labelSecretCancel      = "Cancel"
)

// Broadcast wizard
const (
	textBroadcastTarget     = "Choose broadcast target:"
	textBroadcastSender     = "Enter sender name (or 'default' for Game Master):"
	textBroadcastBody       = "Enter broadcast message text:"
	textBroadcastPreviewFmt = "--PREVIEW--\nFrom: %s\nTo: %s Players\n\n%s\n\nConfirm send?"
	textBroadcastSentFmt    = "Broadcast sent to %d players."
	textBroadcastCancelled  = "Broadcast cancelled."
	labelBroadcastAll       = "All Players"
	labelBroadcastActive    = "Active Players Only"
	labelBroadcastInactive  = "Inactive Players Only"
	labelBroadcastCancel    = "Cancel Broadcast"
)

// Direct message wizard
const (
	textDMPrompt     = "Select player for direct message:"
	textDMSenderFmt  = "To: %s.\nEnter sender name (or 'default' for Game Master):"
	textDMBody       = "Enter message text:"
	textDMPreviewFmt = "--PREVIEW DM--\nTo: %s\nFrom: %s\n\n%s\n\nConfirm?"
	textDMFormatFmt  = "✉️ **%s:**\n\n%s"
	textDMSentFmt    = "DM sent to player ID %s."
	textDMErrorFmt   = "Error sending DM: %s"
	textDMCancelled  = "DM cancelled."
)

// Shared buttons
const (
	labelCancelAction = "Cancel Action"
	labelConfirmYes   = "Yes, proceed"
	labelConfirmNo    = "No, cancel"
)

// Stateless admin commands
const (
	textPlayerListHeader      = "**Player List:**\n"
	textPlayerListEmpty       = "Player list empty."
	textUpdateMissionUsage    = "Usage: /admin_update_mission <player_ID|all> <mission_ID>"
	textMissionNotFoundFmt    = "Error: Mission '%s' not found."
	textInvalidPlayerID       = "Invalid Player ID."
	textMissionSetFmt         = "Mission '%s' set for: %s."
	textNotifyMission         = "❗ Your mission has been updated! Check /mission."
	textUpdateCharUsage       = "Usage: /admin_update_character <player_ID> <field> <value>"
	textUpdateCharFieldsFmt   = "Fields: %s"
	textPlayerIDNotNumber     = "Player ID must be a number."
	textInvalidFieldFmt       = "Invalid field. Valid: %s"
	textInvalidStatusFmt      = "Invalid status. Valid: %s"
	textSecretIDNotFoundFmt   = "Error: Secret Mission ID '%s' not found. Use 'clear' to remove."
	textFieldUpdatedFmt       = "Field '%s' for %s updated to: '%s'."
	textNotifyCharacter       = "❗ Your character info has been updated by a Game Master! Check `/character`."
	textRecipientsUsage       = "Usage: /admin_recipients [add|remove|list] [name]"
	textRecipientsUsageAddFmt = "Usage: %s <name>"
	textRecipientAddedFmt     = "Recipient '%s' added."
	textRecipientExistsFmt    = "Recipient '%s' already exists."
	textRecipientRemovedFmt   = "Recipient '%s' removed."
	textRecipientMissingFmt   = "Recipient '%s' not found."
	textRecipientsHeader      = "**Message Recipients (NPCs):**\n"
	textRecipientsEmpty       = "List is empty."
	textRecipientsBadAction   = "Invalid action. Use 'add', 'remove', or 'list'."
)
