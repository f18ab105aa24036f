package domain

// EventKind — закрытое перечисление видов служебных сообщений.
type EventKind string

const (
	EventEncryptionNotice     EventKind = "encryption_notice"
	EventGroupCreated         EventKind = "group_created"
	EventMemberAdded          EventKind = "member_added"
	EventMemberRemoved        EventKind = "member_removed"
	EventMemberLeft           EventKind = "member_left"
	EventMemberJoinedViaLink  EventKind = "member_joined_via_link"
	EventSubjectChanged       EventKind = "subject_changed"
	EventDescriptionChanged   EventKind = "description_changed"
	EventIconChanged          EventKind = "icon_changed"
	EventIconDeleted          EventKind = "icon_deleted"
	EventNumberChanged        EventKind = "number_changed"
	EventSecurityCodeChanged  EventKind = "security_code_changed"
	EventSettingsChanged      EventKind = "settings_changed"
	EventAdminChanged         EventKind = "admin_changed"
	EventCallStarted          EventKind = "call_started"
	EventDisappearingMessages EventKind = "disappearing_messages"
	EventContactBlocked       EventKind = "contact_blocked"
	EventMessageDeleted       EventKind = "message_deleted"
	// EventSelfDeletingMedia выставляется структурно: "Имя:" без текста сообщения.
	EventSelfDeletingMedia EventKind = "self_deleting_media"
)

// EventKinds перечисляет все виды служебных сообщений.
var EventKinds = []EventKind{
	EventEncryptionNotice,
	EventGroupCreated,
	EventMemberAdded,
	EventMemberRemoved,
	EventMemberLeft,
	EventMemberJoinedViaLink,
	EventSubjectChanged,
	EventDescriptionChanged,
	EventIconChanged,
	EventIconDeleted,
	EventNumberChanged,
	EventSecurityCodeChanged,
	EventSettingsChanged,
	EventAdminChanged,
	EventCallStarted,
	EventDisappearingMessages,
	EventContactBlocked,
	EventMessageDeleted,
	EventSelfDeletingMedia,
}

// Valid сообщает, входит ли значение в перечисление.
func (k EventKind) Valid() bool {
	for _, known := range EventKinds {
		if k == known {
			return true
		}
	}
	return false
}
