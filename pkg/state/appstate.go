package state

import "time"

// Canonical keys for the global UI snapshot.
const (
	KeyCurrentUser          = "currentUser"
	KeyConversations        = "conversations"
	KeySelectedConversation = "selectedConversation"
	KeyTheme                = "theme"
	KeySidebarOpen          = "sidebarOpen"
)

// User identifies the signed-in user, if any.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Admin       bool   `json:"admin"`
}

// ConversationSummary is one entry in the sidebar conversation list.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppState is the typed view of the global UI snapshot consumed by the
// shell: who is signed in (nil when nobody is), the conversation list,
// which conversation is open, and the chrome toggles.
type AppState struct {
	CurrentUser          *User                 `json:"current_user"`
	Conversations        []ConversationSummary `json:"conversations"`
	SelectedConversation string                `json:"selected_conversation"`
	Theme                string                `json:"theme"`
	SidebarOpen          bool                  `json:"sidebar_open"`
}

// DefaultAppState returns the snapshot for a fresh, signed-out session.
func DefaultAppState() AppState {
	return AppState{
		Theme:       "light",
		SidebarOpen: true,
	}
}

// State converts the typed view into a raw snapshot suitable for
// seeding or merging into a Store.
func (a AppState) State() State {
	return State{
		KeyCurrentUser:          a.CurrentUser,
		KeyConversations:        a.Conversations,
		KeySelectedConversation: a.SelectedConversation,
		KeyTheme:                a.Theme,
		KeySidebarOpen:          a.SidebarOpen,
	}
}

// AppStateFrom reads the typed view out of a raw snapshot. Keys that are
// missing or hold unexpected types fall back to zero values; the store
// does not validate writes, so reads are permissive to match.
func AppStateFrom(s State) AppState {
	var a AppState
	if u, ok := s[KeyCurrentUser].(*User); ok {
		a.CurrentUser = u
	}
	if cs, ok := s[KeyConversations].([]ConversationSummary); ok {
		a.Conversations = cs
	}
	if id, ok := s[KeySelectedConversation].(string); ok {
		a.SelectedConversation = id
	}
	if th, ok := s[KeyTheme].(string); ok {
		a.Theme = th
	}
	if open, ok := s[KeySidebarOpen].(bool); ok {
		a.SidebarOpen = open
	}
	return a
}
