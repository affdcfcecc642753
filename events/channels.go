package events

import "strings"

const listPrefix = "list."

// ChannelKind identifies which list channel an event was published on.
type ChannelKind string

const (
	KindItems    ChannelKind = "items"
	KindSettings ChannelKind = "settings"
	KindDelete   ChannelKind = "delete"
)

// Item mutation actions carried in list channel payloads.
const (
	ActionAddItem     = "addItem"
	ActionCheckItem   = "checkItem"
	ActionUncheckItem = "uncheckItem"
	ActionUpdateItem  = "updateItem"
	ActionDeleteItem  = "deleteItem"
)

// ItemAction is the payload published on a list's item channel.
type ItemAction struct {
	Action string `json:"action"`
}

func ListChannel(listID string) string {
	return listPrefix + listID
}

func ListSettingsChannel(listID string) string {
	return listPrefix + listID + "." + string(KindSettings)
}

func ListDeleteChannel(listID string) string {
	return listPrefix + listID + "." + string(KindDelete)
}

// ParseChannel splits a list channel name into its list id and kind.
func ParseChannel(channel string) (listID string, kind ChannelKind, ok bool) {
	rest, found := strings.CutPrefix(channel, listPrefix)
	if !found || rest == "" {
		return "", "", false
	}

	id, suffix, hasSuffix := strings.Cut(rest, ".")
	if id == "" {
		return "", "", false
	}
	if !hasSuffix {
		return id, KindItems, true
	}

	switch ChannelKind(suffix) {
	case KindSettings, KindDelete:
		return id, ChannelKind(suffix), true
	}
	return "", "", false
}
