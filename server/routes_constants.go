package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteRoot = "/{$}"

	// Auth Routes - Session, Login & Logout
	RouteAuthSession = "/auth/session"
	RouteAuthLogin   = "/auth/login"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthCreate  = "/auth/create"

	// User Routes
	RouteUser          = "/user"
	RouteUserLists     = "/user/lists"
	RouteUserFavorites = "/user/favorites"
	RouteUserFavorite  = "/user/favorites/{type}/{reference}"
	RouteUserJoin      = "/user/join/{uri}"

	// List Routes - addressed by list id
	RouteListCreate   = "/grocery/lists/create"
	RouteListSettings = "/grocery/lists/{id}/settings"
	RouteListInvites  = "/grocery/lists/{id}/invites"

	// List Routes - addressed by access method and reference
	RouteList                 = "/grocery/lists/{method}/{reference}"
	RouteListItems            = "/grocery/lists/{method}/{reference}/items"
	RouteListItem             = "/grocery/lists/{method}/{reference}/item"
	RouteListItemByID         = "/grocery/lists/{method}/{reference}/item/{item}"
	RouteListItemChecked      = "/grocery/lists/{method}/{reference}/item/{item}/checked"
	RouteListItemUpdate       = "/grocery/lists/{method}/{reference}/item/{item}/update"
	RouteListItemAlternatives = "/grocery/lists/{method}/{reference}/item/{item}/alternatives"

	// Invite Routes
	RouteInviteAccount    = "/invites/account_creation"
	RouteInviteListCreate = "/invites/list/{list_id}"
	RouteInviteListDelete = "/invites/list/{uri}"
	RouteInvite           = "/invites/{type}/{uri}"

	// Event stream
	RouteEvents = "/api/events/{event}"

	// Fallback for paths no other route matches
	RouteNotFound = "/"
)
