package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteRoot, ChainMiddleware(s.RootHandler(), s.APIMiddleware()...))

	// Session endpoints
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.SessionGuard())...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.SessionGuard())...))
	s.RegisterRouteHandler("POST "+RouteAuthCreate, ChainMiddleware(s.CreateAccountHandler(), s.APIMiddleware(s.SessionGuard())...))

	// User endpoints
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.UserHandler(), s.APIMiddleware(s.LoggedInGuard())...))
	s.RegisterRouteHandler("GET "+RouteUserLists, ChainMiddleware(s.UserListsHandler(), s.APIMiddleware(s.LoggedInGuard())...))
	s.RegisterRouteHandler("GET "+RouteUserFavorites, ChainMiddleware(s.FavoritesHandler(), s.APIMiddleware(s.LoggedInGuard())...))
	s.RegisterRouteHandler("POST "+RouteUserFavorite, ChainMiddleware(s.ToggleFavoriteHandler(), s.APIMiddleware(s.LoggedInGuard())...))
	s.RegisterRouteHandler("POST "+RouteUserJoin, ChainMiddleware(s.JoinHandler(), s.APIMiddleware(s.LoggedInGuard())...))

	// Owner endpoints
	s.RegisterRouteHandler("POST "+RouteListCreate, ChainMiddleware(s.CreateListHandler(), s.APIMiddleware(s.LoggedInGuard())...))
	s.RegisterRouteHandler("POST "+RouteListSettings, ChainMiddleware(s.ListSettingsHandler(), s.APIMiddleware(s.LoggedInGuard())...))
	s.RegisterRouteHandler("GET "+RouteListInvites, ChainMiddleware(s.ListInvitesHandler(), s.APIMiddleware(s.LoggedInGuard())...))

	// List access endpoints
	s.RegisterRouteHandler("GET "+RouteList, ChainMiddleware(s.GetListHandler(), s.APIMiddleware(s.ListAccessGuard()...)...))
	s.RegisterRouteHandler("DELETE "+RouteList, ChainMiddleware(s.DeleteListHandler(), s.APIMiddleware(s.ListAccessGuard()...)...))
	s.RegisterRouteHandler("GET "+RouteListItems, ChainMiddleware(s.ItemsHandler(), s.APIMiddleware(s.ListAccessGuard()...)...))
	s.RegisterRouteHandler("POST "+RouteListItem, ChainMiddleware(s.AddItemHandler(), s.APIMiddleware(s.ListAccessGuard()...)...))
	s.RegisterRouteHandler("DELETE "+RouteListItemByID, ChainMiddleware(s.DeleteItemHandler(), s.APIMiddleware(s.ListAccessGuard()...)...))
	s.RegisterRouteHandler("POST "+RouteListItemChecked, ChainMiddleware(s.CheckItemHandler(true), s.APIMiddleware(s.ListAccessGuard()...)...))
	s.RegisterRouteHandler("DELETE "+RouteListItemChecked, ChainMiddleware(s.CheckItemHandler(false), s.APIMiddleware(s.ListAccessGuard()...)...))
	s.RegisterRouteHandler("POST "+RouteListItemUpdate, ChainMiddleware(s.UpdateItemHandler(), s.APIMiddleware(s.ListAccessGuard()...)...))
	s.RegisterRouteHandler("GET "+RouteListItemAlternatives, ChainMiddleware(s.AlternativesHandler(), s.APIMiddleware(s.ListAccessGuard()...)...))

	// Invite endpoints
	s.RegisterRouteHandler("POST "+RouteInviteAccount, ChainMiddleware(s.CreateAccountInviteHandler(), s.APIMiddleware(s.AdminGuard())...))
	s.RegisterRouteHandler("POST "+RouteInviteListCreate, ChainMiddleware(s.CreateListInviteHandler(), s.APIMiddleware(s.LoggedInGuard())...))
	s.RegisterRouteHandler("DELETE "+RouteInviteListDelete, ChainMiddleware(s.DeleteListInviteHandler(), s.APIMiddleware(s.LoggedInGuard())...))
	s.RegisterRouteHandler("GET "+RouteInvite, ChainMiddleware(s.RedeemInviteHandler(), s.APIMiddleware(s.LoggedInGuard())...))

	s.RegisterRouteHandler("GET "+RouteEvents, ChainMiddleware(s.EventsHandler(), s.APIMiddleware(s.ObserverGuard())...))

	s.RegisterRouteFunc(RouteNotFound, ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
	s.preflight = ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...)
}

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}
