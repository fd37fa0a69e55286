package tshopbe

import "net/http"

// refreshCookieName is the cookie the backend's clients read the refresh
// token from. Renaming it breaks deployed frontends.
const refreshCookieName = "refreshToken"

// RefreshCookie builds the cookie carrying a refresh token. MaxAge always
// tracks the configured refresh TTL; Secure follows ProductionMode.
func (e *Engine) RefreshCookie(refreshToken string) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(e.RefreshTTLSeconds()),
		HttpOnly: true,
		Secure:   e.config.Security.ProductionMode,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearRefreshCookie builds the deletion cookie logout responses carry.
func (e *Engine) ClearRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   e.config.Security.ProductionMode,
		SameSite: http.SameSiteLaxMode,
	}
}
