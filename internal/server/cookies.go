package server

import (
	"net/http"
	"time"
)

const (
	// CookieName holds the anonymous user id for callers that send no X-User-Id
	CookieName = "hayat_uid"
	// CookieMaxAge keeps anonymous conversations reachable for a year
	CookieMaxAge = 365 * 24 * time.Hour
	// UserIDHeader lets an authenticating front end name the user explicitly
	UserIDHeader = "X-User-Id"
)

// SetUserCookie sets an HTTP-only cookie carrying the anonymous user id
func SetUserCookie(w http.ResponseWriter, r *http.Request, userID string) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    userID,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	}
	http.SetCookie(w, cookie)
}

// GetUserCookie reads the anonymous user id from the cookie
func GetUserCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
