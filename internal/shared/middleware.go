package shared

import "net/http"

// RequireLogin rejects anonymous requests with a redirect to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if sess.UserID() == 0 {
			if sess != nil {
				sess.AddFlash(FlashMessage{Kind: "warning", Message: "Please log in first"})
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
