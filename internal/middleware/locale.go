package middleware

import "net/http"

// ContentLanguage announces the single display locale on every response.
func ContentLanguage(lang string) func(http.Handler) http.Handler {
	if lang == "pt" {
		lang = "pt-BR"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lang != "" {
				w.Header().Set("Content-Language", lang)
			}
			next.ServeHTTP(w, r)
		})
	}
}
