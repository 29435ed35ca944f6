package httpserver

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/calorie-diary/internal/userctx"
)

// TimezoneHeader carries the client's IANA zone; "today" is computed in it.
const TimezoneHeader = "X-Timezone"

// TimezoneMiddleware puts the location named by X-Timezone into the request
// context. Unknown zones are ignored and the server zone applies.
func TimezoneMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.Header.Get(TimezoneHeader))
		if name == "" {
			next.ServeHTTP(w, r)
			return
		}

		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Printf("WARN timezone: unknown zone %q ignored", name)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(userctx.WithLocation(r.Context(), loc)))
	})
}
