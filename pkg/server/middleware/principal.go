package middleware

import (
	"net/http"

	"github.com/de-tools/work-reports/pkg/services/identity"
	"github.com/rs/zerolog"
)

// ActorHeader carries the authenticated caller, set by the gateway in front of the service.
const ActorHeader = "X-Actor-ID"

// Principal attaches the caller named by ActorHeader to the request context. Requests without
// the header pass through unauthenticated and are refused by the services.
func Principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		actorID := req.Header.Get(ActorHeader)
		if actorID == "" {
			next.ServeHTTP(w, req)
			return
		}

		ctx := identity.WithPrincipal(req.Context(), actorID)
		logger := zerolog.Ctx(ctx).With().Str("caller", actorID).Logger()
		ctx = logger.WithContext(ctx)

		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
