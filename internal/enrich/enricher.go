package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/schedchat/schedchat/internal/logging"
)

const (
	// lookaheadWindow is how far into the future upcoming events are
	// fetched.
	lookaheadWindow = 7 * 24 * time.Hour

	// maxContextEvents caps how many events are injected into the
	// prompt context.
	maxContextEvents = 10
)

// Enricher gathers auth, profile and calendar facts into a Context. A nil
// auth provider or event source degrades the corresponding fields rather
// than failing.
type Enricher struct {
	auth   AuthProvider
	events EventSource
	logger *slog.Logger
	now    func() time.Time
}

// NewEnricher creates an enricher over the given ports. Either port may be
// nil.
func NewEnricher(auth AuthProvider, events EventSource, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		auth:   auth,
		events: events,
		logger: logging.WithComponent(logger, "enricher"),
		now:    time.Now,
	}
}

// Enrich returns the best-effort context for the current turn. It never
// returns an error: each gathering step recovers locally and the failure
// is reflected in the context instead.
func (e *Enricher) Enrich(ctx context.Context) Context {
	out := Context{AccessState: AccessUnavailable}

	authenticated := e.auth != nil && e.auth.IsAuthenticated()

	if authenticated {
		profile, err := e.auth.GetUserProfile(ctx)
		if err != nil {
			e.logger.Warn("failed to load user profile", logging.Err(err))
		} else if profile != nil && profile.Name != UnknownUserName {
			out.UserProfile = profile
		}
	}

	if authenticated && e.events != nil {
		now := e.now()
		events, err := e.events.UpcomingEvents(ctx, now, now.Add(lookaheadWindow), maxContextEvents)
		switch {
		case err != nil:
			out.AccessState = AccessUnavailable
			e.logger.Warn("failed to fetch upcoming events", logging.Err(err))
		case len(events) == 0:
			out.AccessState = AccessConfirmedEmpty
		default:
			// Provider ordering (chronological by start) is preserved.
			out.Events = events
			out.AccessState = AccessConfirmedEvents
		}
	}

	now := e.now()
	out.CurrentTime = now
	out.TimeZone = now.Location().String()

	return out
}
