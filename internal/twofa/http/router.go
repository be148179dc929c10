package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/harborauth/twofa/internal/twofa/service"
	"github.com/harborauth/twofa/internal/twofa/store"
	"github.com/harborauth/twofa/pkg/httpx"
	"github.com/harborauth/twofa/pkg/jwtx"
	"github.com/harborauth/twofa/pkg/slogx"

	_ "github.com/harborauth/twofa/api/twofa" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	TwoFactorService *service.TwoFactorService
}

func NewRouter(
	signer *jwtx.Signer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSetup()
	r.registerChallenge()
	r.registerManagement()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TwoFA Service API
//	@version		0.1.0
//	@description	Time-based one-time-password (RFC 6238) second-factor service: secret
//	@description	provisioning, code verification with replay protection and lockout,
//	@description	and single-use backup-recovery codes.
//	@description
//	@description				Successful verifications mint short-lived Ed25519-signed assertion
//	@description				tokens; the verification key is published on /v1/2fa/assertion-key.
//
//	@contact.name				HarborAuth Team
//	@contact.url				https://github.com/harborauth/twofa
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSetup() {
	h := &SetupHandler{TwoFactorService: r.TwoFactorService}

	// POST /2fa/setup - moderate rate limit (starts enrollment, no secrets guessable)
	r.Mux.Handle("POST /v1/2fa/setup",
		httpx.Chain(http.HandlerFunc(h.HandleBegin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /2fa/setup/confirm - strict rate limit (code guessing surface)
	r.Mux.Handle("POST /v1/2fa/setup/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerChallenge() {
	h := &ChallengeHandler{TwoFactorService: r.TwoFactorService}

	// Both challenge endpoints are brute-force targets: strict IP limits on
	// top of the per-principal verification lockout.
	r.Mux.Handle("POST /v1/2fa/challenge",
		httpx.Chain(http.HandlerFunc(h.HandleChallenge),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/2fa/challenge/backup",
		httpx.Chain(http.HandlerFunc(h.HandleBackupChallenge),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerManagement() {
	h := &ManagementHandler{TwoFactorService: r.TwoFactorService}

	// POST /2fa/disable - strict rate limit (verifies a code)
	r.Mux.Handle("POST /v1/2fa/disable",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /2fa/backup-codes/regenerate - strict rate limit (verifies a code)
	r.Mux.Handle("POST /v1/2fa/backup-codes/regenerate",
		httpx.Chain(http.HandlerFunc(h.HandleRegenerate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /2fa/admin/unlock - moderate rate limit. Deployments front this
	// with their own operator authentication; the service itself only
	// trusts the network boundary.
	r.Mux.Handle("POST /v1/2fa/admin/unlock",
		httpx.Chain(http.HandlerFunc(h.HandleUnlock),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /2fa/assertion-key - public verification key, lenient
	r.Mux.Handle("GET /v1/2fa/assertion-key",
		httpx.Chain(AssertionKeyHandler(r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
