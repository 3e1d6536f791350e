// package web serves the browser flow: a form page collecting the prep
// request, the OAuth redirect endpoint, and the result page.
//
// The server holds no sessions. Each submitted form is stored in an in-memory
// request store keyed by the OAuth state value, and the redirect handler
// retrieves and deletes it when the user returns from authorization. Stale
// entries from abandoned flows are evicted after a TTL.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/venndale/showprep/internal/catalog"
	"github.com/venndale/showprep/internal/setlist"
	"github.com/venndale/showprep/internal/shared"
	"github.com/venndale/showprep/internal/tasks"
)

//go:embed templates/*.html
var templateFiles embed.FS

// pendingTTL bounds how long an abandoned form submission is kept.
const pendingTTL = 15 * time.Minute

// ServiceFactory creates a fresh catalog service for one browser flow. Each
// flow authenticates independently, so services are never shared between
// requests.
type ServiceFactory func() (catalog.OAuthService, error)

type pendingRequest struct {
	req     tasks.PrepRequest
	created time.Time
}

// App is the web application. Implements server.Handler.
type App struct {
	factory      ServiceFactory
	cache        tasks.LibraryCache
	resolverOpts setlist.Options
	logger       *log.Logger

	templates *template.Template

	mu      sync.Mutex
	pending map[string]pendingRequest
}

// NewApp creates the web application. cache may be nil.
func NewApp(factory ServiceFactory, cache tasks.LibraryCache, resolverOpts setlist.Options, logger *log.Logger) *App {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &App{
		factory:      factory,
		cache:        cache,
		resolverOpts: resolverOpts,
		logger:       logger,
		templates:    template.Must(template.ParseFS(templateFiles, "templates/*.html")),
		pending:      make(map[string]pendingRequest),
	}
}

// Routes implements server.Handler.
func (a *App) Routes() []string {
	return []string{"/", "/prep", "/redirect"}
}

// ServeHTTP dispatches by path.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		a.handleIndex(w, r)
	case "/prep":
		a.handlePrep(w, r)
	case "/redirect":
		a.handleRedirect(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.renderIndex(w, http.StatusOK, "")
}

// handlePrep validates the form, parks the request under a fresh state value,
// and sends the user off to authorize.
func (a *App) handlePrep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		a.renderIndex(w, http.StatusBadRequest, "Could not read the form.")
		return
	}

	req := tasks.PrepRequest{
		ArtistName:  strings.TrimSpace(r.FormValue("artist")),
		ConcertName: strings.TrimSpace(r.FormValue("concert")),
		Year:        strings.TrimSpace(r.FormValue("year")),
		SkipSetlist: r.FormValue("skip_setlist") != "",
	}
	if req.ArtistName == "" {
		a.renderIndex(w, http.StatusBadRequest, "Please enter an artist name.")
		return
	}

	svc, err := a.factory()
	if err != nil {
		a.logger.Error("failed to create catalog service", "error", err)
		a.renderIndex(w, http.StatusInternalServerError, "Spotify is not configured on this server.")
		return
	}

	state := shared.GenerateState()
	a.store(state, req)

	http.Redirect(w, r, svc.GetAuthURL(state), http.StatusSeeOther)
}

// handleRedirect completes the OAuth flow and runs the prep pipeline.
func (a *App) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	state := query.Get("state")
	req, ok := a.take(state)
	if !ok {
		a.renderIndex(w, http.StatusBadRequest, "This authorization link has expired. Please start over.")
		return
	}

	if errParam := query.Get("error"); errParam != "" {
		a.renderResult(w, http.StatusBadRequest, nil, "Spotify authorization was denied: "+errParam)
		return
	}
	code := query.Get("code")
	if code == "" {
		a.renderResult(w, http.StatusBadRequest, nil, "Spotify did not return an authorization code.")
		return
	}

	svc, err := a.factory()
	if err != nil {
		a.logger.Error("failed to create catalog service", "error", err)
		a.renderResult(w, http.StatusInternalServerError, nil, "Spotify is not configured on this server.")
		return
	}

	ctx := r.Context()
	if err := svc.Authenticate(ctx, map[string]string{"auth_code": code}); err != nil {
		a.logger.Error("token exchange failed", "error", err)
		a.renderResult(w, http.StatusBadGateway, nil, "Could not complete Spotify authorization.")
		return
	}

	opts := a.resolverOpts
	opts.Logger = a.logger
	engine := tasks.NewPrepEngine(svc, setlist.NewResolver(svc, opts), a.cache, a.logger)

	result, err := engine.Run(ctx, nil, req)
	if err != nil {
		a.logger.Error("prep run failed", "artist", req.ArtistName, "error", err)
		a.renderResult(w, http.StatusBadGateway, result, "The prep run failed: "+err.Error())
		return
	}

	a.renderResult(w, http.StatusOK, result, "")
}

func (a *App) store(state string, req tasks.PrepRequest) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	for key, entry := range a.pending {
		if now.Sub(entry.created) > pendingTTL {
			delete(a.pending, key)
		}
	}
	a.pending[state] = pendingRequest{req: req, created: now}
}

func (a *App) take(state string) (tasks.PrepRequest, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.pending[state]
	if !ok || time.Since(entry.created) > pendingTTL {
		delete(a.pending, state)
		return tasks.PrepRequest{}, false
	}
	delete(a.pending, state)
	return entry.req, true
}

func (a *App) renderIndex(w http.ResponseWriter, status int, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.templates.ExecuteTemplate(w, "index.html", struct{ Error string }{Error: errMsg}); err != nil {
		a.logger.Error("failed to render index", "error", err)
	}
}

func (a *App) renderResult(w http.ResponseWriter, status int, result *tasks.PrepResult, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := struct {
		Result *tasks.PrepResult
		Error  string
	}{Result: result, Error: errMsg}
	if err := a.templates.ExecuteTemplate(w, "result.html", data); err != nil {
		a.logger.Error("failed to render result", "error", err)
	}
}

