// Package storefront serves an in-process stand-in for the demo storefront.
// It renders the same pages with the same element ids, classes and messages
// as the public site, so the browser suite can run without network access.
package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kuitang/storefront-e2e/internal/errs"
	"github.com/kuitang/storefront-e2e/internal/fixture"
	"github.com/kuitang/storefront-e2e/internal/logutil"
	"github.com/kuitang/storefront-e2e/internal/obs"
)

// SessionCookie identifies a browser's cart and login.
const SessionCookie = "storefront_session"

// Error banners shown by the login form.
const (
	ErrUsernameRequired = fixture.ErrorPrefix + ": Username is required"
	ErrPasswordRequired = fixture.ErrorPrefix + ": Password is required"
	ErrNoMatch          = fixture.ErrorPrefix + ": Username and password do not match any user in this service"
	ErrLockedOut        = fixture.ErrorPrefix + ": Sorry, this user has been locked out."
)

// Options configures the stand-in app.
type Options struct {
	// GlitchDelay is added to logins of performance_glitch_user.
	GlitchDelay time.Duration
}

// Server is the stand-in storefront.
type Server struct {
	store    *Store
	renderer *Renderer
	glitch   time.Duration
}

// New returns a server with an empty store.
func New(opts Options) (*Server, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Server{
		store:    NewStore(),
		renderer: renderer,
		glitch:   opts.GlitchDelay,
	}, nil
}

// Store exposes the server's session store.
func (s *Server) Store() *Store { return s.store }

// Handler returns the routed handler wrapped with request correlation and
// access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleLoginPage)
	mux.HandleFunc("POST /{$}", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("GET "+fixture.InventoryPath, s.requireUser(s.handleInventory))
	mux.HandleFunc("GET "+fixture.CartPath, s.requireUser(s.handleCart))
	mux.HandleFunc("GET "+fixture.StepOnePath, s.requireUser(s.handleStepOne))
	mux.HandleFunc("POST "+fixture.StepOnePath, s.requireUser(s.handleStepOneSubmit))
	mux.HandleFunc("GET "+fixture.StepTwoPath, s.requireUser(s.handleStepTwo))
	mux.HandleFunc("POST "+fixture.StepTwoPath, s.requireUser(s.handleFinish))
	mux.HandleFunc("GET "+fixture.CompletePath, s.requireUser(s.handleComplete))
	mux.HandleFunc("POST /api/cart/{slug}", s.requireUserAPI(s.handleCartAdd))
	mux.HandleFunc("DELETE /api/cart/{slug}", s.requireUserAPI(s.handleCartRemove))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return obs.RequestContextMiddleware(obs.AccessLogMiddleware("storefront", mux))
}

// sessionID returns the caller's session cookie, issuing one if absent.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type ctxKey struct{}

type request struct {
	sessionID string
	user      string
}

func requestFrom(ctx context.Context) request {
	req, _ := ctx.Value(ctxKey{}).(request)
	return req
}

// requireUser redirects signed-out visitors to the login page, which then
// explains which page they tried to open.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(w, r)
		user := s.store.User(id)
		if user == "" {
			http.Redirect(w, r, "/?denied="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		ctx := obs.WithCorrelation(r.Context(), obs.Correlation{CartID: id})
		ctx = context.WithValue(ctx, ctxKey{}, request{sessionID: id, user: user})
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) requireUserAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(w, r)
		user := s.store.User(id)
		if user == "" {
			s.writeError(w, r, errs.New(errs.PermissionDenied, "login required"))
			return
		}
		ctx := obs.WithCorrelation(r.Context(), obs.Correlation{CartID: id})
		ctx = context.WithValue(ctx, ctxKey{}, request{sessionID: id, user: user})
		next(w, r.WithContext(ctx))
	}
}

// pageData is the view model shared by every template.
type pageData struct {
	Title     string
	User      string
	CartCount int
	Error     string

	Username      string
	Password      string
	AcceptedUsers []string

	Products    []fixture.Product
	InCart      map[string]bool
	SortOptions []fixture.SortOption

	Items   []fixture.Product
	Info    fixture.CheckoutInfo
	Summary summary

	CompleteHeader string
	CompleteText   string
}

// summary holds the overview page's amounts in cents.
type summary struct {
	ItemTotal int64
	Tax       int64
	Total     int64
}

func summarize(items []fixture.Product) summary {
	var sum summary
	for _, p := range items {
		sum.ItemTotal += p.PriceCents
	}
	sum.Tax = fixture.TaxCents(sum.ItemTotal)
	sum.Total = sum.ItemTotal + sum.Tax
	return sum
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if err := s.renderer.Render(w, status, name, data); err != nil {
		obs.From(r.Context()).Error("render_failed", "pkg", "storefront", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, username, message string) {
	s.render(w, r, status, "login", pageData{
		Error:         message,
		Username:      username,
		Password:      fixture.ValidPassword,
		AcceptedUsers: fixture.AcceptedUsers,
	})
}

// deniedMessage is shown after the guard bounced a signed-out visitor.
func deniedMessage(path string) string {
	known := []string{fixture.InventoryPath, fixture.CartPath, fixture.StepOnePath, fixture.StepTwoPath, fixture.CompletePath}
	if !slices.Contains(known, path) {
		return ""
	}
	return fixture.ErrorPrefix + ": You can only access '" + path + "' when you are logged in."
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.sessionID(w, r)
	s.renderLogin(w, r, http.StatusOK, "", deniedMessage(r.URL.Query().Get("denied")))
}

// checkLogin applies the demo site's login rules in its order of checks.
func checkLogin(username, password string) error {
	switch {
	case username == "":
		return errs.New(errs.InvalidArgument, ErrUsernameRequired)
	case password == "":
		return errs.New(errs.InvalidArgument, ErrPasswordRequired)
	case password != fixture.ValidPassword:
		return errs.New(errs.PermissionDenied, ErrNoMatch)
	case username == fixture.LockedOutUser:
		return errs.New(errs.PermissionDenied, ErrLockedOut)
	case !slices.Contains(fixture.AcceptedUsers, username):
		return errs.New(errs.PermissionDenied, ErrNoMatch)
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, r, http.StatusBadRequest, "", ErrUsernameRequired)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("user-name"))
	password := r.PostForm.Get("password")
	log := obs.From(r.Context()).With("pkg", "storefront", "username", username)

	if err := checkLogin(username, password); err != nil {
		log.Info("login_rejected",
			"code", errs.CodeOf(err),
			"password", logutil.Redact("password", password))
		s.renderLogin(w, r, errs.HTTPStatus(errs.CodeOf(err)), username, errs.MessageOf(err))
		return
	}

	if username == fixture.PerformanceGlitchUser && s.glitch > 0 {
		timer := time.NewTimer(s.glitch)
		select {
		case <-timer.C:
		case <-r.Context().Done():
			timer.Stop()
			return
		}
	}

	s.store.Login(id, username)
	log.Info("login_succeeded")
	http.Redirect(w, r, fixture.InventoryPath, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	s.store.Logout(id)
	obs.From(r.Context()).Info("logout", "pkg", "storefront")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	cart := s.store.Cart(req.sessionID)
	inCart := make(map[string]bool, len(cart))
	for _, p := range cart {
		inCart[p.Slug] = true
	}
	s.render(w, r, http.StatusOK, "inventory", pageData{
		Title:       fixture.InventoryTitle,
		User:        req.user,
		CartCount:   len(cart),
		Products:    fixture.Products,
		InCart:      inCart,
		SortOptions: fixture.SortOptions,
	})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	cart := s.store.Cart(req.sessionID)
	s.render(w, r, http.StatusOK, "cart", pageData{
		Title:     fixture.CartTitle,
		User:      req.user,
		CartCount: len(cart),
		Items:     cart,
	})
}

func (s *Server) handleStepOne(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	s.render(w, r, http.StatusOK, "checkout_step_one", pageData{
		Title:     fixture.CheckoutTitle,
		User:      req.user,
		CartCount: len(s.store.Cart(req.sessionID)),
	})
}

func (s *Server) handleStepOneSubmit(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	info := fixture.CheckoutInfo{
		FirstName:  strings.TrimSpace(r.PostForm.Get("firstName")),
		LastName:   strings.TrimSpace(r.PostForm.Get("lastName")),
		PostalCode: strings.TrimSpace(r.PostForm.Get("postalCode")),
	}
	if field := info.MissingField(); field != "" {
		s.render(w, r, http.StatusBadRequest, "checkout_step_one", pageData{
			Title:     fixture.CheckoutTitle,
			User:      req.user,
			CartCount: len(s.store.Cart(req.sessionID)),
			Error:     "Error: " + field + " is required",
			Info:      info,
		})
		return
	}
	s.store.SetCheckoutInfo(req.sessionID, info)
	http.Redirect(w, r, fixture.StepTwoPath, http.StatusSeeOther)
}

// requireCheckoutInfo sends visitors who skipped the information form back
// to it.
func (s *Server) requireCheckoutInfo(w http.ResponseWriter, r *http.Request, id string) bool {
	if s.store.CheckoutInfo(id).MissingField() == "" {
		return true
	}
	http.Redirect(w, r, fixture.StepOnePath, http.StatusSeeOther)
	return false
}

func (s *Server) handleStepTwo(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	if !s.requireCheckoutInfo(w, r, req.sessionID) {
		return
	}
	cart := s.store.Cart(req.sessionID)
	s.render(w, r, http.StatusOK, "checkout_step_two", pageData{
		Title:     fixture.OverviewTitle,
		User:      req.user,
		CartCount: len(cart),
		Items:     cart,
		Summary:   summarize(cart),
	})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	if !s.requireCheckoutInfo(w, r, req.sessionID) {
		return
	}
	sum := summarize(s.store.Cart(req.sessionID))
	order := s.store.PlaceOrder(req.sessionID)
	obs.From(r.Context()).Info("order_placed", "pkg", "storefront", "order", order, "total", fixture.FormatCents(sum.Total))
	http.Redirect(w, r, fixture.CompletePath, http.StatusSeeOther)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	s.render(w, r, http.StatusOK, "checkout_complete", pageData{
		Title:          fixture.CompleteTitle,
		User:           req.user,
		CompleteHeader: fixture.CompleteHeader,
		CompleteText:   fixture.CompleteText,
	})
}

type cartResponse struct {
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	slug := r.PathValue("slug")
	count, err := s.store.Add(req.sessionID, slug)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	obs.From(r.Context()).Debug("cart_add", "pkg", "storefront", "slug", slug, "count", count)
	writeJSON(w, http.StatusOK, cartResponse{Slug: slug, Count: count})
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	req := requestFrom(r.Context())
	slug := r.PathValue("slug")
	count, err := s.store.Remove(req.sessionID, slug)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	obs.From(r.Context()).Debug("cart_remove", "pkg", "storefront", "slug", slug, "count", count)
	writeJSON(w, http.StatusOK, cartResponse{Slug: slug, Count: count})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(errs.CodeOf(err))
	obs.From(r.Context()).Warn("api_error", "pkg", "storefront", "status", status, "error", err)
	writeJSON(w, status, errorResponse{Code: errs.CodeOf(err), Message: errs.MessageOf(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
