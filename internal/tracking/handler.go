package tracking

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/analytics-tagger/internal/analytics/data"
	"github.com/ignite/analytics-tagger/internal/analytics/provider"
	"github.com/ignite/analytics-tagger/internal/pkg/httputil"
	"github.com/ignite/analytics-tagger/internal/pkg/logger"
)

// extraParamPrefix marks query parameters that are forwarded into the
// measurement URL, e.g. p_dp=/newsletter becomes dp=/newsletter.
const extraParamPrefix = "p_"

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// PageRenderer renders a full page around the provider's script block.
type PageRenderer interface {
	Render(p provider.Provider) (string, error)
}

type Handler struct {
	sessions *Sessions
	page     PageRenderer
	csp      bool
}

// NewHandler wires the routes. With csp set, the landing page gets a script
// nonce and a matching Content-Security-Policy header.
func NewHandler(sessions *Sessions, page PageRenderer, csp bool) *Handler {
	return &Handler{sessions: sessions, page: page, csp: csp}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.HandleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Middleware)
		r.Get("/", h.HandlePage)
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/script", h.HandleScript)
			r.Post("/pages", h.HandleTrackPage)
			r.Post("/events", h.HandleTrackEvent)
			r.Post("/ecommerce/transactions", h.HandleAddTransaction)
			r.Post("/ecommerce/items", h.HandleAddItem)
			r.Get("/measurement-url", h.HandleMeasurementURL)
			r.Get("/open", h.HandleOpen)
		})
	})
	return r
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	sess := FromContext(r.Context())
	if h.csp {
		sess.Provider.WithCSP()
	}

	out, err := h.page.Render(sess.Provider)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if nonce := sess.Provider.CSPNonce(); nonce != "" {
		w.Header().Set("Content-Security-Policy", "script-src 'self' 'nonce-"+nonce+"' www.google-analytics.com")
	}
	httputil.HTML(w, http.StatusOK, out)
}

func (h *Handler) HandleScript(w http.ResponseWriter, r *http.Request) {
	sess := FromContext(r.Context())
	httputil.HTML(w, http.StatusOK, sess.Provider.Render())
}

type pageRequest struct {
	Page    string `json:"page"`
	Title   string `json:"title"`
	HitType string `json:"hit_type"`
}

func (h *Handler) HandleTrackPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	sess := FromContext(r.Context())
	sess.Provider.TrackPage(req.Page, req.Title, req.HitType)
	h.queued(w, r, sess)
}

type eventRequest struct {
	Category string `json:"category"`
	Action   string `json:"action"`
	Label    string `json:"label"`
	Value    *int   `json:"value"`
}

func (h *Handler) HandleTrackEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Category == "" || req.Action == "" {
		httputil.BadRequest(w, "category and action are required")
		return
	}
	sess := FromContext(r.Context())
	sess.Provider.TrackEvent(req.Category, req.Action, req.Label, req.Value)
	h.queued(w, r, sess)
}

func (h *Handler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var tx provider.Transaction
	if !httputil.Decode(w, r, &tx) {
		return
	}
	if tx.ID == "" {
		httputil.BadRequest(w, "id is required")
		return
	}
	sess := FromContext(r.Context())
	if _, err := sess.Provider.EcommerceAddTransaction(tx); err != nil {
		httputil.InternalError(w, err)
		return
	}
	h.queued(w, r, sess)
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var item provider.Item
	if !httputil.Decode(w, r, &item) {
		return
	}
	if item.ID == "" || item.Name == "" {
		httputil.BadRequest(w, "id and name are required")
		return
	}
	sess := FromContext(r.Context())
	if _, err := sess.Provider.EcommerceAddItem(item); err != nil {
		httputil.InternalError(w, err)
		return
	}
	h.queued(w, r, sess)
}

// queued answers a tracking call. With a redirect target the bag is
// persisted first, so the next page of the session renders the commands.
func (h *Handler) queued(w http.ResponseWriter, r *http.Request, sess *Session) {
	target := r.URL.Query().Get("redirect")
	if target == "" {
		httputil.Accepted(w, map[string]int{"pending": sess.Bag.Len()})
		return
	}
	if !isLocalPath(target) {
		httputil.BadRequest(w, "redirect must be a local path")
		return
	}
	if err := sess.Persist(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type measurementResponse struct {
	URL      string        `json:"url"`
	ClientID string        `json:"client_id"`
	Event    data.Event    `json:"event"`
	Campaign data.Campaign `json:"campaign"`
}

func (h *Handler) HandleMeasurementURL(w http.ResponseWriter, r *http.Request) {
	sess := FromContext(r.Context())
	m := sess.Provider.TrackMeasurementURL(measurementRequest(r))
	httputil.OK(w, measurementResponse{
		URL:      m.URL,
		ClientID: m.ClientID,
		Event:    m.Event,
		Campaign: m.Campaign,
	})
}

// HandleOpen records a newsletter open by redirecting the image request to
// the measurement URL. Without a provider it still answers with a pixel so
// mail clients do not show a broken image.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	sess := FromContext(r.Context())
	m := sess.Provider.TrackMeasurementURL(measurementRequest(r))
	if m.URL == "" {
		h.servePixel(w)
		return
	}

	logger.Info("email open", "client_id", m.ClientID, "campaign", m.Campaign.Name, "ip", realIP(r))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	http.Redirect(w, r, m.URL, http.StatusFound)
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	if _, err := w.Write(pixelGIF); err != nil {
		logger.Warn("pixel write failed", "error", err)
	}
}

// measurementRequest reads the hit from the query string. Event and campaign
// fields not given keep their newsletter defaults.
func measurementRequest(r *http.Request) provider.MeasurementRequest {
	q := r.URL.Query()

	ev := data.NewEvent()
	if v := q.Get("category"); v != "" {
		ev.Category = v
	}
	if v := q.Get("action"); v != "" {
		ev.Action = v
	}
	ev.Label = q.Get("label")

	c := data.NewCampaign(q.Get("campaign"))
	if v := q.Get("source"); v != "" {
		c = c.WithSource(v)
	}
	if v := q.Get("medium"); v != "" {
		c = c.WithMedium(v)
	}
	c = c.WithKeyword(q.Get("keyword")).WithContent(q.Get("content")).WithID(q.Get("campaign_id"))

	return provider.MeasurementRequest{
		MetricName:  q.Get("metric"),
		MetricValue: q.Get("metric_value"),
		Event:       ev,
		Campaign:    c,
		ClientID:    q.Get("client_id"),
		Params:      extraParams(r.URL.RawQuery),
	}
}

// extraParams collects p_-prefixed parameters in the order they appear.
// url.Values loses that order, so the raw query is walked by hand.
func extraParams(rawQuery string) []provider.Param {
	var params []provider.Param
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || !strings.HasPrefix(key, extraParamPrefix) || key == extraParamPrefix {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		params = append(params, provider.Param{Key: strings.TrimPrefix(key, extraParamPrefix), Value: val})
	}
	return params
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
