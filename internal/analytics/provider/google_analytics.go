package provider

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/benbjohnson/clock"

	"github.com/ignite/analytics-tagger/internal/analytics/data"
	"github.com/ignite/analytics-tagger/internal/analytics/renderer"
	"github.com/ignite/analytics-tagger/internal/analytics/trackingbag"
	"github.com/ignite/analytics-tagger/internal/config"
	"github.com/ignite/analytics-tagger/internal/pkg/logger"
)

const (
	defaultTrackingDomain = "auto"
	defaultTrackerName    = "t0"

	pageFallback  = "window.location.protocol + '//' + window.location.hostname + window.location.pathname + window.location.search"
	titleFallback = "document.title"

	loaderScript = "(function(i,s,o,g,r,a,m){i['GoogleAnalyticsObject']=r;i[r]=i[r]||function(){(i[r].q=i[r].q||[]).push(arguments)},i[r].l=1*new Date();a=s.createElement(o),m=s.getElementsByTagName(o)[0];a.async=1;a.src=g;m.parentNode.insertBefore(a,m)})(window,document,'script','//www.google-analytics.com/analytics%s.js','ga');"
)

var allowedHitTypes = map[string]bool{
	"pageview":    true,
	"appview":     true,
	"event":       true,
	"transaction": true,
	"item":        true,
	"social":      true,
	"exception":   true,
	"timing":      true,
}

// Option customises a GoogleAnalytics provider.
type Option func(*GoogleAnalytics)

// WithClock sets the clock used for date based defaults.
func WithClock(c clock.Clock) Option {
	return func(g *GoogleAnalytics) { g.clock = c }
}

// GoogleAnalytics renders analytics.js tracking code. It is request scoped
// and not safe for concurrent use.
type GoogleAnalytics struct {
	trackingID     string
	optimizeID     string
	trackingDomain string
	trackerName    string

	displayFeatures   bool
	ecommerceTracking bool
	anonymizeIP       bool
	autoTrack         bool
	debug             bool
	nonInteraction    bool
	renderScriptBlock bool
	secureURL         bool

	userID   string
	campaign *data.Campaign
	cspNonce string

	bag   *trackingbag.Bag
	clock clock.Clock
}

var _ Provider = (*GoogleAnalytics)(nil)

// NewGoogleAnalytics builds a provider from its config block. A nil bag gets
// a memory-only one.
func NewGoogleAnalytics(cfg config.GoogleAnalyticsConfig, bag *trackingbag.Bag, opts ...Option) (*GoogleAnalytics, error) {
	if cfg.TrackingID == "" {
		return nil, ErrMissingTrackingID
	}
	if bag == nil {
		bag = trackingbag.New()
	}

	g := &GoogleAnalytics{
		trackingID:        cfg.TrackingID,
		optimizeID:        cfg.OptimizeID,
		trackingDomain:    cfg.TrackingDomain,
		trackerName:       cfg.TrackerName,
		displayFeatures:   cfg.DisplayFeatures,
		anonymizeIP:       cfg.AnonymizeIP,
		autoTrack:         cfg.AutoTrack,
		debug:             cfg.Debug,
		renderScriptBlock: true,
		secureURL:         true,
		bag:               bag,
		clock:             clock.New(),
	}
	if g.trackingDomain == "" {
		g.trackingDomain = defaultTrackingDomain
	}
	if g.trackerName == "" {
		g.trackerName = defaultTrackerName
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// TrackPage queues a page hit. Empty arguments are treated as omitted: with
// all three omitted the shorthand pageview is sent, otherwise the page URL
// and title fall back to their browser-side values. Unknown hit types are
// dropped.
func (g *GoogleAnalytics) TrackPage(page, title, hitType string) {
	if page == "" && title == "" && hitType == "" {
		g.bag.Add("ga('send', 'pageview');")
		return
	}

	if hitType == "" {
		hitType = "pageview"
	}
	if !allowedHitTypes[hitType] {
		logger.Debug("dropping page hit with unknown hit type", "hit_type", hitType)
		return
	}

	pageExpr := pageFallback
	if page != "" {
		pageExpr = "'" + page + "'"
	}
	titleExpr := titleFallback
	if title != "" {
		titleExpr = "'" + title + "'"
	}

	g.bag.Add(fmt.Sprintf("ga('send', {'hitType': '%s', 'page': %s, 'title': %s});", hitType, pageExpr, titleExpr))
}

// TrackEvent queues an event hit. value is only sent along with a label.
func (g *GoogleAnalytics) TrackEvent(category, action, label string, value *int) {
	var extra string
	if label != "" {
		extra = fmt.Sprintf(", '%s'", label)
		if value != nil {
			extra += fmt.Sprintf(", %d", *value)
		}
	}
	g.bag.Add(fmt.Sprintf("ga('send', 'event', '%s', '%s'%s);", category, action, extra))
}

// TrackCustom queues arbitrary script.
func (g *GoogleAnalytics) TrackCustom(code string) {
	g.bag.Add(code)
}

func (g *GoogleAnalytics) SetCustomDimension(dimension, value string) Provider {
	g.TrackCustom(fmt.Sprintf("ga('set', '%s', '%s');", dimension, value))
	return g
}

// SetCustomDimensions sets several dimensions with one ga('set', {...}) call.
func (g *GoogleAnalytics) SetCustomDimensions(dimensions map[string]any) (Provider, error) {
	params, err := json.Marshal(dimensions)
	if err != nil {
		return g, fmt.Errorf("encode custom dimensions: %w", err)
	}
	g.TrackCustom(fmt.Sprintf("ga('set', %s);", params))
	return g, nil
}

// EcommerceAddTransaction queues a transaction and switches ecommerce
// tracking on.
func (g *GoogleAnalytics) EcommerceAddTransaction(tx Transaction) (Provider, error) {
	g.EnableEcommerceTracking()

	params, err := json.Marshal(tx)
	if err != nil {
		return g, fmt.Errorf("encode ecommerce transaction %s: %w", tx.ID, err)
	}
	g.bag.Add(fmt.Sprintf("ga('ecommerce:addTransaction', %s);", params))
	return g, nil
}

// EcommerceAddItem queues a transaction item and switches ecommerce tracking on.
func (g *GoogleAnalytics) EcommerceAddItem(item Item) (Provider, error) {
	g.EnableEcommerceTracking()

	params, err := json.Marshal(item)
	if err != nil {
		return g, fmt.Errorf("encode ecommerce item %s: %w", item.ID, err)
	}
	g.bag.Add(fmt.Sprintf("ga('ecommerce:addItem', %s);", params))
	return g, nil
}

func (g *GoogleAnalytics) EnableDisplayFeatures() Provider {
	g.displayFeatures = true
	return g
}

func (g *GoogleAnalytics) DisableDisplayFeatures() Provider {
	g.displayFeatures = false
	return g
}

func (g *GoogleAnalytics) EnableAutoTracking() Provider {
	g.autoTrack = true
	return g
}

func (g *GoogleAnalytics) DisableAutoTracking() Provider {
	g.autoTrack = false
	return g
}

func (g *GoogleAnalytics) EnableEcommerceTracking() Provider {
	g.ecommerceTracking = true
	return g
}

func (g *GoogleAnalytics) DisableEcommerceTracking() Provider {
	g.ecommerceTracking = false
	return g
}

func (g *GoogleAnalytics) EcommerceTracking() bool {
	return g.ecommerceTracking
}

func (g *GoogleAnalytics) EnableScriptBlock() Provider {
	g.renderScriptBlock = true
	return g
}

func (g *GoogleAnalytics) DisableScriptBlock() Provider {
	g.renderScriptBlock = false
	return g
}

// NonInteraction reports whether hits are marked non-interactive, which keeps
// them out of the bounce-rate calculation.
func (g *GoogleAnalytics) NonInteraction() bool {
	return g.nonInteraction
}

func (g *GoogleAnalytics) SetNonInteraction(nonInteraction bool) Provider {
	g.nonInteraction = nonInteraction
	return g
}

func (g *GoogleAnalytics) SetUserID(userID string) Provider {
	g.userID = userID
	return g
}

func (g *GoogleAnalytics) UnsetUserID() Provider {
	g.userID = ""
	return g
}

func (g *GoogleAnalytics) SetCampaign(c data.Campaign) Provider {
	g.campaign = &c
	return g
}

func (g *GoogleAnalytics) UnsetCampaign() Provider {
	g.campaign = nil
	return g
}

func (g *GoogleAnalytics) SetTrackingID(trackingID string) Provider {
	g.trackingID = trackingID
	return g
}

func (g *GoogleAnalytics) SetOptimizeID(optimizeID string) Provider {
	g.optimizeID = optimizeID
	return g
}

// WithCSP turns on Content Security Policy support. The nonce is generated
// once and kept by later calls.
func (g *GoogleAnalytics) WithCSP() Provider {
	if g.cspNonce != "" {
		return g
	}
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		logger.Error("failed to generate csp nonce", "error", err)
		return g
	}
	g.cspNonce = "nonce-" + n.String()
	return g
}

func (g *GoogleAnalytics) WithoutCSP() Provider {
	g.cspNonce = ""
	return g
}

func (g *GoogleAnalytics) CSPNonce() string {
	return g.cspNonce
}

func (g *GoogleAnalytics) SecureMeasurementURL() Provider {
	g.secureURL = true
	return g
}

func (g *GoogleAnalytics) InsecureMeasurementURL() Provider {
	g.secureURL = false
	return g
}

// Render assembles the script block and drains the tracking bag.
func (g *GoogleAnalytics) Render() string {
	var script []string

	script = append(script, g.blockBegin())

	var userID string
	if g.userID != "" {
		userID = fmt.Sprintf(", {'userId': '%s'}", g.userID)
	}
	if g.debug {
		script = append(script, fmt.Sprintf("ga('create', '%s', { 'cookieDomain': 'none' }, '%s'%s);", g.trackingID, g.trackerName, userID))
	} else {
		script = append(script, fmt.Sprintf("ga('create', '%s', '%s', '%s'%s);", g.trackingID, g.trackingDomain, g.trackerName, userID))
	}

	if g.ecommerceTracking {
		script = append(script, "ga('require', 'ecommerce');")
	}
	if g.displayFeatures {
		script = append(script, "ga('require', 'displayfeatures');")
	}
	if g.optimizeID != "" {
		script = append(script, fmt.Sprintf("ga('require', '%s');", g.optimizeID))
	}
	if g.anonymizeIP {
		script = append(script, "ga('set', 'anonymizeIp', true);")
	}
	if g.nonInteraction {
		script = append(script, "ga('set', 'nonInteraction', true);")
	}
	if g.campaign != nil {
		script = append(script, renderer.RenderCampaign(*g.campaign))
	}

	if pending := g.bag.Get(); len(pending) > 0 {
		script = append(script, strings.Join(pending, "\n"))
	}

	if g.autoTrack {
		script = append(script, "ga('send', 'pageview');")
	}
	if g.ecommerceTracking {
		script = append(script, "ga('ecommerce:send');")
	}

	script = append(script, g.blockEnd())

	return strings.Join(script, "")
}

func (g *GoogleAnalytics) blockBegin() string {
	if !g.renderScriptBlock {
		return ""
	}

	tag := "<script>"
	if g.cspNonce != "" {
		tag = `<script nonce="` + g.cspNonce + `">`
	}

	var suffix string
	if g.debug {
		suffix = "_debug"
	}
	return tag + fmt.Sprintf(loaderScript, suffix)
}

func (g *GoogleAnalytics) blockEnd() string {
	if !g.renderScriptBlock {
		return ""
	}
	return "</script>"
}
