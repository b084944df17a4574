// Package provider renders analytics tracking code.
//
// A Provider collects configuration and tracking commands for one request and
// renders them into a single script block. GoogleAnalytics emits analytics.js
// ga() commands; NoAnalytics accepts the same calls and renders nothing, so
// call sites never need to check whether tracking is enabled.
//
// String values are interpolated verbatim inside single quotes. Callers must
// not pass untrusted input containing quotes or script-breaking sequences.
package provider

import (
	"errors"
	"fmt"

	"github.com/ignite/analytics-tagger/internal/analytics/data"
	"github.com/ignite/analytics-tagger/internal/analytics/trackingbag"
	"github.com/ignite/analytics-tagger/internal/config"
)

const (
	NameGoogleAnalytics = "GoogleAnalytics"
	NameNoAnalytics     = "NoAnalytics"
)

var (
	// ErrMissingTrackingID is returned when a provider is built without a tracking id.
	ErrMissingTrackingID = errors.New("analytics: tracking_id is required")
	// ErrUnknownProvider is returned by New for a provider name it does not know.
	ErrUnknownProvider = errors.New("analytics: unknown provider")
)

// Provider is the tracking API exposed to application code.
type Provider interface {
	// Render returns the embeddable script block and drains the tracking bag.
	Render() string

	TrackPage(page, title, hitType string)
	TrackEvent(category, action, label string, value *int)
	TrackCustom(code string)
	SetCustomDimension(dimension, value string) Provider
	SetCustomDimensions(dimensions map[string]any) (Provider, error)

	EcommerceAddTransaction(tx Transaction) (Provider, error)
	EcommerceAddItem(item Item) (Provider, error)

	EnableDisplayFeatures() Provider
	DisableDisplayFeatures() Provider
	EnableAutoTracking() Provider
	DisableAutoTracking() Provider
	EnableEcommerceTracking() Provider
	DisableEcommerceTracking() Provider
	EcommerceTracking() bool
	EnableScriptBlock() Provider
	DisableScriptBlock() Provider

	NonInteraction() bool
	SetNonInteraction(nonInteraction bool) Provider

	SetUserID(userID string) Provider
	UnsetUserID() Provider
	SetCampaign(c data.Campaign) Provider
	UnsetCampaign() Provider
	SetTrackingID(trackingID string) Provider
	SetOptimizeID(optimizeID string) Provider

	WithCSP() Provider
	WithoutCSP() Provider
	// CSPNonce returns the current nonce, or "" when CSP is off.
	CSPNonce() string

	SecureMeasurementURL() Provider
	InsecureMeasurementURL() Provider
	TrackMeasurementURL(req MeasurementRequest) Measurement
}

// Transaction is an ecommerce:addTransaction payload. Nil fields are left out.
type Transaction struct {
	ID          string   `json:"id"`
	Affiliation *string  `json:"affiliation,omitempty"`
	Revenue     *float64 `json:"revenue,omitempty"`
	Shipping    *float64 `json:"shipping,omitempty"`
	Tax         *float64 `json:"tax,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
}

// Item is an ecommerce:addItem payload. Nil fields are left out.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	SKU      *string  `json:"sku,omitempty"`
	Category *string  `json:"category,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
	Currency *string  `json:"currency,omitempty"`
}

// New builds the provider named in cfg. An empty name selects NoAnalytics.
// The global disable_script_block flag is applied after construction.
func New(cfg config.AnalyticsConfig, bag *trackingbag.Bag, opts ...Option) (Provider, error) {
	var p Provider
	switch cfg.Provider {
	case NameGoogleAnalytics:
		ga, err := NewGoogleAnalytics(cfg.Configurations.GoogleAnalytics, bag, opts...)
		if err != nil {
			return nil, err
		}
		p = ga
	case NameNoAnalytics, "":
		p = NoAnalytics{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.DisableScriptBlock {
		p.DisableScriptBlock()
	}
	return p, nil
}
