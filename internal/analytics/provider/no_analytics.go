package provider

import "github.com/ignite/analytics-tagger/internal/analytics/data"

// NoAnalytics satisfies Provider without tracking anything.
type NoAnalytics struct{}

var _ Provider = NoAnalytics{}

func (n NoAnalytics) Render() string { return "" }

func (n NoAnalytics) TrackPage(page, title, hitType string) {}

func (n NoAnalytics) TrackEvent(category, action, label string, value *int) {}

func (n NoAnalytics) TrackCustom(code string) {}

func (n NoAnalytics) SetCustomDimension(dimension, value string) Provider { return n }

func (n NoAnalytics) SetCustomDimensions(dimensions map[string]any) (Provider, error) {
	return n, nil
}

func (n NoAnalytics) EcommerceAddTransaction(tx Transaction) (Provider, error) { return n, nil }

func (n NoAnalytics) EcommerceAddItem(item Item) (Provider, error) { return n, nil }

func (n NoAnalytics) EnableDisplayFeatures() Provider { return n }

func (n NoAnalytics) DisableDisplayFeatures() Provider { return n }

func (n NoAnalytics) EnableAutoTracking() Provider { return n }

func (n NoAnalytics) DisableAutoTracking() Provider { return n }

func (n NoAnalytics) EnableEcommerceTracking() Provider { return n }

func (n NoAnalytics) DisableEcommerceTracking() Provider { return n }

func (n NoAnalytics) EcommerceTracking() bool { return false }

func (n NoAnalytics) EnableScriptBlock() Provider { return n }

func (n NoAnalytics) DisableScriptBlock() Provider { return n }

func (n NoAnalytics) NonInteraction() bool { return false }

func (n NoAnalytics) SetNonInteraction(nonInteraction bool) Provider { return n }

func (n NoAnalytics) SetUserID(userID string) Provider { return n }

func (n NoAnalytics) UnsetUserID() Provider { return n }

func (n NoAnalytics) SetCampaign(c data.Campaign) Provider { return n }

func (n NoAnalytics) UnsetCampaign() Provider { return n }

func (n NoAnalytics) SetTrackingID(trackingID string) Provider { return n }

func (n NoAnalytics) SetOptimizeID(optimizeID string) Provider { return n }

func (n NoAnalytics) WithCSP() Provider { return n }

func (n NoAnalytics) WithoutCSP() Provider { return n }

func (n NoAnalytics) CSPNonce() string { return "" }

func (n NoAnalytics) SecureMeasurementURL() Provider { return n }

func (n NoAnalytics) InsecureMeasurementURL() Provider { return n }

// TrackMeasurementURL returns an empty URL and leaves the request untouched.
func (n NoAnalytics) TrackMeasurementURL(req MeasurementRequest) Measurement {
	return Measurement{ClientID: req.ClientID, Event: req.Event, Campaign: req.Campaign}
}
