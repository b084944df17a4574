package provider

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/analytics-tagger/internal/analytics/data"
)

const (
	measurementHost = "www.google-analytics.com/collect"
	clientIDPrefix  = "track_"

	// paramURL in MeasurementRequest.Params replaces the endpoint instead of
	// becoming a query parameter.
	paramURL = "url"
)

// Param is one query parameter of a measurement URL.
type Param struct {
	Key   string
	Value string
}

// MeasurementRequest describes a hit for the measurement protocol.
type MeasurementRequest struct {
	MetricName  string
	MetricValue string
	Event       data.Event
	Campaign    data.Campaign
	// ClientID identifies the visitor; generated when empty.
	ClientID string
	// Params are merged over the defaults in order.
	Params []Param
}

// Measurement is a built measurement URL together with the event, campaign
// and client id after defaults were filled in.
type Measurement struct {
	URL      string
	ClientID string
	Event    data.Event
	Campaign data.Campaign
}

// TrackMeasurementURL builds a URL that records a hit without JavaScript,
// e.g. an open-tracking image in a newsletter. It does not touch the tracking
// bag. An empty event label defaults to the client id and an empty campaign
// name to "Campaign <today>".
//
// Parameters are emitted as key=value in declaration order with caller params
// merged on top. Empty and "0" values are left out. Values are not escaped.
func (g *GoogleAnalytics) TrackMeasurementURL(req MeasurementRequest) Measurement {
	clientID := req.ClientID
	if clientID == "" {
		clientID = clientIDPrefix + uuid.NewString()
	}

	event := req.Event
	if event.Label == "" {
		event.Label = clientID
	}
	campaign := req.Campaign
	if campaign.Name == "" {
		campaign.Name = "Campaign " + g.clock.Now().Format("2006-01-02")
	}

	scheme := "https"
	if !g.secureURL {
		scheme = "http"
	}
	base := scheme + "://" + measurementHost

	params := []Param{
		{"v", "1"},
		{"tid", g.trackingID},
		{"cid", clientID},
		{"t", event.HitType},
		{"ec", event.Category},
		{"ea", event.Action},
		{"el", event.Label},
		{"cs", campaign.Source},
		{"cm", campaign.Medium},
		{"cn", campaign.Name},
	}
	// The metric is merged like any extra, so a metric named after a default
	// key replaces that key in place.
	extra := req.Params
	if req.MetricName != "" {
		extra = append([]Param{{req.MetricName, req.MetricValue}}, req.Params...)
	}

	params, base = mergeParams(params, extra, base)

	var query []string
	for _, p := range params {
		if isEmptyValue(p.Value) {
			continue
		}
		query = append(query, p.Key+"="+p.Value)
	}

	return Measurement{
		URL:      strings.TrimRight(base, "?") + "?" + strings.Join(query, "&"),
		ClientID: clientID,
		Event:    event,
		Campaign: campaign,
	}
}

// mergeParams overrides defaults in place, appends new keys and pulls out the
// url override.
func mergeParams(defaults, extra []Param, base string) ([]Param, string) {
	index := make(map[string]int, len(defaults))
	for i, p := range defaults {
		index[p.Key] = i
	}
	for _, p := range extra {
		if p.Key == paramURL {
			base = p.Value
			continue
		}
		if i, ok := index[p.Key]; ok {
			defaults[i].Value = p.Value
			continue
		}
		index[p.Key] = len(defaults)
		defaults = append(defaults, p)
	}
	return defaults, base
}

func isEmptyValue(v string) bool {
	return v == "" || v == "0"
}
