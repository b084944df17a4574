package provider

import (
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/analytics-tagger/internal/analytics/data"
	"github.com/ignite/analytics-tagger/internal/config"
)

func newMeasurementGA(t *testing.T) (*GoogleAnalytics, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC))
	ga, err := NewGoogleAnalytics(config.GoogleAnalyticsConfig{TrackingID: "UA-1"}, nil, WithClock(mock))
	require.NoError(t, err)
	return ga, mock
}

func TestTrackMeasurementURL_Defaults(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	m := ga.TrackMeasurementURL(MeasurementRequest{
		MetricName:  "cm1",
		MetricValue: "1",
		Event:       data.NewEvent(),
		Campaign:    data.NewCampaign(""),
		ClientID:    "client-42",
	})

	want := "https://www.google-analytics.com/collect?" +
		"v=1&tid=UA-1&cid=client-42&t=event&ec=email&ea=open&el=client-42" +
		"&cs=newsletter&cm=email&cn=Campaign 2026-10-15&cm1=1"
	assert.Equal(t, want, m.URL)
	assert.Equal(t, "client-42", m.ClientID)
	assert.Equal(t, "client-42", m.Event.Label)
	assert.Equal(t, "Campaign 2026-10-15", m.Campaign.Name)
}

func TestTrackMeasurementURL_GeneratedClientID(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	m := ga.TrackMeasurementURL(MeasurementRequest{Event: data.NewEvent(), Campaign: data.NewCampaign("x")})

	require.True(t, strings.HasPrefix(m.ClientID, "track_"))
	assert.Equal(t, m.ClientID, m.Event.Label)
	assert.Contains(t, m.URL, "&cid="+m.ClientID+"&")
	assert.Contains(t, m.URL, "&el="+m.ClientID+"&")

	other := ga.TrackMeasurementURL(MeasurementRequest{Event: data.NewEvent()})
	assert.NotEqual(t, m.ClientID, other.ClientID)
}

func TestTrackMeasurementURL_KeepsGivenLabelAndName(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	ev := data.NewEvent()
	ev.Label = "subscriber-7"
	m := ga.TrackMeasurementURL(MeasurementRequest{
		Event:    ev,
		Campaign: data.NewCampaign("october"),
		ClientID: "c1",
	})

	assert.Contains(t, m.URL, "&el=subscriber-7&")
	assert.Contains(t, m.URL, "&cn=october")
	assert.Equal(t, "subscriber-7", m.Event.Label)
}

func TestTrackMeasurementURL_DoesNotMutateInput(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	req := MeasurementRequest{Event: data.NewEvent(), Campaign: data.NewCampaign(""), ClientID: "c1"}
	m := ga.TrackMeasurementURL(req)

	assert.Empty(t, req.Event.Label)
	assert.Empty(t, req.Campaign.Name)
	assert.Equal(t, "c1", m.Event.Label)
}

func TestTrackMeasurementURL_ParamsMerge(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	m := ga.TrackMeasurementURL(MeasurementRequest{
		MetricName:  "cm1",
		MetricValue: "1",
		Event:       data.NewEvent(),
		Campaign:    data.NewCampaign("c"),
		ClientID:    "c1",
		Params: []Param{
			{Key: "dp", Value: "/newsletter"},
			{Key: "ea", Value: "click"},
			{Key: "url", Value: "https://collector.example.com/collect?"},
			{Key: "dh", Value: "example.com"},
		},
	})

	assert.Equal(t, "https://collector.example.com/collect?"+
		"v=1&tid=UA-1&cid=c1&t=event&ec=email&ea=click&el=c1&cs=newsletter&cm=email&cn=c&cm1=1"+
		"&dp=/newsletter&dh=example.com", m.URL)
}

func TestTrackMeasurementURL_OmitsFalsyValues(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	m := ga.TrackMeasurementURL(MeasurementRequest{
		MetricName:  "cm1",
		MetricValue: "0",
		Event:       data.Event{Category: "email", Action: "open"},
		Campaign:    data.Campaign{Name: "c"},
		ClientID:    "c1",
		Params:      []Param{{Key: "empty", Value: ""}},
	})

	assert.Equal(t, "https://www.google-analytics.com/collect?v=1&tid=UA-1&cid=c1&ec=email&ea=open&el=c1&cn=c", m.URL)
}

func TestTrackMeasurementURL_Insecure(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	ga.InsecureMeasurementURL()
	m := ga.TrackMeasurementURL(MeasurementRequest{ClientID: "c1"})
	assert.True(t, strings.HasPrefix(m.URL, "http://www.google-analytics.com/collect?v=1"))

	ga.SecureMeasurementURL()
	m = ga.TrackMeasurementURL(MeasurementRequest{ClientID: "c1"})
	assert.True(t, strings.HasPrefix(m.URL, "https://"))
}

func TestTrackMeasurementURL_LeavesBagAlone(t *testing.T) {
	ga, bag := newTestGA(t, config.GoogleAnalyticsConfig{})
	ga.TrackCustom("x();")

	ga.TrackMeasurementURL(MeasurementRequest{Event: data.NewEvent()})
	assert.Equal(t, 1, bag.Len())
}

func TestTrackMeasurementURL_CampaignDateFollowsClock(t *testing.T) {
	ga, mock := newMeasurementGA(t)
	mock.Add(48 * time.Hour)

	m := ga.TrackMeasurementURL(MeasurementRequest{ClientID: "c1"})
	assert.Equal(t, "Campaign 2026-10-17", m.Campaign.Name)
}

func TestTrackMeasurementURL_MetricOverridesDefaultKey(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	m := ga.TrackMeasurementURL(MeasurementRequest{
		MetricName:  "ea",
		MetricValue: "click",
		Event:       data.NewEvent(),
		Campaign:    data.NewCampaign("x"),
		ClientID:    "c",
	})

	assert.Equal(t, "https://www.google-analytics.com/collect?"+
		"v=1&tid=UA-1&cid=c&t=event&ec=email&ea=click&el=c&cs=newsletter&cm=email&cn=x", m.URL)
	assert.Equal(t, 1, strings.Count(m.URL, "ea="))
}

func TestTrackMeasurementURL_ParamsOverrideMetric(t *testing.T) {
	ga, _ := newMeasurementGA(t)

	m := ga.TrackMeasurementURL(MeasurementRequest{
		MetricName:  "cm1",
		MetricValue: "1",
		ClientID:    "c",
		Campaign:    data.NewCampaign("x"),
		Params:      []Param{{Key: "cm1", Value: "5"}},
	})

	assert.True(t, strings.HasSuffix(m.URL, "&cn=x&cm1=5"))
	assert.Equal(t, 1, strings.Count(m.URL, "cm1="))
}
