// Package renderer turns analytics value objects into ga() script statements.
package renderer

import (
	"fmt"
	"strings"

	"github.com/ignite/analytics-tagger/internal/analytics/data"
)

// Renderer produces a script fragment.
type Renderer interface {
	Render() string
}

// CampaignRenderer renders the campaign dimensions of a tracker.
type CampaignRenderer struct {
	campaign data.Campaign
}

func NewCampaignRenderer(c data.Campaign) *CampaignRenderer {
	return &CampaignRenderer{campaign: c}
}

// Render emits one ga('set', ...) statement per set field in the order
// name, source, medium, keyword, content, id. "" and "0" count as unset.
func (r *CampaignRenderer) Render() string {
	fields := []struct {
		dimension string
		value     string
	}{
		{"campaignName", r.campaign.Name},
		{"campaignSource", r.campaign.Source},
		{"campaignMedium", r.campaign.Medium},
		{"campaignKeyword", r.campaign.Keyword},
		{"campaignContent", r.campaign.Content},
		{"campaignId", r.campaign.ID},
	}

	var b strings.Builder
	for _, f := range fields {
		if f.value == "" || f.value == "0" {
			continue
		}
		fmt.Fprintf(&b, "ga('set', '%s', '%s');", f.dimension, f.value)
	}
	return b.String()
}

// RenderCampaign is shorthand for NewCampaignRenderer(c).Render().
func RenderCampaign(c data.Campaign) string {
	return NewCampaignRenderer(c).Render()
}
