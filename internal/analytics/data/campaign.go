package data

const (
	DefaultCampaignSource = "newsletter"
	DefaultCampaignMedium = "email"
)

// Campaign holds the attribution metadata for marketing traffic.
// Every field is optional; an unset field reads as "".
type Campaign struct {
	Source  string `json:"source,omitempty"`
	Medium  string `json:"medium,omitempty"`
	Name    string `json:"name,omitempty"`
	Keyword string `json:"keyword,omitempty"`
	Content string `json:"content,omitempty"`
	ID      string `json:"id,omitempty"`
}

// NewCampaign returns a campaign with the newsletter/email defaults.
func NewCampaign(name string) Campaign {
	return Campaign{
		Source: DefaultCampaignSource,
		Medium: DefaultCampaignMedium,
		Name:   name,
	}
}

func (c Campaign) WithSource(source string) Campaign {
	c.Source = source
	return c
}

func (c Campaign) WithMedium(medium string) Campaign {
	c.Medium = medium
	return c
}

func (c Campaign) WithKeyword(keyword string) Campaign {
	c.Keyword = keyword
	return c
}

func (c Campaign) WithContent(content string) Campaign {
	c.Content = content
	return c
}

func (c Campaign) WithID(id string) Campaign {
	c.ID = id
	return c
}
