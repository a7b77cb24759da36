package types

import "strings"

// PostContent is the structured body of a scheduled post, stored as jsonb.
type PostContent struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags,omitempty"`
	Link     string   `json:"link,omitempty"`
}

// RenderCaption flattens the caption plus hashtags into the text sent to a platform.
func (c PostContent) RenderCaption() string {
	if len(c.Hashtags) == 0 {
		return c.Caption
	}
	tags := make([]string, 0, len(c.Hashtags))
	for _, tag := range c.Hashtags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return c.Caption
	}
	if c.Caption == "" {
		return strings.Join(tags, " ")
	}
	return c.Caption + "\n\n" + strings.Join(tags, " ")
}
