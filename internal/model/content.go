package model

import "encoding/json"

// Topic is a directory of articles in the content tree.
type Topic struct {
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle"`
	Icon            string     `json:"icon"`
	IconDescription string     `json:"iconDescription"`
	Special         bool       `json:"special"`
	Render          *string    `json:"render"`
	Route           string     `json:"route"`
	Articles        []*Article `json:"articles"`
}

// Article is a single JSON or markdown document inside a topic.
// Fields holds the raw JSON document so custom keys reach the client untouched.
type Article struct {
	Route       string          `json:"route"`
	Title       string          `json:"title"`
	Subtitle    string          `json:"subtitle,omitempty"`
	Description string          `json:"description,omitempty"`
	HTMLContent string          `json:"html,omitempty"`
	Fields      json.RawMessage `json:"-"`
}

// MarshalJSON merges the article's own keys over the raw document.
func (a *Article) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if len(a.Fields) > 0 {
		err := json.Unmarshal(a.Fields, &out)
		if err != nil {
			return nil, err
		}
	}

	out["route"] = a.Route
	out["title"] = a.Title
	if a.Subtitle != "" {
		out["subtitle"] = a.Subtitle
	}
	if a.Description != "" {
		out["description"] = a.Description
	}
	if a.HTMLContent != "" {
		out["html"] = a.HTMLContent
	}
	return json.Marshal(out)
}
