package dto

import (
	"encoding/json"
	"strings"
)

// TagList accepts either a JSON array of strings or a single
// comma-separated string; tags are trimmed and empties dropped.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*t = normalizeTags(arr)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*t = normalizeTags(strings.Split(s, ","))
	return nil
}

func normalizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

type IdeaInput struct {
	Title       string  `json:"title" validate:"required"`
	Summary     string  `json:"summary" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Tags        TagList `json:"tags"`
}
