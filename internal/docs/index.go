package docs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseIndex decodes the project index document.
func ParseIndex(data []byte) ([]ProjectInfo, error) {
	var projects []ProjectInfo
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("unmarshaling project index: %w", err)
	}
	return projects, nil
}

// FindProject looks a project up by path, then by case-insensitive title.
func FindProject(projects []ProjectInfo, key string) (ProjectInfo, bool) {
	for _, p := range projects {
		if p.Path == key {
			return p, true
		}
	}
	for _, p := range projects {
		if strings.EqualFold(p.Title, key) {
			return p, true
		}
	}
	return ProjectInfo{}, false
}
