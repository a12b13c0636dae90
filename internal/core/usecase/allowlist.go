package usecase

import (
	"strings"
)

// AllowList accepts filenames by extension, compared case-insensitively and
// without the leading dot.
type AllowList struct {
	extensions map[string]struct{}
}

func NewAllowList(extensions []string) AllowList {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return AllowList{extensions: set}
}

func (a AllowList) IsAllowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := a.extensions[strings.ToLower(filename[idx+1:])]
	return ok
}
