package books

import (
	"net/http"
	"strconv"
)

// pathID reads the {id} wildcard. Only positive decimal integers are ids.
func pathID(r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" || !isDigits(raw) {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
