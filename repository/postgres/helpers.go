package postgres

import (
	"encoding/json"
	"time"

	"github.com/taskpilot/backend/domain"
)

func marshalJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

// storeErr classifies a raw driver error as an availability failure so the
// transport layer maps it to 503 instead of a generic 500.
func storeErr(msg string, err error) error {
	return domain.WrapError(domain.ErrCodeUnavailable, msg, err)
}
