package identity

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ChartPublicUUID identifies the public snapshot row for a chart.
func ChartPublicUUID(chartID string) uuid.UUID {
	return UUID("chartpub:chart_public:" + strings.TrimSpace(chartID))
}

// ThemeUUID derives a stable theme identity from its registered name.
func ThemeUUID(name string) uuid.UUID {
	return UUID("chartpub:theme:" + strings.ToLower(strings.TrimSpace(name)))
}

// PublishLogKey addresses the progress feed of one publish attempt.
// One key per chart/version pair; repeated attempts at the same version
// append to the same feed.
func PublishLogKey(chartID string, version int) string {
	return "chart/" + strings.TrimSpace(chartID) + "/publish/" + strconv.Itoa(version)
}

// chartTokenAlphabet is the base62 set; tokens are case-sensitive.
const chartTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ChartTokenLength is the fixed width of chart identifiers.
const ChartTokenLength = 5

// NewChartToken generates a random 5-character chart identifier. Uniqueness
// is enforced by the caller (retry on repository conflict).
func NewChartToken() (string, error) {
	buf := make([]byte, ChartTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("identity: chart token: %w", err)
	}
	out := make([]byte, ChartTokenLength)
	for i, b := range buf {
		out[i] = chartTokenAlphabet[int(b)%len(chartTokenAlphabet)]
	}
	return string(out), nil
}
