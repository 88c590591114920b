package episode

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

func newEpisodeID(now time.Time) (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "ep_" + now.UTC().Format("20060102") + "_" + base64.RawURLEncoding.EncodeToString(b), nil
}
