package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Fingerprint returns the content hash used for search-index uniqueness.
// Unlike Same, it is sensitive to name and reason: a ban re-logged with a
// corrected name or reason is a new document worth indexing.
func Fingerprint(b Ban) string {
	enacted := ""
	if b.EnactedTime != nil {
		enacted = b.EnactedTime.UTC().Format(time.RFC3339Nano)
	}
	duration := ""
	if b.Duration != nil {
		duration = strconv.FormatInt(int64(*b.Duration/time.Second), 10)
	}

	sum := md5.Sum(fmt.Appendf(nil, "%s|%s|%s|%s|%s", b.ID.S64(), enacted, duration, b.PlayerName, b.Reason))
	return hex.EncodeToString(sum[:])
}
