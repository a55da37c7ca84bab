package jobs

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SuggestJobID returns an id of the form <prefix>-<yyyymmdd-hhmmss>-<random>
func SuggestJobID(prefix string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102-150405"), random)
}
