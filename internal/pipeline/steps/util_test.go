package steps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedTime = time.Now()

func TestNormalizeMode_RewritesHyphensToUnderscores(t *testing.T) {
	assert.Equal(t, "mode_clustered", normalizeMode("mode-clustered"))
	assert.Equal(t, "positive_only", normalizeMode("positive-only"))
	assert.Equal(t, "allow_negative", normalizeMode("allow-negative"))
}

func TestSortedKeys_IsDeterministic(t *testing.T) {
	m := map[string]string{"Source 2": "b.mkv", "Source 1": "a.mkv", "Source 3": "c.mkv"}
	assert.Equal(t, []string{"Source 1", "Source 2", "Source 3"}, sortedKeys(m))
}
