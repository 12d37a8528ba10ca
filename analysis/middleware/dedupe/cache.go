package dedupe

import (
	"time"

	"encore.dev/storage/cache"

	"encore.app/analysis/artifactcache"
	"encore.app/analysis/model"
)

// SubmissionCache stores dedupe state per caller-supplied request id. It
// lives on the general cluster; the dedicated bookkeeping cluster is
// reserved for backpressure and vector-index data.
var SubmissionCache = cache.NewStructKeyspace[model.DedupeKey, model.DedupeEntry](
	artifactcache.GeneralCluster,
	cache.KeyspaceConfig{
		KeyPattern:    "dedupe/:Resource/:Key",
		DefaultExpiry: cache.ExpireIn(24 * time.Hour),
	},
)
