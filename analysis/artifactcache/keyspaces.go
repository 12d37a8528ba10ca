package artifactcache

import (
	"context"
	"errors"
	"time"

	"encore.dev/storage/cache"

	"encore.app/analysis/model"
)

// GeneralCluster holds general-purpose artifacts and the submission-dedupe
// keyspace. Exported so middleware can declare keyspaces on it.
var GeneralCluster = cache.NewCluster("artifact-cache", cache.ClusterConfig{
	EvictionPolicy: cache.AllKeysLRU,
})

// bookkeepingCluster is the dedicated instance for backpressure bookkeeping
// and vector-index artifacts, isolated so general cache churn cannot evict
// either. The two stay behind one Backing interface so the split can change
// without touching callers.
var bookkeepingCluster = cache.NewCluster("bookkeeping-cache", cache.ClusterConfig{
	EvictionPolicy: cache.AllKeysLRU,
})

var generalArtifacts = cache.NewStructKeyspace[string, model.Artifact](GeneralCluster, cache.KeyspaceConfig{
	KeyPattern:    "artifact/:key",
	DefaultExpiry: cache.ExpireIn(24 * time.Hour),
})

var vectorArtifacts = cache.NewStructKeyspace[string, model.Artifact](bookkeepingCluster, cache.KeyspaceConfig{
	KeyPattern:    "vector/:key",
	DefaultExpiry: cache.ExpireIn(7 * 24 * time.Hour),
})

var loadSnapshots = cache.NewStructKeyspace[string, model.LoadSnapshot](bookkeepingCluster, cache.KeyspaceConfig{
	KeyPattern:    "load/:key",
	DefaultExpiry: cache.ExpireIn(time.Minute),
})

// PublishLoadSnapshot mirrors the controller's load view into the
// bookkeeping cluster. Best effort; callers run it asynchronously.
func PublishLoadSnapshot(ctx context.Context, snap model.LoadSnapshot) error {
	return loadSnapshots.Set(ctx, "current", snap)
}

// Ping checks that both cache clusters answer reads. A miss is a healthy
// answer; only transport-level failures count.
func Ping(ctx context.Context) error {
	if _, err := generalArtifacts.Get(ctx, "healthcheck"); err != nil && !errors.Is(err, cache.Miss) {
		return err
	}
	if _, err := loadSnapshots.Get(ctx, "current"); err != nil && !errors.Is(err, cache.Miss) {
		return err
	}
	return nil
}

// ClusterBacking implements Backing over the two cache clusters.
type ClusterBacking struct{}

func (ClusterBacking) keyspace(class model.ArtifactClass) *cache.StructKeyspace[string, model.Artifact] {
	if class == model.ArtifactClassVector {
		return vectorArtifacts
	}
	return generalArtifacts
}

// Get fetches a stored artifact, returning ErrMiss when absent.
func (b ClusterBacking) Get(ctx context.Context, class model.ArtifactClass, fingerprint string) (model.Artifact, error) {
	art, err := b.keyspace(class).Get(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, cache.Miss) {
			return model.Artifact{}, ErrMiss
		}
		return model.Artifact{}, err
	}
	return art, nil
}

// Set stores a freshly computed artifact.
func (b ClusterBacking) Set(ctx context.Context, class model.ArtifactClass, art model.Artifact) error {
	return b.keyspace(class).Set(ctx, art.Fingerprint, art)
}

// Delete drops an unreadable entry so the next lookup recomputes it.
func (b ClusterBacking) Delete(ctx context.Context, class model.ArtifactClass, fingerprint string) error {
	_, err := b.keyspace(class).Delete(ctx, fingerprint)
	return err
}
