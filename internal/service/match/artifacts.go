package match

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ArtifactSource returns the wasm bytes of a named agent.
type ArtifactSource interface {
	GetArtifact(ctx context.Context, name string) ([]byte, error)
}

// cachedArtifacts keeps recently used artifacts in memory. Stored agents are
// never overwritten, so entries never go stale.
type cachedArtifacts struct {
	source ArtifactSource
	cache  *lru.Cache[string, []byte]
}

func newCachedArtifacts(source ArtifactSource, size int) (*cachedArtifacts, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &cachedArtifacts{source: source, cache: cache}, nil
}

func (c *cachedArtifacts) GetArtifact(ctx context.Context, name string) ([]byte, error) {
	if wasm, ok := c.cache.Get(name); ok {
		return wasm, nil
	}
	wasm, err := c.source.GetArtifact(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Add(name, wasm)
	return wasm, nil
}
