package core

// RenderRecord is the result of rendering one locale.
type RenderRecord struct {
	Locale   string
	Markup   string
	Hash     string
	Artifact string
	Reused   bool
}

// DedupCache maps a markup hash to the artifact that first produced it. One
// cache lives for exactly one build and has a single owner.
type DedupCache struct {
	artifacts map[string]string
	hashes    []string
}

func NewDedupCache() *DedupCache {
	return &DedupCache{
		artifacts: make(map[string]string),
	}
}

func (c *DedupCache) Lookup(hash string) (string, bool) {
	artifact, ok := c.artifacts[hash]
	return artifact, ok
}

// Store keeps the first artifact registered for a hash.
func (c *DedupCache) Store(hash, artifact string) {
	if _, exists := c.artifacts[hash]; exists {
		return
	}
	c.artifacts[hash] = artifact
	c.hashes = append(c.hashes, hash)
}

func (c *DedupCache) Len() int {
	return len(c.hashes)
}

// Artifacts lists distinct artifacts in the order they were first stored.
func (c *DedupCache) Artifacts() []string {
	artifacts := make([]string, 0, len(c.hashes))
	for _, hash := range c.hashes {
		artifacts = append(artifacts, c.artifacts[hash])
	}
	return artifacts
}
