package unfold

import "sync"

type cacheKey struct {
	dims       Dims
	resolution float64
	margin     int
	name       string
	cells      string
}

// Cache memoizes BuildLayout. It keeps the most recently inserted keys up
// to its capacity and evicts the oldest insertion first.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey]*Layout
	order    []cacheKey
	hits     int
	misses   int
}

// NewCache creates a layout cache holding up to capacity layouts.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey]*Layout),
	}
}

// Layout returns the layout for the inputs, computing it on first use.
// Rejected inputs are not stored, so they never displace valid layouts.
func (c *Cache) Layout(dims Dims, resolution float64, margin int, tmpl GridTemplate) (*Layout, error) {
	key := cacheKey{dims: dims, resolution: resolution, margin: margin, name: tmpl.Name, cells: tmpl.Key()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.entries[key]; ok {
		c.hits++
		return l, nil
	}
	c.misses++

	l, err := BuildLayout(dims, resolution, margin, tmpl)
	if err != nil {
		return nil, err
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = l
	c.order = append(c.order, key)
	return l, nil
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
