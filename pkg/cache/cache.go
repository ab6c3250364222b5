package cache

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrKeyExists = errors.New("key already exists in cache")

// Cache is a weight bounded cache that evicts the least recently used entries
// once the total weight exceeds its budget
type Cache interface {
	SetVerbose(verbose bool)
	GetWeight() int
	GetBudget() int
	Insert(key string, value interface{}, weight int) error
	Retrieve(key string) (interface{}, bool)
	Remove(key string) bool
	Clear()
}

type entry struct {
	newer, older *entry

	key    string
	value  interface{}
	weight int
}

type cache struct {
	log *logrus.Entry

	mu      sync.Mutex
	newest  *entry
	oldest  *entry
	entries map[string]*entry
	weight  int
	budget  int
	verbose bool
}

func NewCache(budget int) Cache {
	return &cache{
		log:     logrus.StandardLogger().WithField("type", "cache"),
		entries: make(map[string]*entry),
		budget:  budget,
	}
}

func (c *cache) SetVerbose(verbose bool) {
	c.mu.Lock()
	c.verbose = verbose
	c.mu.Unlock()
}

func (c *cache) GetWeight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

func (c *cache) GetBudget() int {
	return c.budget
}

// Insert adds a new entry as the most recently used. Existing keys are never
// overwritten.
func (c *cache) Insert(key string, value interface{}, weight int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return ErrKeyExists
	}

	e := &entry{
		key:    key,
		value:  value,
		weight: weight,
	}
	c.pushNewest(e)
	c.entries[key] = e
	c.weight += weight

	for c.weight > c.budget && c.oldest != nil {
		evicted := c.oldest
		c.unlink(evicted)
		delete(c.entries, evicted.key)
		c.weight -= evicted.weight

		if c.verbose {
			c.log.WithFields(logrus.Fields{
				"key":          evicted.key,
				"weight":       evicted.weight,
				"spare_weight": c.budget - c.weight,
			}).Debug("evicted cache entry")
		}
	}

	return nil
}

// Retrieve returns the value for key and marks it as the most recently used
func (c *cache) Retrieve(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if e != c.newest {
		c.unlink(e)
		c.pushNewest(e)
	}
	return e.value, true
}

func (c *cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}

	c.unlink(e)
	delete(c.entries, key)
	c.weight -= e.weight
	return true
}

func (c *cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.newest = nil
	c.oldest = nil
	c.entries = make(map[string]*entry)
	c.weight = 0
}

func (c *cache) pushNewest(e *entry) {
	e.older = c.newest
	e.newer = nil
	if c.newest != nil {
		c.newest.newer = e
	}
	c.newest = e
	if c.oldest == nil {
		c.oldest = e
	}
}

func (c *cache) unlink(e *entry) {
	if e.newer != nil {
		e.newer.older = e.older
	} else {
		c.newest = e.older
	}

	if e.older != nil {
		e.older.newer = e.newer
	} else {
		c.oldest = e.newer
	}

	e.newer = nil
	e.older = nil
}
