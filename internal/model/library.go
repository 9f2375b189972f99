package model

import (
	"time"
)

// SavedQuery is a named query kept in the library
type SavedQuery struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	DatasetID string    `yaml:"dataset_id"`
	Query     string    `yaml:"query"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Collection groups saved queries under one Socrata domain
type Collection struct {
	Domain    string        `yaml:"domain"`
	Queries   []*SavedQuery `yaml:"queries"`
	CreatedAt time.Time     `yaml:"created_at"`
	UpdatedAt time.Time     `yaml:"updated_at"`
}

// NewCollection creates an empty collection for a domain
func NewCollection(domain string) *Collection {
	now := time.Now()
	return &Collection{
		Domain:    domain,
		Queries:   make([]*SavedQuery, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddQuery appends a query to the collection
func (c *Collection) AddQuery(query *SavedQuery) {
	c.Queries = append(c.Queries, query)
	c.UpdatedAt = time.Now()
}

// RemoveQuery removes a query by name
func (c *Collection) RemoveQuery(name string) bool {
	for i, q := range c.Queries {
		if q.Name == name {
			c.Queries = append(c.Queries[:i], c.Queries[i+1:]...)
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// FindQuery returns the query with the given name
func (c *Collection) FindQuery(name string) (*SavedQuery, bool) {
	for _, q := range c.Queries {
		if q.Name == name {
			return q, true
		}
	}
	return nil, false
}

// UpdateQuery overwrites the dataset and text of a named query
func (c *Collection) UpdateQuery(name, datasetID, text string) bool {
	q, ok := c.FindQuery(name)
	if !ok {
		return false
	}
	q.DatasetID = datasetID
	q.Query = text
	q.UpdatedAt = time.Now()
	c.UpdatedAt = q.UpdatedAt
	return true
}

// Names returns query names in insertion order
func (c *Collection) Names() []string {
	names := make([]string, 0, len(c.Queries))
	for _, q := range c.Queries {
		names = append(names, q.Name)
	}
	return names
}
