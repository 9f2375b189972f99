package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ytget/soql-studio/internal/model"
)

// FileName is the default library file name
const FileName = "queries.yaml"

const documentVersion = 1

var (
	// ErrQueryNotFound is returned when a named query does not exist
	ErrQueryNotFound = errors.New("query not found")
	// ErrDuplicateQuery is returned when adding a name that is already taken
	ErrDuplicateQuery = errors.New("query already exists")
	// ErrEmptyName is returned for blank query names or domains
	ErrEmptyName = errors.New("query name and domain must not be empty")
)

type document struct {
	Version     int                 `yaml:"version"`
	Collections []*model.Collection `yaml:"collections"`
}

// Store is a saved query library backed by a YAML file.
type Store struct {
	path   string
	logger *zap.Logger

	mu          sync.Mutex
	collections map[string]*model.Collection
}

// NewStore creates an empty store persisted at path
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:        path,
		logger:      logger,
		collections: make(map[string]*model.Collection),
	}
}

// Path returns the library file path
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory library with the file contents. A missing
// file leaves the library empty.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("query library not found, starting empty", zap.String("path", s.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read query library: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse query library: %w", err)
	}

	collections := make(map[string]*model.Collection, len(doc.Collections))
	for _, c := range doc.Collections {
		if c == nil || c.Domain == "" {
			continue
		}
		collections[c.Domain] = c
	}

	s.mu.Lock()
	s.collections = collections
	s.mu.Unlock()
	return nil
}

// save writes the library; the caller holds s.mu
func (s *Store) save() error {
	doc := document{Version: documentVersion}
	for _, domain := range s.domainsLocked() {
		doc.Collections = append(doc.Collections, s.collections[domain])
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode query library: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create library directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write query library: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace query library: %w", err)
	}
	return nil
}

// AddQuery stores a new named query under domain
func (s *Store) AddQuery(domain, name, datasetID, query string) (model.SavedQuery, error) {
	domain, name = strings.TrimSpace(domain), strings.TrimSpace(name)
	if domain == "" || name == "" {
		return model.SavedQuery{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(domain)
	if _, exists := c.FindQuery(name); exists {
		return model.SavedQuery{}, fmt.Errorf("%w: %s", ErrDuplicateQuery, name)
	}

	now := time.Now()
	q := &model.SavedQuery{
		ID:        uuid.NewString(),
		Name:      name,
		DatasetID: datasetID,
		Query:     query,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.AddQuery(q)

	if err := s.save(); err != nil {
		c.RemoveQuery(name)
		return model.SavedQuery{}, err
	}
	s.logger.Info("query added", zap.String("domain", domain), zap.String("name", name))
	return *q, nil
}

// SaveQuery updates the named query, adding it when it does not exist yet.
func (s *Store) SaveQuery(domain, name, datasetID, query string) (model.SavedQuery, error) {
	saved, err := s.AddQuery(domain, name, datasetID, query)
	if !errors.Is(err, ErrDuplicateQuery) {
		return saved, err
	}

	domain, name = strings.TrimSpace(domain), strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(domain)
	c.UpdateQuery(name, datasetID, query)
	if err := s.save(); err != nil {
		return model.SavedQuery{}, err
	}
	q, _ := c.FindQuery(name)
	s.logger.Info("query updated", zap.String("domain", domain), zap.String("name", name))
	return *q, nil
}

// Remove deletes a named query
func (s *Store) Remove(domain, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[domain]
	if !ok || !c.RemoveQuery(name) {
		return fmt.Errorf("%w: %s", ErrQueryNotFound, name)
	}
	if len(c.Queries) == 0 {
		delete(s.collections, domain)
	}
	return s.save()
}

// Find returns a copy of the named query
func (s *Store) Find(domain, name string) (model.SavedQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[domain]; ok {
		if q, found := c.FindQuery(name); found {
			return *q, nil
		}
	}
	return model.SavedQuery{}, fmt.Errorf("%w: %s", ErrQueryNotFound, name)
}

// List returns copies of a domain's queries in insertion order
func (s *Store) List(domain string) []model.SavedQuery {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[domain]
	if !ok {
		return nil
	}
	queries := make([]model.SavedQuery, 0, len(c.Queries))
	for _, q := range c.Queries {
		queries = append(queries, *q)
	}
	return queries
}

// Domains returns all domains with saved queries, sorted
func (s *Store) Domains() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domainsLocked()
}

func (s *Store) domainsLocked() []string {
	domains := make([]string, 0, len(s.collections))
	for d := range s.collections {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

func (s *Store) collection(domain string) *model.Collection {
	c, ok := s.collections[domain]
	if !ok {
		c = model.NewCollection(domain)
		s.collections[domain] = c
	}
	return c
}
