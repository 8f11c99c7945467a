// Package session holds the per-user analysis context: the loaded table, the
// budget inputs and the dashboard view currently selected.
package session

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// View names a dashboard page.
type View string

const (
	ViewNone      View = ""
	ViewSummary   View = "summary"
	ViewCategory  View = "category"
	ViewMonthly   View = "monthly"
	ViewWeekly    View = "weekly"
	ViewSavings   View = "savings"
	ViewAnomalies View = "anomalies"
)

// Views lists every selectable view in menu order.
var Views = []View{ViewSummary, ViewCategory, ViewMonthly, ViewWeekly, ViewSavings, ViewAnomalies}

// ParseView resolves a view name, case-insensitively.
func ParseView(name string) (View, error) {
	candidate := View(strings.ToLower(strings.TrimSpace(name)))
	for _, v := range Views {
		if v == candidate {
			return v, nil
		}
	}
	names := make([]string, len(Views))
	for i, v := range Views {
		names[i] = string(v)
	}
	return ViewNone, &analyticserror.InvalidArgumentError{
		Argument: "view",
		Value:    name,
		Reason:   "must be one of " + strings.Join(names, ", "),
	}
}

// Session is one analysis context.
type Session struct {
	ID           string
	Table        models.Table
	Income       decimal.Decimal
	Goal         decimal.Decimal
	SelectedView View
	// TopN overrides the engine's top-expenses count when non-zero.
	TopN         int
	CreatedAt    time.Time
}

// Store keeps sessions in memory and expires them after a period of
// inactivity.
type Store struct {
	cache  *cache.Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewStore creates a Store with the given expiry and cleanup interval.
func NewStore(ttl, cleanup time.Duration, logger logging.Logger) *Store {
	return &Store{
		cache:  cache.New(ttl, cleanup),
		ttl:    ttl,
		logger: logger,
	}
}

// Create registers a new session for table and returns it.
func (s *Store) Create(table models.Table, income, goal decimal.Decimal) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Table:     table,
		Income:    income,
		Goal:      goal,
		CreatedAt: time.Now().UTC(),
	}
	s.cache.Set(sess.ID, sess, cache.DefaultExpiration)
	s.logger.Debug("Created session",
		logging.F(logging.FieldSession, sess.ID),
		logging.F(logging.FieldCount, table.Len()))
	return sess
}

// Get returns a copy of the session and refreshes its expiry.
func (s *Store) Get(id string) (Session, bool) {
	item, ok := s.cache.Get(id)
	if !ok {
		return Session{}, false
	}
	sess := item.(*Session)
	s.cache.Set(id, sess, cache.DefaultExpiration)
	return *sess, true
}

// Select records the view chosen for a session.
func (s *Store) Select(id string, view View) (Session, error) {
	item, ok := s.cache.Get(id)
	if !ok {
		return Session{}, fmt.Errorf("session %s not found", id)
	}
	updated := *item.(*Session)
	updated.SelectedView = view
	s.cache.Set(id, &updated, cache.DefaultExpiration)

	s.logger.Debug("Selected view",
		logging.F(logging.FieldSession, id),
		logging.F(logging.FieldView, string(view)))
	return updated, nil
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
