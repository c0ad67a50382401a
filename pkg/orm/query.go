// Package orm is a thin fluent layer over the history database handle,
// with an optional read-through cache for hot queries.
package orm

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sofreh/pkg/cache"
	"github.com/shashiranjanraj/sofreh/pkg/database"
)

type Query struct {
	db *gorm.DB
}

func DB() *Query {
	return &Query{db: database.DB}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(order string) *Query {
	return &Query{db: q.db.Order(order)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

// Delete removes rows matched by the accumulated conditions.
func (q *Query) Delete(model interface{}) (int64, error) {
	res := q.db.Delete(model)
	return res.RowsAffected, res.Error
}

// Cache runs the query through Redis: a hit fills dest without touching the
// database, a miss queries and stores the result for ttl.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	if cache.Get(key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	cache.Set(key, dest, ttl) //nolint:errcheck
	return nil
}
