// Package predicate ties the dialect/sql query builder to a specific
// entity type E, so a predicate built for one entity's Selector can never
// be passed to another entity's Query (spec.md §4.3's "typed predicate").
package predicate

import dsql "github.com/syssam/persisto/dialect/sql"

// P is a predicate over E's underlying table, a thin named type around a
// Selector-mutating closure. The type parameter carries no runtime state;
// it exists purely so the compiler rejects predicate.P[User] passed to
// Provider[Order].Query. Every field-typed predicate constructor in
// dialect/sql/predicate.go (StringField[P], IntField[P], ...) is generic
// over exactly this shape.
type P[E any] func(*dsql.Selector)

// And combines predicates with AND. A bare P[E] mutates whatever Selector
// it's handed, so each predicate runs against a scratch Selector sharing
// the outer one's dialect and table before the combined result is ANDed
// onto the real one.
func And[E any](ps ...P[E]) P[E] {
	return func(s *dsql.Selector) {
		if len(ps) == 0 {
			return
		}
		sub := dsql.NewSelector(s.Dialect(), s.TableName())
		for _, p := range ps {
			p(sub)
		}
		s.Where(sub.Predicate())
	}
}

// Or combines predicates with OR. Unlike And, each predicate needs its own
// scratch Selector — otherwise Selector.Where would AND them together as
// it accumulates.
func Or[E any](ps ...P[E]) P[E] {
	return func(s *dsql.Selector) {
		if len(ps) == 0 {
			return
		}
		preds := make([]*dsql.Predicate, 0, len(ps))
		for _, p := range ps {
			sub := dsql.NewSelector(s.Dialect(), s.TableName())
			p(sub)
			if pr := sub.Predicate(); pr != nil {
				preds = append(preds, pr)
			}
		}
		s.Where(dsql.Or(preds...))
	}
}

// Not negates a predicate.
func Not[E any](p P[E]) P[E] {
	return func(s *dsql.Selector) {
		sub := dsql.NewSelector(s.Dialect(), s.TableName())
		p(sub)
		s.Where(dsql.Not(sub.Predicate()))
	}
}
