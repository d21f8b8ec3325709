package predicate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dsql "github.com/syssam/persisto/dialect/sql"
	"github.com/syssam/persisto/predicate"
)

type user struct{}

func nameEQ(v string) predicate.P[user] {
	return predicate.P[user](dsql.FieldEQ("name", v))
}

func ageGT(v int) predicate.P[user] {
	return predicate.P[user](dsql.FieldGT("age", v))
}

func emailHasPrefix(v string) predicate.P[user] {
	return predicate.P[user](dsql.FieldHasPrefix("email", v))
}

func apply(t *testing.T, p predicate.P[user]) (string, []any) {
	t.Helper()
	s := dsql.NewSelector("sqlite3", "users")
	p(s)
	return s.Query()
}

func TestSingleFieldPredicate(t *testing.T) {
	query, args := apply(t, nameEQ("alice"))
	assert.Contains(t, query, `"name" = @p0`)
	require.Len(t, args, 1)
}

func TestAnd(t *testing.T) {
	p := predicate.And[user](nameEQ("alice"), ageGT(18))
	query, args := apply(t, p)
	assert.Contains(t, query, "AND")
	assert.Contains(t, query, `"name" = @p0`)
	assert.Contains(t, query, `"age" > @p1`)
	require.Len(t, args, 2)
}

func TestOr(t *testing.T) {
	p := predicate.Or[user](nameEQ("alice"), nameEQ("bob"))
	query, args := apply(t, p)
	assert.Contains(t, query, "OR")
	require.Len(t, args, 2)
}

func TestNot(t *testing.T) {
	p := predicate.Not[user](nameEQ("alice"))
	query, args := apply(t, p)
	assert.Contains(t, query, "NOT (")
	assert.Contains(t, query, `"name" = @p0`)
	require.Len(t, args, 1)
}

func TestNestedCombinators(t *testing.T) {
	p := predicate.And[user](
		nameEQ("alice"),
		predicate.Or[user](ageGT(18), emailHasPrefix("admin@")),
	)
	query, args := apply(t, p)
	assert.Contains(t, query, "AND")
	assert.Contains(t, query, "OR")
	require.Len(t, args, 3)
}

func TestEmptyAndOr(t *testing.T) {
	query, args := apply(t, predicate.And[user]())
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)

	query, args = apply(t, predicate.Or[user]())
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestAndAppliesOnTopOfExistingWhere(t *testing.T) {
	s := dsql.NewSelector("sqlite3", "users")
	s.Where(dsql.EQ(s.C("id"), 1))
	p := predicate.And[user](nameEQ("alice"))
	p(s)
	query, _ := s.Query()
	assert.Equal(t, 1, strings.Count(query, "WHERE"))
	assert.Contains(t, query, `"id" = @p0`)
	assert.Contains(t, query, `"name" = @p1`)
}
