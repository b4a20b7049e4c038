package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/scope"
)

func TestBuilderScopePredicateComesFirst(t *testing.T) {
	b := NewBuilder("SELECT * FROM reports")
	b.And("stream = ?", "IT")
	b.Match("web", "course_name", "topic")
	b.AndIf("2025-10-01", "date_of_lecture >= ?")

	query, args := b.SQL()
	assert.Equal(t,
		"SELECT * FROM reports WHERE stream = $1 AND (course_name ILIKE $2 OR topic ILIKE $2) AND date_of_lecture >= $3",
		query)
	assert.Equal(t, []any{"IT", "%web%", "2025-10-01"}, args)
}

func TestBuilderEmptyQueryDegeneratesToListAll(t *testing.T) {
	b := NewBuilder("SELECT * FROM courses")
	b.Match("", "course_name", "course_code")
	b.Match("   ", "course_name")

	query, args := b.SQL()
	assert.Equal(t, "SELECT * FROM courses", query)
	assert.Empty(t, args)
}

func TestBuilderAndIfSkipsEmptyValues(t *testing.T) {
	b := NewBuilder("SELECT * FROM reports")
	b.AndIf("", "stream = ?")
	b.AndIf("IT", "stream = ?")

	query, args := b.SQL()
	assert.Equal(t, "SELECT * FROM reports WHERE stream = $1", query)
	assert.Equal(t, []any{"IT"}, args)
}

func TestBuilderOrderAndLimit(t *testing.T) {
	b := NewBuilder("SELECT * FROM classes")
	b.OrderBy("class_name").Limit(10)

	query, _ := b.SQL()
	assert.Equal(t, "SELECT * FROM classes ORDER BY class_name LIMIT 10", query)
}

func TestBuilderMultiArgPredicate(t *testing.T) {
	b := NewBuilder("SELECT * FROM rating")
	b.And("rating BETWEEN ? AND ?", 2, 4)

	query, args := b.SQL()
	assert.Equal(t, "SELECT * FROM rating WHERE rating BETWEEN $1 AND $2", query)
	assert.Equal(t, []any{2, 4}, args)
}

func TestStreamForPinsRestrictedPRL(t *testing.T) {
	prl := scope.Scope{Role: scope.RolePRL, Stream: "Computer Science"}

	got, err := streamFor(prl, "")
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", got)

	// "all" collapses to the caller's own stream, not to everything
	got, err = streamFor(prl, "all")
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", got)

	_, err = streamFor(prl, "Networking")
	assert.ErrorIs(t, err, apperr.ErrScopeViolation)
}

func TestStreamForUnrestrictedCallers(t *testing.T) {
	wide := scope.Scope{Role: scope.RolePRL, Stream: scope.AllStreams}
	got, err := streamFor(wide, "Networking")
	require.NoError(t, err)
	assert.Equal(t, "Networking", got)

	pl := scope.Scope{Role: scope.RolePL}
	got, err = streamFor(pl, "all")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
