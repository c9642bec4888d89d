package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_SQL(t *testing.T) {
	t.Run("bare select", func(t *testing.T) {
		q := NewQuery("documents", []string{"id", "title"})
		sql, args := q.SQL()
		assert.Equal(t, "SELECT id, title FROM documents", sql)
		assert.Empty(t, args)
	})

	t.Run("conditions are AND-ed in order", func(t *testing.T) {
		q := NewQuery("documents", []string{"id"})
		q.Where("owner_id = " + q.Arg("u1"))
		q.Where("title ILIKE " + q.Arg("%report%"))

		sql, args := q.SQL()
		assert.Equal(t, "SELECT id FROM documents WHERE owner_id = $1 AND title ILIKE $2", sql)
		assert.Equal(t, []any{"u1", "%report%"}, args)
	})

	t.Run("joins precede conditions", func(t *testing.T) {
		q := NewQuery("documents", []string{"documents.id"})
		q.Join("JOIN users ON users.id = documents.owner_id")
		q.Where("users.active = " + q.Arg(true))

		sql, _ := q.SQL()
		assert.Equal(t,
			"SELECT documents.id FROM documents JOIN users ON users.id = documents.owner_id WHERE users.active = $1",
			sql)
	})

	t.Run("pagination renders limit and offset", func(t *testing.T) {
		q := NewQuery("documents", []string{"id"})
		q.Paginate(20, 40)

		sql, _ := q.SQL()
		assert.Equal(t, "SELECT id FROM documents LIMIT 20 OFFSET 40", sql)
	})
}

func TestQuery_CountSQL(t *testing.T) {
	q := NewQuery("documents", []string{"id", "title"})
	q.Where("owner_id = " + q.Arg("u1"))
	q.Paginate(20, 40)

	sql, args := q.CountSQL()
	assert.Equal(t, "SELECT COUNT(*) FROM documents WHERE owner_id = $1", sql)
	assert.Equal(t, []any{"u1"}, args)
}

func TestQuery_Table(t *testing.T) {
	q := NewQuery("documents", nil)
	assert.Equal(t, "documents", q.Table())
}
