package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasLimitClause(t *testing.T) {
	assert.True(t, hasLimitClause("SELECT * FROM messages LIMIT 50"))
	assert.True(t, hasLimitClause("select * from messages limit $limit"))
	assert.False(t, hasLimitClause("SELECT * FROM users WHERE username = $username"))
	assert.False(t, hasLimitClause("SELECT * FROM unlimited"))
}

func TestWithSingleLimit(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "select without limit",
			query: "SELECT * FROM users WHERE username = $username",
			want:  "SELECT * FROM users WHERE username = $username LIMIT 1",
		},
		{
			name:  "select with limit",
			query: "SELECT * FROM users LIMIT 1",
			want:  "SELECT * FROM users LIMIT 1",
		},
		{
			name:  "create is untouched",
			query: "CREATE messages CONTENT $data",
			want:  "CREATE messages CONTENT $data",
		},
		{
			name:  "leading whitespace",
			query: "  select * from users",
			want:  "  select * from users LIMIT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withSingleLimit(tt.query))
		})
	}
}
