package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBufferableSession(t *testing.T) {
	tests := []struct {
		id       string
		expected bool
	}{
		{id: "sess-1", expected: true},
		{id: "", expected: false},
		{id: "   ", expected: false},
		{id: "unknown", expected: false},
		{id: " UNKNOWN ", expected: false},
		{id: "unknown-user", expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBufferableSession(tt.id))
		})
	}
}

func TestCategoryIsValid(t *testing.T) {
	for _, c := range AllCategories {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, ActionCategory("archive").IsValid())
	assert.False(t, ActionCategory("").IsValid())
}

func TestSessionActionKeyLess(t *testing.T) {
	a := NewSessionActionKey("a", CategoryRead)
	b := NewSessionActionKey("b", CategoryCreate)
	aCreate := NewSessionActionKey("a", CategoryCreate)

	assert.True(t, a.Less(b), "session orders first")
	assert.True(t, aCreate.Less(a), "then category")
	assert.False(t, a.Less(a))
	assert.Equal(t, "a:read", a.String())
}

func TestRepresentativeURL(t *testing.T) {
	tests := []struct {
		name     string
		ctx      AuditContext
		expected string
	}{
		{
			name: "first non-empty browser page url",
			ctx: AuditContext{
				BrowserEntries: []BrowserEntry{{PageURL: ""}, {PageURL: "https://a.example/x"}, {PageURL: "https://a.example/y"}},
				ServerEntries:  []ServerEntry{{Endpoint: "/v1/x"}},
			},
			expected: "https://a.example/x",
		},
		{
			name:     "falls back to server endpoint",
			ctx:      AuditContext{ServerEntries: []ServerEntry{{Endpoint: "/v1/x"}}},
			expected: "/v1/x",
		},
		{
			name:     "unknown when nothing recorded",
			ctx:      AuditContext{BrowserEntries: []BrowserEntry{{EventType: "click"}}},
			expected: Unknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ctx.RepresentativeURL())
		})
	}
}

func TestOriginIP(t *testing.T) {
	assert.Equal(t, "203.0.113.1", AuditContext{
		BrowserEntries: []BrowserEntry{{ClientIP: "198.51.100.1"}},
		ServerEntries:  []ServerEntry{{ClientIP: "203.0.113.1"}},
	}.OriginIP(), "server side wins")
	assert.Equal(t, "198.51.100.1", AuditContext{
		BrowserEntries: []BrowserEntry{{ClientIP: "198.51.100.1"}},
	}.OriginIP())
	assert.Equal(t, Unknown, AuditContext{}.OriginIP())
}
