package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/app"
)

func fieldsOf(t *testing.T, body string) taskFields {
	t.Helper()
	var f taskFields
	require.NoError(t, json.Unmarshal([]byte(body), &f))
	return f
}

func TestUpdateInput_TriStateDueDate(t *testing.T) {
	absent, err := fieldsOf(t, `{"title":"x"}`).updateInput()
	require.NoError(t, err)
	assert.False(t, absent.SetDueDate)
	require.NotNil(t, absent.Title)
	assert.Nil(t, absent.Status)

	cleared, err := fieldsOf(t, `{"due_date":null}`).updateInput()
	require.NoError(t, err)
	assert.True(t, cleared.SetDueDate)
	assert.Nil(t, cleared.DueDate)

	set, err := fieldsOf(t, `{"due_date":"2025-01-02"}`).updateInput()
	require.NoError(t, err)
	assert.True(t, set.SetDueDate)
	require.NotNil(t, set.DueDate)
	assert.Equal(t, "2025-01-02", *set.DueDate)
}

func TestUpdateInput_RejectsWrongTypes(t *testing.T) {
	cases := []struct {
		body string
		want error
	}{
		{`{"title":null}`, app.ErrTitleRequired},
		{`{"status":7}`, app.ErrInvalidStatus},
		{`{"status":null}`, app.ErrInvalidStatus},
		{`{"priority":"2"}`, app.ErrInvalidPriority},
		{`{"due_date":20250101}`, app.ErrInvalidDueDate},
		{`{"description":false}`, app.ErrInvalidPayload},
	}
	for _, tc := range cases {
		_, err := fieldsOf(t, tc.body).updateInput()
		assert.ErrorIs(t, err, tc.want, tc.body)
	}
}

func TestCreateInput_NullsMeanDefaults(t *testing.T) {
	input, err := fieldsOf(t, `{"title":"x","description":null,"priority":null,"due_date":null}`).createInput()
	require.NoError(t, err)
	assert.Equal(t, "x", input.Title)
	assert.Equal(t, "", input.Description)
	assert.Nil(t, input.Priority)
	assert.Equal(t, "", input.DueDate)
}

func TestSafeNext(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/tasks", "/tasks"},
		{"/tasks?status=done", "/tasks?status=done"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"https://evil.example", "/"},
		{"tasks", "/"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, safeNext(tc.in), tc.in)
	}
}
