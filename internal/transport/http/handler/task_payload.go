package handler

import (
	"bytes"
	"encoding/json"

	"taskmanager/internal/app"
)

// taskFields keeps the raw JSON members so absent, null and present values stay distinguishable.
type taskFields map[string]json.RawMessage

func (f taskFields) lookup(key string) (json.RawMessage, bool) {
	raw, ok := f[key]
	return raw, ok
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeString(raw json.RawMessage, invalid error) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalid
	}
	return s, nil
}

func decodeInt(raw json.RawMessage) (int, error) {
	var i int
	if err := json.Unmarshal(raw, &i); err != nil {
		return 0, app.ErrInvalidPriority
	}
	return i, nil
}

func (f taskFields) createInput() (app.CreateTaskInput, error) {
	var input app.CreateTaskInput

	raw, ok := f.lookup("title")
	if !ok || isNull(raw) {
		return input, app.ErrTitleRequired
	}
	title, err := decodeString(raw, app.ErrTitleRequired)
	if err != nil {
		return input, err
	}
	input.Title = title

	if raw, ok := f.lookup("description"); ok && !isNull(raw) {
		if input.Description, err = decodeString(raw, app.ErrInvalidPayload); err != nil {
			return input, err
		}
	}

	if raw, ok := f.lookup("priority"); ok && !isNull(raw) {
		priority, err := decodeInt(raw)
		if err != nil {
			return input, err
		}
		input.Priority = &priority
	}

	if raw, ok := f.lookup("due_date"); ok && !isNull(raw) {
		if input.DueDate, err = decodeString(raw, app.ErrInvalidDueDate); err != nil {
			return input, err
		}
	}
	return input, nil
}

func (f taskFields) updateInput() (app.UpdateTaskInput, error) {
	var input app.UpdateTaskInput

	if raw, ok := f.lookup("title"); ok {
		title, err := decodeString(raw, app.ErrTitleRequired)
		if err != nil || isNull(raw) {
			return input, app.ErrTitleRequired
		}
		input.Title = &title
	}

	if raw, ok := f.lookup("description"); ok {
		description := ""
		if !isNull(raw) {
			var err error
			if description, err = decodeString(raw, app.ErrInvalidPayload); err != nil {
				return input, err
			}
		}
		input.Description = &description
	}

	if raw, ok := f.lookup("priority"); ok {
		if isNull(raw) {
			return input, app.ErrInvalidPriority
		}
		priority, err := decodeInt(raw)
		if err != nil {
			return input, err
		}
		input.Priority = &priority
	}

	if raw, ok := f.lookup("status"); ok {
		status, err := decodeString(raw, app.ErrInvalidStatus)
		if err != nil || isNull(raw) {
			return input, app.ErrInvalidStatus
		}
		input.Status = &status
	}

	if raw, ok := f.lookup("due_date"); ok {
		input.SetDueDate = true
		if !isNull(raw) {
			due, err := decodeString(raw, app.ErrInvalidDueDate)
			if err != nil {
				return input, err
			}
			input.DueDate = &due
		}
	}
	return input, nil
}
