package models

import (
	"encoding/json"
	"time"
)

// Subtask is nested under exactly one task. IsCompleted is an integer flag
// (0 or 1), mirroring how it is stored. DueDate is optional.
type Subtask struct {
	ID          int64
	Name        string
	IsCompleted int
	DueDate     *time.Time
	TaskID      int64
}

// OptionalTime distinguishes a field that was absent from one that was
// explicitly provided, including provided as null. Decoding any JSON value
// marks Set; a null value leaves Value nil, which clears the stored time.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

// SubtaskPatch describes a partial update. Name and IsCompleted follow the
// same nil/non-nil semantics as TaskPatch. DueDate is the one nullable
// column, so it carries a third state: unset (leave), set to a time, or set
// to null (clear).
type SubtaskPatch struct {
	Name        *string
	IsCompleted *int
	DueDate     OptionalTime
}

// Apply merges the patch into the subtask.
func (p *SubtaskPatch) Apply(s *Subtask) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.IsCompleted != nil {
		s.IsCompleted = *p.IsCompleted
	}
	if p.DueDate.Set {
		s.DueDate = p.DueDate.Value
	}
}
