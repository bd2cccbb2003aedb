package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gavinbarnard/timetracker/internal/models"
)

// taskDocument is the JSON shape a task is stored under. All fields
// are pointers so a missing field is distinguishable from a zero
// value: documents coming back from the store are validated at this
// boundary and fail closed instead of silently defaulting.
type taskDocument struct {
	ID               *string    `json:"id"`
	Description      *string    `json:"description"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	ReferenceTickets []string   `json:"reference_tickets"`
	CreatedAt        *time.Time `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

func encodeTask(task *models.Task) ([]byte, error) {
	doc := taskDocument{
		ID:               &task.ID,
		Description:      &task.Description,
		StartTime:        &task.StartTime,
		EndTime:          &task.EndTime,
		ReferenceTickets: task.ReferenceTickets,
		CreatedAt:        &task.CreatedAt,
		UpdatedAt:        &task.UpdatedAt,
	}
	if doc.ReferenceTickets == nil {
		doc.ReferenceTickets = []string{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task document: %w", err)
	}
	return data, nil
}

func decodeTask(data []byte) (*models.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc taskDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode task document: %w", err)
	}

	switch {
	case doc.ID == nil || *doc.ID == "":
		return nil, fmt.Errorf("task document: missing id")
	case doc.Description == nil:
		return nil, fmt.Errorf("task document %s: missing description", *doc.ID)
	case doc.StartTime == nil:
		return nil, fmt.Errorf("task document %s: missing start_time", *doc.ID)
	case doc.EndTime == nil:
		return nil, fmt.Errorf("task document %s: missing end_time", *doc.ID)
	case doc.ReferenceTickets == nil:
		return nil, fmt.Errorf("task document %s: missing reference_tickets", *doc.ID)
	case doc.CreatedAt == nil:
		return nil, fmt.Errorf("task document %s: missing created_at", *doc.ID)
	case doc.UpdatedAt == nil:
		return nil, fmt.Errorf("task document %s: missing updated_at", *doc.ID)
	}

	return &models.Task{
		ID:               *doc.ID,
		Description:      *doc.Description,
		StartTime:        *doc.StartTime,
		EndTime:          *doc.EndTime,
		ReferenceTickets: doc.ReferenceTickets,
		CreatedAt:        *doc.CreatedAt,
		UpdatedAt:        *doc.UpdatedAt,
	}, nil
}
