package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrAdviceUnavailable = errors.New("maintenance advice unavailable")
)

// DateLayout is the calendar-date format used for start and due dates.
// Dates carry no time component.
const DateLayout = "2006-01-02"

// TaskStatus represents the state of a maintenance task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// UserRole represents a user's role in the system
type UserRole string

const (
	UserRoleAdmin      UserRole = "Admin"
	UserRoleManager    UserRole = "Manager"
	UserRoleTechnician UserRole = "Technician"
)

// Task represents a unit of scheduled maintenance work at a customs facility.
// JSON field names match the persisted document format; existing state
// written by earlier versions of the tracker decodes unchanged.
type Task struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	CustomsLocation string       `json:"customsLocation"`
	Status          TaskStatus   `json:"status"`
	StartDate       string       `json:"startDate"`
	DueDate         string       `json:"dueDate"`
	AssignedTo      string       `json:"assignedTo"`
	Attachments     []Attachment `json:"attachments"`
	Cost            *float64     `json:"cost,omitempty"`
}

// Attachment is an uploaded invoice or evidence file embedded inline with
// its owning task. Data holds the full file content as a base64 data URI.
type Attachment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Data       string `json:"data"`
	UploadDate string `json:"uploadDate"`
}

// User represents a member of the maintenance team
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	Avatar string   `json:"avatar"`
}

// CustomsLocation represents a customs facility
type CustomsLocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
	Code string `json:"code"`
}

// MaintenanceAdvice is the structured recommendation returned by the
// advice collaborator for a task description.
type MaintenanceAdvice struct {
	Steps []string `json:"steps"`
	Tools []string `json:"tools"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.Attachments != nil {
		out.Attachments = make([]Attachment, len(t.Attachments))
		copy(out.Attachments, t.Attachments)
	}
	if t.Cost != nil {
		cost := *t.Cost
		out.Cost = &cost
	}
	return out
}

// CostValue returns the task's cost, treating an absent cost as zero.
func (t Task) CostValue() float64 {
	if t.Cost == nil {
		return 0
	}
	return *t.Cost
}

// StartsOn reports whether the task's start date falls on the given
// calendar day. Unparseable dates never match.
func (t Task) StartsOn(day, month, year int) bool {
	d, err := time.Parse(DateLayout, t.StartDate)
	if err != nil {
		return false
	}
	return d.Day() == day && int(d.Month()) == month && d.Year() == year
}

// IsValid reports whether the status is one of the known values. No
// transition order is enforced anywhere: any valid value may be set
// directly on a task.
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

func (ur UserRole) IsValid() bool {
	switch ur {
	case UserRoleAdmin, UserRoleManager, UserRoleTechnician:
		return true
	default:
		return false
	}
}
