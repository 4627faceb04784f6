package models

import "time"

// TaskAssignedNotification records that a task is currently assigned to a
// user and has not been dismissed by them. One row per task at most.
type TaskAssignedNotification struct {
	TaskID     uint64    `gorm:"primarykey" json:"task_id"`
	AssigneeID uint64    `gorm:"not null;index" json:"assignee_id"`
	CreatedOn  time.Time `json:"created_on"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}
