package models

import "time"

type TaskStatus int

const (
	TaskStatusToDo TaskStatus = iota + 1
	TaskStatusInProgress
	TaskStatusDone
)

type TaskPriority int

const (
	TaskPriorityNone TaskPriority = iota
	TaskPriorityLow
	TaskPriorityMedium
	TaskPriorityHigh
	TaskPriorityCritical
)

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	AuthorID    uint64       `gorm:"not null;index" json:"author_id"`
	Title       string       `gorm:"type:varchar(128);not null" json:"title"`
	Description string       `gorm:"type:varchar(4012)" json:"description"`
	Deadline    time.Time    `gorm:"type:date;index" json:"deadline"`
	AssigneeID  *uint64      `gorm:"index" json:"assignee_id"`
	Status      TaskStatus   `gorm:"not null;default:1;index" json:"status"`
	Priority    TaskPriority `gorm:"not null;default:0" json:"priority"`

	// Relations
	Author   User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Assignee *User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}
