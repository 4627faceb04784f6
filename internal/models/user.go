package models

type User struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	Username     string `gorm:"type:varchar(32);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(320);not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	// ProfilePicture holds a base64-encoded image set from the account page.
	ProfilePicture *string `gorm:"type:longtext" json:"profile_picture,omitempty"`

	// Relations
	CreatedTasks  []Task `gorm:"foreignKey:AuthorID" json:"-"`
	AssignedTasks []Task `gorm:"foreignKey:AssigneeID" json:"-"`
}
