package users

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile carries the editable fields of a user. Nil fields are left
// unchanged. Picture is never bound from a form: the multipart part of the
// same name is a file, and its stored locator is applied after binding.
type Profile struct {
	Username *string `json:"username" form:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" form:"email" binding:"omitempty,email,max=255"`
	Picture  *string `json:"picture" form:"-"`
}

func (p Profile) apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Picture != nil {
		u.Picture = *p.Picture
	}
}
