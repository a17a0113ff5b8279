package recipes

import "time"

// Recipe is a stored recipe. Image holds the locator of the uploaded picture
// or a caller-supplied reference.
type Recipe struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Ingredient string    `json:"ingredient"`
	Category   string    `json:"category"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Input carries the writable fields of a recipe. Nil fields are left unchanged
// on update and empty on create.
type Input struct {
	Name       *string `json:"name" form:"name" binding:"omitempty,min=5,max=50"`
	Ingredient *string `json:"ingredient" form:"ingredient" binding:"omitempty,min=5,max=255"`
	Category   *string `json:"category" form:"category" binding:"omitempty,min=3,max=50"`
	Image      *string `json:"image" form:"image"`
}

func (in Input) apply(r *Recipe) {
	if in.Name != nil {
		r.Name = *in.Name
	}
	if in.Ingredient != nil {
		r.Ingredient = *in.Ingredient
	}
	if in.Category != nil {
		r.Category = *in.Category
	}
	if in.Image != nil {
		r.Image = *in.Image
	}
}
