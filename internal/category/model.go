package category

import "time"

// Category is a menu section such as bread or cakes. Products point at it
// through their category id.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateInput struct {
	Name     string `json:"name" validate:"required,max=32"`
	Position int    `json:"position" validate:"gte=0"`
}

type UpdateInput struct {
	ID       string  `json:"id" validate:"required"`
	Name     *string `json:"name" validate:"omitempty,max=32"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
}
