package models

// MenuItem is one food entry in the vendor settings form.
type MenuItem struct {
	Name  string `json:"name"  validate:"required,min=2"`
	Price string `json:"price" validate:"required,numeric"`
}

// RestaurantSettings is the body of POST /restaurant/settings/.
// The rules mirror what the server enforces so bad input never leaves
// the client.
type RestaurantSettings struct {
	Name        string     `json:"name"        validate:"required,min=3"`
	Address     string     `json:"address"     validate:"required,min=5"`
	Phone       string     `json:"phone"       validate:"required,regex=^0\d{10}$"`
	Description string     `json:"description" validate:"required,min=10"`
	MenuItems   []MenuItem `json:"menuItems,omitempty"`
}
