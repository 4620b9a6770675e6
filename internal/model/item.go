package model

// GroceryItem is the domain model for one list entry. The id is assigned by
// the service; the client never invents one.
type GroceryItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
}

// FilterAll is the identity category filter.
const FilterAll = "all"

// Categories is the built-in list, used when the service's own category
// listing is unreachable.
var Categories = []string{"Fruits", "Vegetables", "Meat", "Drinks"}
