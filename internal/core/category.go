package core

// Category is a fixed classification bucket for transactions.
type Category struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CategoryTable is an ordered, read-only list of categories.
// Iteration order is the display order of per-category results.
type CategoryTable []Category

// DefaultCategories is the table shipped with the application.
var DefaultCategories = CategoryTable{
	{Key: "purchases", Name: "Compras", Color: "#5636D3"},
	{Key: "food", Name: "Alimentação", Color: "#FF872C"},
	{Key: "salary", Name: "Salário", Color: "#12A454"},
	{Key: "car", Name: "Carro", Color: "#E83F5B"},
	{Key: "leisure", Name: "Lazer", Color: "#26195C"},
	{Key: "studies", Name: "Estudos", Color: "#9C001A"},
}

// Lookup returns the category with the given key.
func (t CategoryTable) Lookup(key string) (Category, bool) {
	for _, c := range t {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Has reports whether key is present in the table.
func (t CategoryTable) Has(key string) bool {
	_, ok := t.Lookup(key)
	return ok
}
