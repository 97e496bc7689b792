package core

import (
	"fmt"
	"strings"
)

// Category is one catalog entry. Transactions reference it by Name.
type Category struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Catalog is an ordered, immutable list of categories.
type Catalog struct {
	categories []Category
	byName     map[string]int
}

// NewCatalog builds a catalog, rejecting empty or duplicate names.
func NewCatalog(categories ...Category) (Catalog, error) {
	c := Catalog{
		categories: make([]Category, 0, len(categories)),
		byName:     make(map[string]int, len(categories)),
	}
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return Catalog{}, fmt.Errorf("category %q: %w", cat.Key, ErrEmptyCategory)
		}
		if _, dup := c.byName[name]; dup {
			return Catalog{}, fmt.Errorf("duplicate category name %q", name)
		}
		cat.Name = name
		c.byName[name] = len(c.categories)
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// DefaultCatalog returns the categories offered by the mobile client.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(
		Category{Key: "purchases", Name: "Compras", Color: "#5636D3"},
		Category{Key: "food", Name: "Alimentação", Color: "#FF872C"},
		Category{Key: "salary", Name: "Salário", Color: "#12A454"},
		Category{Key: "car", Name: "Carro", Color: "#E83F5B"},
		Category{Key: "leisure", Name: "Lazer", Color: "#26195C"},
		Category{Key: "studies", Name: "Estudos", Color: "#9C001A"},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Categories returns a copy of the entries in catalog order.
func (c Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// Lookup finds a category by exact name.
func (c Catalog) Lookup(name string) (Category, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

func (c Catalog) Len() int {
	return len(c.categories)
}
