// Package catalog holds the fixed storefront product table.
package catalog

import "sort"

// Product is one sellable item. Price is the list price in cents and is only
// authoritative when strict pricing is enabled.
type Product struct {
	ID    string
	Name  string
	Price int64
}

// Catalog is an immutable product lookup table, safe for concurrent reads.
type Catalog struct {
	products map[string]Product
}

// New builds a catalog from the given products. Later duplicates win.
func New(products ...Product) *Catalog {
	c := &Catalog{products: make(map[string]Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Default returns the storefront's product line.
func Default() *Catalog {
	return New(
		Product{ID: "karma", Name: "Karma Tee", Price: 2500},
		Product{ID: "villain-era", Name: "Villain Era Hoodie", Price: 4800},
		Product{ID: "main-character", Name: "Main Character Crop Top", Price: 2200},
		Product{ID: "unbothered", Name: "Unbothered Sweatpants", Price: 3900},
		Product{ID: "sass-cap", Name: "Sass Club Cap", Price: 1800},
	)
}

// Lookup returns the product registered under id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// Has reports whether id is a known product.
func (c *Catalog) Has(id string) bool {
	_, ok := c.products[id]
	return ok
}

// IDs returns every product id in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
