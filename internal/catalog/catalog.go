// Package catalog resolves product ids posted by the page to names and prices.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kinds of catalog entries.
const (
	KindProduct      = "product"
	KindSubscription = "subscription"
)

var (
	// ErrNotFound is returned by Lookup for unknown ids.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrInvalid is returned when the catalog file fails validation.
	ErrInvalid = errors.New("catalog: invalid")
)

// Product is a sellable entry. Price is in centavos.
type Product struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Price       int64  `yaml:"price"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

// IsSubscription reports whether the product is sold as a subscription.
func (p Product) IsSubscription() bool {
	return p.Kind == KindSubscription
}

// Catalog is an immutable, ordered product list.
type Catalog struct {
	Currency string
	products []Product
	byID     map[string]int
}

type catalogFile struct {
	Currency string    `yaml:"currency"`
	Products []Product `yaml:"products"`
}

// Load reads and validates a catalog YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(file.Currency, file.Products)
}

// New validates products and builds a Catalog.
func New(currency string, products []Product) (*Catalog, error) {
	c := &Catalog{
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
		byID:     make(map[string]int, len(products)),
	}
	if c.Currency == "" {
		c.Currency = "BRL"
	}
	var problems []string
	for i, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.Kind = strings.ToLower(strings.TrimSpace(p.Kind))
		if p.Kind == "" {
			p.Kind = KindProduct
		}
		switch {
		case p.ID == "":
			problems = append(problems, fmt.Sprintf("products[%d].id empty", i))
			continue
		case strings.ContainsAny(p.ID, " /\"'<>"):
			problems = append(problems, fmt.Sprintf("products[%d].id %q not a slug", i, p.ID))
			continue
		case p.Name == "":
			problems = append(problems, fmt.Sprintf("products[%d].name empty", i))
			continue
		case p.Price < 0:
			problems = append(problems, fmt.Sprintf("products[%d].price negative", i))
			continue
		case p.Kind != KindProduct && p.Kind != KindSubscription:
			problems = append(problems, fmt.Sprintf("products[%d].kind %q unknown", i, p.Kind))
			continue
		}
		if _, dup := c.byID[p.ID]; dup {
			problems = append(problems, fmt.Sprintf("products[%d].id %q duplicated", i, p.ID))
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return c, nil
}

// Lookup returns the product with id.
func (c *Catalog) Lookup(id string) (Product, error) {
	if c == nil {
		return Product{}, ErrNotFound
	}
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.products[idx], nil
}

// Products returns the regular products in file order.
func (c *Catalog) Products() []Product {
	return c.filter(KindProduct)
}

// Subscriptions returns the subscription plans in file order.
func (c *Catalog) Subscriptions() []Product {
	return c.filter(KindSubscription)
}

func (c *Catalog) filter(kind string) []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}
