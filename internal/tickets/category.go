package tickets

import (
	"fmt"
	"strings"
)

// Category is the ticket type of a line item
type Category string

const (
	CategoryInfant Category = "INFANT"
	CategoryChild  Category = "CHILD"
	CategoryAdult  Category = "ADULT"
)

// categoryRule describes how a category is charged and seated
type categoryRule struct {
	price         int
	occupiesSeat  bool
	requiresAdult bool
	supervises    bool
}

var categoryRules = map[Category]categoryRule{
	CategoryInfant: {price: 0, occupiesSeat: false, requiresAdult: true},
	CategoryChild:  {price: 10, occupiesSeat: true, requiresAdult: true},
	CategoryAdult:  {price: 20, occupiesSeat: true, supervises: true},
}

// Categories returns every known category in display order
func Categories() []Category {
	return []Category{CategoryInfant, CategoryChild, CategoryAdult}
}

// ParseCategory accepts a category name in any case
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown ticket category %q", s)
	}
	return c, nil
}

func (c Category) IsValid() bool {
	_, ok := categoryRules[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// Price is the per-ticket price in whole currency units
func (c Category) Price() int {
	return categoryRules[c].price
}

// OccupiesSeat reports whether a ticket of this category needs its own seat.
// Infants sit on an adult's lap.
func (c Category) OccupiesSeat() bool {
	return categoryRules[c].occupiesSeat
}

// RequiresAdult reports whether the category cannot be bought without an adult ticket
func (c Category) RequiresAdult() bool {
	return categoryRules[c].requiresAdult
}

func (c Category) Supervises() bool {
	return categoryRules[c].supervises
}
