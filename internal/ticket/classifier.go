package ticket

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"factory-dispatch/internal/domain"
)

type keywordRule struct {
	category Category
	keywords []string
}

// Checked in order; the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{Eclairs, []string{"eklair", "ekler"}},
	{SlicedCakes, []string{"dilim", "parça"}},
	{TrayItems, []string{"tepsi", "sarma", "rulo"}},
	{SpecialtyItems, []string{"bomba", "özel"}},
	{DairyDesserts, []string{"supangle", "profiterol", "sütlü"}},
}

// Classifier assigns an order item to exactly one Category.
type Classifier struct {
	// Fallback is returned when neither the category name nor any keyword
	// matches. The zero value is PrimaryCakes.
	Fallback Category
}

func NewClassifier(fallback Category) *Classifier {
	if !fallback.valid() {
		fallback = PrimaryCakes
	}
	return &Classifier{Fallback: fallback}
}

// Classify never fails: unknown input lands in the fallback category.
func (c *Classifier) Classify(categoryName *string, productName string) Category {
	if categoryName != nil {
		if cat, ok := categoryByName(*categoryName); ok {
			return cat
		}
	}
	if productName != "" {
		// Turkish rules map "I" to "ı", so plain ToLower covers names typed
		// without Turkish capitals ("EKLAIR").
		names := []string{lowerTR(productName), strings.ToLower(productName)}
		for _, rule := range keywordRules {
			for _, kw := range rule.keywords {
				if strings.Contains(names[0], kw) || strings.Contains(names[1], kw) {
					return rule.category
				}
			}
		}
	}
	if !c.Fallback.valid() {
		return PrimaryCakes
	}
	return c.Fallback
}

// lowerTR lower-cases with Turkish rules so that "DİLİM" becomes "dilim" and
// "PARÇA" becomes "parça". A Caser is stateful, so one is built per call.
func lowerTR(s string) string {
	if s == "" {
		return ""
	}
	return cases.Lower(language.Turkish).String(s)
}

// Group is one ticket section.
type Group struct {
	Category Category
	Items    []domain.OrderItemDTO
}

// GroupItems classifies items and returns the non-empty groups in ticket
// order. Items keep their original relative order within a group.
func (c *Classifier) GroupItems(items []domain.OrderItemDTO) []Group {
	buckets := make(map[Category][]domain.OrderItemDTO, len(Categories))
	for _, it := range items {
		cat := c.Classify(it.CategoryName, it.ProductName)
		buckets[cat] = append(buckets[cat], it)
	}
	groups := make([]Group, 0, len(buckets))
	for _, cat := range Categories {
		if its := buckets[cat]; len(its) > 0 {
			groups = append(groups, Group{Category: cat, Items: its})
		}
	}
	return groups
}
