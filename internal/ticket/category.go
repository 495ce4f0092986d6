package ticket

// Category is a production category. The declaration order is the order in
// which sections appear on a ticket.
type Category int

const (
	PrimaryCakes Category = iota
	SlicedCakes
	TrayItems
	SpecialtyItems
	DairyDesserts
	Eclairs
	Uncategorized
)

// Categories lists every category in ticket order.
var Categories = []Category{
	PrimaryCakes,
	SlicedCakes,
	TrayItems,
	SpecialtyItems,
	DairyDesserts,
	Eclairs,
	Uncategorized,
}

var categoryNames = [...]string{
	PrimaryCakes:   "PrimaryCakes",
	SlicedCakes:    "SlicedCakes",
	TrayItems:      "TrayItems",
	SpecialtyItems: "SpecialtyItems",
	DairyDesserts:  "DairyDesserts",
	Eclairs:        "Eclairs",
	Uncategorized:  "Uncategorized",
}

// Labels as they are named in the order store's product catalogue.
var categoryLabels = [...]string{
	PrimaryCakes:   "TURTA PASTALAR",
	SlicedCakes:    "DİLİM PASTALAR",
	TrayItems:      "SARMA GURUBU",
	SpecialtyItems: "SPESYEL ÜRÜNLER",
	DairyDesserts:  "SÜTLÜ TATLILAR",
	Eclairs:        "EKLER ÇEŞİTLERİ",
	Uncategorized:  "KATEGORİSİZ",
}

func (c Category) valid() bool { return c >= PrimaryCakes && c <= Uncategorized }

func (c Category) String() string {
	if !c.valid() {
		return categoryNames[Uncategorized]
	}
	return categoryNames[c]
}

// Label is the catalogue label printed as the section heading.
func (c Category) Label() string {
	if !c.valid() {
		return categoryLabels[Uncategorized]
	}
	return categoryLabels[c]
}

// categoryByName matches both the catalogue label and the identifier.
func categoryByName(name string) (Category, bool) {
	for _, c := range Categories {
		if name == categoryLabels[c] || name == categoryNames[c] {
			return c, true
		}
	}
	return 0, false
}
