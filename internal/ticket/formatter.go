package ticket

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"factory-dispatch/internal/domain"
)

const (
	DefaultWidth = 50
	labelWidth   = 14
	qtyWidth     = 8
	placeholder  = "-"
)

type Options struct {
	Width            int
	OrganizationName string
	Title            string
	// ShowTotalAmount adds the order's monetary total below the quantity totals.
	ShowTotalAmount bool
	// ShowPriority adds the delivery urgency line computed against the print time.
	ShowPriority bool
}

func DefaultOptions() Options {
	return Options{
		Width:            DefaultWidth,
		OrganizationName: "TATO PASTA & BAKLAVA",
		Title:            "FABRİKA ÜRETİM SİPARİŞİ",
		ShowTotalAmount:  true,
		ShowPriority:     true,
	}
}

// Formatter renders production tickets. It holds no mutable state and is
// safe for concurrent use.
type Formatter struct {
	opts Options
}

func NewFormatter(opts Options) *Formatter {
	if opts.Width < 40 {
		opts.Width = DefaultWidth
	}
	return &Formatter{opts: opts}
}

func (f *Formatter) Width() int { return f.opts.Width }

// Format renders one order. groups is the classifier output for the order's
// items; printedAt and printer only feed the footer and the priority line.
func (f *Formatter) Format(order domain.OrderDTO, groups []Group, printedAt time.Time, printer string) string {
	w := &ticketWriter{width: f.opts.Width}

	w.rule('=')
	w.center(f.opts.OrganizationName)
	w.center(f.opts.Title)
	w.rule('=')
	w.blank()

	w.field("Sipariş No", order.OrderNumber)
	w.field("Şube", order.BranchName)
	if order.CustomerLabel != "" {
		w.field("Müşteri", order.CustomerLabel)
	}
	w.field("Teslimat", formatDate(order.DeliveryDate))
	w.field("Sipariş Zamanı", formatDateTime(order.CreatedAt))
	w.field("Sipariş Veren", order.CreatedBy)
	if strings.TrimSpace(order.Notes) != "" {
		w.field("Notlar", order.Notes)
	}
	w.blank()

	total := decimal.Zero
	var units []string
	perUnit := map[string]decimal.Decimal{}
	nameWidth := f.opts.Width - 20

	for _, g := range groups {
		w.rule('-')
		w.line(g.Category.Label() + " (" + strconv.Itoa(len(g.Items)) + ")")
		w.rule('-')
		for _, it := range g.Items {
			name := it.ProductName
			if name == "" {
				name = placeholder
			}
			w.line(padRight(truncate(name, nameWidth), nameWidth) + " " +
				padLeft(FormatQuantity(it.Quantity), qtyWidth) + " " + it.Unit)
			if strings.TrimSpace(it.Notes) != "" {
				w.line("  Not: " + it.Notes)
			}
			total = total.Add(it.Quantity)
			if _, ok := perUnit[it.Unit]; !ok {
				units = append(units, it.Unit)
			}
			perUnit[it.Unit] = perUnit[it.Unit].Add(it.Quantity)
		}
	}

	w.rule('-')
	w.field("TOPLAM", FormatQuantity(total))
	if len(units) > 1 {
		for _, u := range units {
			label := u
			if label == "" {
				label = placeholder
			}
			w.field("  "+label, FormatQuantity(perUnit[u]))
		}
	}
	if f.opts.ShowTotalAmount && !order.TotalAmount.IsZero() {
		w.field("Tutar", "₺"+order.TotalAmount.StringFixed(2))
	}
	if f.opts.ShowPriority {
		if p, ok := deliveryPriority(order.DeliveryDate, printedAt); ok {
			w.field("Öncelik", p)
		}
	}
	w.blank()

	w.rule('=')
	w.field("Yazıcı", printer)
	w.field("Yazdırma", printedAt.Format("02.01.2006 15:04:05"))
	w.rule('=')
	// paper cut margin
	w.blank()
	w.blank()
	return w.String()
}

// TestPage renders the page used to verify a printer end to end.
func (f *Formatter) TestPage(printer string, at time.Time) string {
	w := &ticketWriter{width: f.opts.Width}
	w.rule('=')
	w.center(f.opts.OrganizationName)
	w.center("YAZICI TEST SAYFASI")
	w.rule('=')
	w.blank()
	w.line("Türkçe: ÇĞİÖŞÜ çğıöşü")
	w.line("Rakamlar: 0123456789")
	w.rule('-')
	w.field("Yazıcı", printer)
	w.field("Zaman", at.Format("02.01.2006 15:04:05"))
	w.rule('=')
	w.blank()
	w.blank()
	return w.String()
}

// FormatQuantity prints whole quantities without decimals and keeps the
// significant decimals otherwise ("2.5", "0.25").
func FormatQuantity(q decimal.Decimal) string {
	if q.IsInteger() {
		return q.StringFixed(0)
	}
	return q.String()
}

func deliveryPriority(delivery string, printedAt time.Time) (string, bool) {
	d, ok := parseDate(delivery, printedAt.Location())
	if !ok {
		return "", false
	}
	hours := d.Sub(printedAt).Hours()
	switch {
	case hours <= 24:
		return "ACİL - 24 SAAT İÇİNDE", true
	case hours <= 48:
		return "NORMAL - 48 SAAT İÇİNDE", true
	default:
		return "STANDART", true
	}
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation(domain.DateLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func formatDate(s string) string {
	if s == "" {
		return placeholder
	}
	if t, ok := parseDate(s, time.UTC); ok {
		return t.Format("02.01.2006")
	}
	return s
}

func formatDateTime(s string) string {
	if s == "" {
		return placeholder
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("02.01.2006 15:04")
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.Format("02.01.2006 15:04")
	}
	return s
}

type ticketWriter struct {
	width int
	b     strings.Builder
}

func (w *ticketWriter) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *ticketWriter) blank() { w.b.WriteByte('\n') }

func (w *ticketWriter) String() string { return w.b.String() }

func (w *ticketWriter) rule(c rune) { w.line(strings.Repeat(string(c), w.width)) }

func (w *ticketWriter) center(s string) {
	n := utf8.RuneCountInString(s)
	if n >= w.width {
		w.line(s)
		return
	}
	w.line(strings.Repeat(" ", (w.width-n)/2) + s)
}

// field writes "label: value", wrapping long values under the value column.
func (w *ticketWriter) field(label, value string) {
	if strings.TrimSpace(value) == "" {
		value = placeholder
	}
	prefix := padRight(label, labelWidth) + ": "
	indent := strings.Repeat(" ", labelWidth+2)
	for i, part := range wrap(value, w.width-labelWidth-2) {
		if i == 0 {
			w.line(prefix + part)
		} else {
			w.line(indent + part)
		}
	}
}

func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{s}
	}
	var lines []string
	cur := ""
	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			r := []rune(word)
			lines = append(lines, string(r[:width]))
			word = string(r[width:])
		}
		switch {
		case cur == "":
			cur = word
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func padRight(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

func padLeft(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return strings.Repeat(" ", n-c) + s
	}
	return s
}
