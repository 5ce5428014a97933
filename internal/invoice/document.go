package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backend/internal/models"
)

const (
	// currencySuffix is appended as plain text, never a currency symbol.
	currencySuffix = " TL"

	// maxTableRows is the reserved line-item area on the single invoice
	// page. Rows beyond it are dropped, not paginated.
	maxTableRows = 12

	// addressWidth is the word-wrap column for the party blocks.
	addressWidth = 38

	// descriptionWidth is the word-wrap column for line-item descriptions.
	descriptionWidth = 48

	dueDays = 30
)

var vatRate = decimal.New(20, -2) // 0.20

// Company is the static issuer block printed on every invoice.
type Company struct {
	Name    string
	Address string
	City    string
	Phone   string
	Email   string
	TaxID   string
}

// DefaultCompany is the issuer identity used in production.
var DefaultCompany = Company{
	Name:    "Demir Yapı Sanayi ve Ticaret Ltd. Şti.",
	Address: "Barbaros Mah. Atatürk Cad. No: 142/3",
	City:    "34746 Ataşehir / İstanbul",
	Phone:   "+90 216 555 01 42",
	Email:   "info@demiryapi.com.tr",
	TaxID:   "VKN: 2750431188",
}

// Party is a rendered issuer or customer block.
type Party struct {
	Name  string
	Lines []string
}

// Line is one rendered line-item row.
type Line struct {
	Description []string
	Quantity    int
	UnitPrice   string
	LineTotal   string
	Shaded      bool
}

// Document holds every string the PDF layout prints. Building it is pure
// and deterministic, which keeps the layout contract testable without
// generating a PDF.
type Document struct {
	Number    string
	IssueDate string
	DueDate   string

	Issuer   Party
	Customer Party

	Lines       []Line
	OmittedRows int

	Subtotal   string
	Tax        string
	GrandTotal string

	PaymentTerms string
	ThankYou     string
}

// BuildDocument derives the printable invoice from an order. The stored
// total is pre-tax; VAT (20%) and the grand total are computed here and
// never persisted back onto the order.
func BuildDocument(order models.Order, company Company) Document {
	number := strings.TrimSpace(order.OrderNumber)
	if number == "" {
		number = order.ID.Hex()
	}

	issuedAt := order.CreatedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	subtotal, tax, grand := grossTotals(order.Total)

	doc := Document{
		Number:       number,
		IssueDate:    issuedAt.Format("02/01/2006 15:04"),
		DueDate:      issuedAt.AddDate(0, 0, dueDays).Format("02/01/2006"),
		Issuer:       issuerParty(company),
		Customer:     customerParty(order.Customer),
		Subtotal:     formatDecimal(subtotal),
		Tax:          formatDecimal(tax),
		GrandTotal:   formatDecimal(grand),
		PaymentTerms: "Ödeme koşulları: fatura tarihinden itibaren 30 gün içinde havale/EFT ile ödenir.",
		ThankYou:     "Bizi tercih ettiğiniz için teşekkür ederiz.",
	}

	for i, item := range order.Items {
		if len(doc.Lines) == maxTableRows {
			doc.OmittedRows = len(order.Items) - maxTableRows
			break
		}

		lineTotal := decimal.NewFromFloat(item.Price).
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Round(2)

		doc.Lines = append(doc.Lines, Line{
			Description: wrapText(item.Name, descriptionWidth),
			Quantity:    item.Quantity,
			UnitPrice:   FormatAmount(item.Price),
			LineTotal:   formatDecimal(lineTotal),
			Shaded:      i%2 == 1,
		})
	}

	return doc
}

func issuerParty(company Company) Party {
	lines := wrapText(company.Address, addressWidth)
	lines = append(lines, company.City)
	if company.Phone != "" {
		lines = append(lines, company.Phone)
	}
	if company.Email != "" {
		lines = append(lines, company.Email)
	}
	if company.TaxID != "" {
		lines = append(lines, company.TaxID)
	}
	return Party{Name: company.Name, Lines: lines}
}

func customerParty(customer models.OrderCustomer) Party {
	address := customer.Address
	if customer.City != "" {
		address += ", " + customer.City
	}
	if customer.PostalCode != "" {
		address += " " + customer.PostalCode
	}

	lines := wrapText(address, addressWidth)
	if customer.Phone != "" {
		lines = append(lines, customer.Phone)
	}
	if customer.Email != "" {
		lines = append(lines, customer.Email)
	}
	return Party{Name: customer.FullName, Lines: lines}
}

func grossTotals(total float64) (subtotal, tax, grand decimal.Decimal) {
	subtotal = decimal.NewFromFloat(total).Round(2)
	tax = subtotal.Mul(vatRate).Round(2)
	return subtotal, tax, subtotal.Add(tax)
}

// GrandTotalAmount renders the VAT-inclusive total for a pre-tax amount with
// the same rounding the invoice itself uses. Anything that prints a gross
// total alongside the invoice must derive it here.
func GrandTotalAmount(total float64) string {
	_, _, grand := grossTotals(total)
	return formatDecimal(grand)
}

// FormatAmount renders a monetary value with two fraction digits, dot
// thousands separators, a comma decimal separator and the fixed currency
// suffix, e.g. 1200 -> "1.200,00 TL".
func FormatAmount(value float64) string {
	return formatDecimal(decimal.NewFromFloat(value).Round(2))
}

func formatDecimal(value decimal.Decimal) string {
	negative := value.IsNegative()
	fixed := value.Abs().StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	grouped := groupThousands(parts[0])

	out := grouped + "," + parts[1] + currencySuffix
	if negative {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	lines := make([]string, 0, 1)
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
