package invoice

import (
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/signature"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"backend/internal/models"
)

var (
	headerFill = props.Color{Red: 40, Green: 60, Blue: 90}
	rowFill    = props.Color{Red: 242, Green: 244, Blue: 247}
	badgeFill  = props.Color{Red: 220, Green: 228, Blue: 238}
	white      = props.Color{Red: 255, Green: 255, Blue: 255}
)

// Renderer produces the printable invoice PDF for an order.
type Renderer struct {
	company Company
}

func NewRenderer(company Company) *Renderer {
	return &Renderer{company: company}
}

// Render builds the document data and lays it out as a single-page PDF.
// Line items beyond the reserved table area are silently omitted.
func (r *Renderer) Render(order models.Order) ([]byte, error) {
	doc := BuildDocument(order, r.company)

	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithRightMargin(12).
		WithTopMargin(12).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(7, r.company.Name, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
		}),
		text.NewCol(5, "FATURA", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(12,
		col.New(7),
		col.New(5).Add(
			text.New("Fatura No: "+doc.Number, props.Text{Size: 9, Align: align.Right}),
			text.New("Düzenleme Tarihi: "+doc.IssueDate, props.Text{Size: 9, Top: 4, Align: align.Right}),
		),
	)

	m.AddRow(3, line.NewCol(12))

	m.AddRow(partyRowHeight(doc.Issuer, doc.Customer),
		partyCol(6, "Düzenleyen", doc.Issuer),
		partyCol(6, "Müşteri", doc.Customer),
	)

	m.AddRow(8,
		text.NewCol(6, "Açıklama", props.Text{Size: 9, Style: fontstyle.Bold, Color: &white, Top: 1.5}),
		text.NewCol(1, "Adet", props.Text{Size: 9, Style: fontstyle.Bold, Color: &white, Align: align.Center, Top: 1.5}),
		text.NewCol(2, "Birim Fiyat", props.Text{Size: 9, Style: fontstyle.Bold, Color: &white, Align: align.Right, Top: 1.5}),
		text.NewCol(3, "Tutar", props.Text{Size: 9, Style: fontstyle.Bold, Color: &white, Align: align.Right, Top: 1.5}),
	).WithStyle(&props.Cell{BackgroundColor: &headerFill})

	for _, item := range doc.Lines {
		m.AddRows(itemRow(item))
	}

	m.AddRow(4, col.New(12))

	m.AddRow(7,
		col.New(7),
		text.NewCol(2, "Ara Toplam", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(3, doc.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(7,
		col.New(7),
		text.NewCol(2, "KDV (%20)", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(3, doc.Tax, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(7),
		text.NewCol(2, "Genel Toplam", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, doc.GrandTotal, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)

	m.AddRow(3, line.NewCol(12))

	m.AddRow(10,
		text.NewCol(12, doc.PaymentTerms, props.Text{Size: 8, Top: 2}),
	)
	m.AddRow(8,
		text.NewCol(12, "Son Ödeme Tarihi: "+doc.DueDate, props.Text{Size: 9, Style: fontstyle.Bold}),
	)

	m.AddRow(24,
		col.New(7),
		signature.NewCol(5, "Yetkili İmza / Kaşe", props.Signature{FontSize: 8}),
	)

	m.AddRow(8,
		text.NewCol(12, doc.ThankYou, props.Text{Size: 9, Align: align.Center, Style: fontstyle.Italic}),
	)

	generated, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return generated.GetBytes(), nil
}

func partyCol(size int, label string, party Party) core.Col {
	components := []core.Component{
		text.New(label, props.Text{Size: 8, Style: fontstyle.Bold}),
		text.New(party.Name, props.Text{Size: 10, Style: fontstyle.Bold, Top: 4}),
	}
	for i, partyLine := range party.Lines {
		components = append(components, text.New(partyLine, props.Text{
			Size: 9,
			Top:  9 + float64(i)*4,
		}))
	}
	return col.New(size).Add(components...)
}

func partyRowHeight(parties ...Party) float64 {
	maxLines := 0
	for _, p := range parties {
		if len(p.Lines) > maxLines {
			maxLines = len(p.Lines)
		}
	}
	return 14 + float64(maxLines)*4
}

func itemRow(item Line) core.Row {
	height := 4 + float64(len(item.Description))*4

	descComponents := make([]core.Component, 0, len(item.Description))
	for i, descLine := range item.Description {
		descComponents = append(descComponents, text.New(descLine, props.Text{
			Size: 9,
			Top:  1 + float64(i)*4,
		}))
	}

	badge := text.NewCol(1, strconv.Itoa(item.Quantity), props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Center,
		Top:   1,
	}).WithStyle(&props.Cell{BackgroundColor: &badgeFill})

	built := row.New(height).Add(
		col.New(6).Add(descComponents...),
		badge,
		text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right, Top: 1}),
		text.NewCol(3, item.LineTotal, props.Text{Size: 9, Align: align.Right, Top: 1}),
	)

	if item.Shaded {
		built.WithStyle(&props.Cell{BackgroundColor: &rowFill})
	}

	return built
}
