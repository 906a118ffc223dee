package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/settings"
)

// document draws one invoice. Every string goes through tr so that cp1252
// glyphs such as € survive the core fonts.
type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (d *document) font(style string, size float64, c rgb) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

func (d *document) fill(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }

func (d *document) draw(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }

// text writes a single line at the current position and moves down.
func (d *document) text(w float64, s, align string) {
	d.pdf.CellFormat(w, lineHeight, d.tr(s), "", 2, align, false, 0, "")
}

// block writes possibly multi-line text at the current position.
func (d *document) block(w float64, s, align string) {
	if s == "" {
		return
	}
	d.pdf.MultiCell(w, lineHeight, d.tr(s), "", align, false)
}

// ==================== Header ====================

func (d *document) header(lg *logo, inv *invoice.Invoice, company settings.Company) {
	pdf := d.pdf
	top := pdf.GetY()

	// left: logo and company
	if lg != nil {
		pdf.ImageOptions(lg.name, marginLeft, top, logoWidth, 0, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		pdf.SetY(top + lg.height + 3)
	}
	pdf.SetX(marginLeft)
	d.font("B", 16, colorPrimary)
	pdf.CellFormat(100, 8, d.tr(company.Name), "", 2, "L", false, 0, "")
	d.font("", 9, colorBlack)
	d.block(100, company.Address, "L")
	if company.Phone != "" {
		pdf.SetX(marginLeft)
		d.text(100, "Phone: "+company.Phone, "L")
	}
	leftBottom := pdf.GetY()

	// right: invoice metadata
	const rightX, rightW = 120.0, pageWidth - marginRight - 120.0
	pdf.SetXY(rightX, top)
	d.font("B", 24, colorSecondary)
	pdf.CellFormat(rightW, 12, "INVOICE", "", 2, "R", false, 0, "")
	d.font("", 9, colorBlack)
	for _, line := range []string{
		"Order #: " + inv.OrderNumber,
		"Date: " + inv.Date.Format(DateLayout),
		"Currency: " + string(inv.Currency),
	} {
		pdf.SetX(rightX)
		d.text(rightW, line, "R")
	}

	pdf.SetXY(marginLeft, max(leftBottom, pdf.GetY())+8)
}

// ==================== Billing ====================

func (d *document) billTo(b invoice.Billing) {
	pdf := d.pdf
	d.font("B", 11, colorPrimary)
	d.text(contentWidth, "BILL TO:", "L")
	d.font("B", 10, colorBlack)
	d.text(contentWidth, b.Name, "L")
	d.font("", 9, colorBlack)
	d.block(contentWidth, b.Address, "L")
	if b.Phone != "" {
		pdf.SetX(marginLeft)
		d.text(contentWidth, "Phone: "+b.Phone, "L")
	}
	pdf.Ln(6)
}

// ==================== Item table ====================

func (d *document) tableHeader() {
	pdf := d.pdf
	d.font("B", 10, colorWhite)
	d.fill(colorPrimary)
	d.draw(colorDarkGray)
	pdf.SetLineWidth(0.2)
	pdf.SetX(marginLeft)
	for _, col := range columns {
		pdf.CellFormat(col.width, 9, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func (d *document) items(inv *invoice.Invoice) {
	pdf := d.pdf
	d.tableHeader()

	descCol := columns[1]
	for i, item := range inv.LineItems {
		d.font("", 9, colorBlack)
		desc := d.clip(pdf.SplitLines([]byte(d.tr(item.Description)), descCol.width), descCol.width)
		if len(desc) == 0 {
			desc = [][]byte{nil}
		}
		rowH := float64(len(desc))*lineHeight + 2*rowPadding

		if pdf.GetY()+rowH > pageHeight-marginBottom {
			pdf.AddPage()
			d.tableHeader()
			d.font("", 9, colorBlack)
		}

		// alternate rows shaded, counting the first data row as 1
		shaded := (i+1)%2 == 0
		d.fill(colorLightGray)

		x, y := marginLeft, pdf.GetY()
		cells := []string{
			strconv.Itoa(item.Position),
			"",
			item.Quantity.String(),
			d.tr(item.UnitPrice.String()),
			d.tr(item.Amount.String()),
		}
		for c, col := range columns {
			pdf.SetXY(x, y)
			pdf.CellFormat(col.width, rowH, "", "1", 0, "", shaded, 0, "")
			if c == 1 {
				for l, line := range desc {
					pdf.SetXY(x, y+rowPadding+float64(l)*lineHeight)
					pdf.CellFormat(col.width, lineHeight, string(line), "", 0, "L", false, 0, "")
				}
			} else {
				pdf.SetXY(x, y)
				pdf.CellFormat(col.width, rowH, cells[c], "", 0, col.align, false, 0, "")
			}
			x += col.width
		}
		pdf.SetXY(marginLeft, y+rowH)
	}
	pdf.Ln(6)
}

// maxDescLines caps a wrapped description so its row fits on one page.
const maxDescLines = 30

// clip cuts lines to maxDescLines, ending the last kept line with "...".
func (d *document) clip(lines [][]byte, w float64) [][]byte {
	if len(lines) <= maxDescLines {
		return lines
	}
	last := bytes.TrimRight(lines[maxDescLines-1], " ")
	for len(last) > 0 && d.pdf.GetStringWidth(string(last)+"...") > w-2 {
		last = last[:len(last)-1]
	}
	out := append([][]byte(nil), lines[:maxDescLines-1]...)
	return append(out, append(bytes.Clone(last), "..."...))
}

// ==================== Totals ====================

type totalRow struct {
	label string
	value string
}

func totalRows(t invoice.Totals) []totalRow {
	rows := []totalRow{{"Subtotal:", t.Subtotal.String()}}
	if t.TaxRate.IsPositive() {
		rows = append(rows, totalRow{fmt.Sprintf("Tax (%s%%):", t.TaxRate.String()), t.Tax.String()})
	}
	if t.Discount.IsPositive() {
		rows = append(rows, totalRow{"Discount:", "- " + t.Discount.String()})
	}
	return rows
}

func (d *document) totals(inv *invoice.Invoice) {
	pdf := d.pdf
	const labelW, valueW = 45.0, 40.0
	left := pageWidth - marginRight - labelW - valueW

	rows := totalRows(inv.Totals)
	need := float64(len(rows))*7 + 12
	if pdf.GetY()+need > pageHeight-marginBottom {
		pdf.AddPage()
	}

	for _, row := range rows {
		pdf.SetX(left)
		d.font("B", 9, colorBlack)
		pdf.CellFormat(labelW, 7, d.tr(row.label), "", 0, "R", false, 0, "")
		d.font("", 9, colorBlack)
		pdf.CellFormat(valueW, 7, d.tr(row.value), "", 1, "R", false, 0, "")
	}

	// grand total
	y := pdf.GetY() + 1
	d.draw(colorPrimary)
	pdf.SetLineWidth(0.7)
	pdf.Line(left, y, pageWidth-marginRight, y)
	pdf.SetXY(left, y+0.5)
	d.fill(colorLightGray)
	d.font("B", 11, colorPrimary)
	pdf.CellFormat(labelW, 10, "GRAND TOTAL:", "", 0, "R", true, 0, "")
	d.font("B", 12, colorSecondary)
	pdf.CellFormat(valueW, 10, d.tr(inv.Totals.Total.String()), "", 1, "R", true, 0, "")
	pdf.SetLineWidth(0.2)
}

// ==================== Footer ====================

func (d *document) footer() {
	pdf := d.pdf
	pdf.SetY(-18)
	d.font("I", 9, colorDarkGray)
	pdf.CellFormat(0, lineHeight, "Thank you for your business!", "", 1, "C", false, 0, "")
	d.font("", 8, colorDarkGray)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
}
