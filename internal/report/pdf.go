package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/pavelanni/testgen/internal/model"
)

const (
	pdfMargin     = 15.0
	pdfLineHeight = 6.0
	pdfBlockGap   = 4.0
	pdfFont       = "Helvetica"
)

// WritePDF renders the report as an A4 document: title, timestamp, one block
// per question, the total score, then a page with both charts.
func WritePDF(w io.Writer, rep model.Report, labels Labels) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(labels.Title, true)
	pdf.SetAuthor(rep.UserName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	textW := pageW - 2*pdfMargin
	bottom := pageH - pdfMargin

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(textW, 10, tr(fmt.Sprintf("%s: %s", labels.Title, rep.UserName)), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(textW, pdfLineHeight, tr(fmt.Sprintf("%s: %s", labels.Date, rep.GeneratedAt.Format(TextTimeLayout))), "", 1, "L", false, 0, "")
	pdf.Ln(pdfBlockGap)

	for i, e := range rep.Entries {
		question := tr(fmt.Sprintf("%d. %s", i+1, e.Question))
		given := labels.Omitted
		if !e.Omitted() {
			given = e.GivenText()
		}
		marker := labels.Wrong
		switch {
		case e.IsCorrect:
			marker = labels.Right
		case e.Omitted():
			marker = labels.Omitted
		}
		lines := []string{
			tr(fmt.Sprintf("%s: %s", labels.Given, given)),
			tr(fmt.Sprintf("%s: %s", labels.Correct, e.Correct)),
			tr(marker),
		}

		pdf.SetFont(pdfFont, "B", 11)
		height := lineCount(pdf, question, textW)
		pdf.SetFont(pdfFont, "", 10)
		for _, l := range lines {
			height += lineCount(pdf, l, textW)
		}
		if pdf.GetY()+height > bottom {
			pdf.AddPage()
		}

		pdf.SetFont(pdfFont, "B", 11)
		pdf.MultiCell(textW, pdfLineHeight, question, "", "L", false)
		pdf.SetFont(pdfFont, "", 10)
		pdf.MultiCell(textW, pdfLineHeight, lines[0], "", "L", false)
		pdf.MultiCell(textW, pdfLineHeight, lines[1], "", "L", false)
		switch {
		case e.IsCorrect:
			pdf.SetTextColor(46, 125, 50)
		case e.Omitted():
			pdf.SetTextColor(117, 117, 117)
		default:
			pdf.SetTextColor(198, 40, 40)
		}
		pdf.MultiCell(textW, pdfLineHeight, lines[2], "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(pdfBlockGap)
	}

	if pdf.GetY()+2*pdfLineHeight > bottom {
		pdf.AddPage()
	}
	pdf.SetFont(pdfFont, "B", 12)
	pdf.CellFormat(textW, 2*pdfLineHeight, tr(fmt.Sprintf("%s: %.2f", labels.Total, rep.Summary.Total)), "T", 1, "L", false, 0, "")

	if rep.Summary.Count() > 0 {
		if err := addCharts(pdf, rep.Summary, labels, textW); err != nil {
			return err
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

// lineCount returns the height a MultiCell of already translated cp1252 text
// occupies at the current font.
func lineCount(pdf *fpdf.Fpdf, s string, w float64) float64 {
	return float64(len(pdf.SplitLines([]byte(s), w))) * pdfLineHeight
}

func addCharts(pdf *fpdf.Fpdf, sum model.ScoreSummary, labels Labels, textW float64) error {
	pdf.AddPage()
	imgW := textW * 0.8
	imgH := imgW * chartHeight / chartWidth
	x := pdfMargin + (textW-imgW)/2

	charts := []struct {
		name   string
		render func(io.Writer, model.ScoreSummary, Labels) error
	}{
		{ChartProportion, ProportionChart},
		{ChartMagnitude, MagnitudeChart},
	}
	for i, c := range charts {
		var buf bytes.Buffer
		if err := c.render(&buf, sum, labels); err != nil {
			return fmt.Errorf("render %s chart: %w", c.name, err)
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(c.name, opts, &buf)
		y := pdfMargin + float64(i)*(imgH+pdfBlockGap)
		pdf.ImageOptions(c.name, x, y, imgW, imgH, false, opts, 0, "")
	}
	return nil
}
