package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Renderer is the document rendering collaborator.
type Renderer interface {
	Render(model *Model, w io.Writer) error
}

// PDFRenderer lays a Model out on Letter pages with the core Helvetica font.
type PDFRenderer struct{}

func (PDFRenderer) Render(model *Model, w io.Writer) error {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetTitle("Fitness Report - "+model.UserName, true)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "Fitness Assistant - Personalized Report", "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 6, tr("Prepared for: "+model.UserName), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, "Date: "+model.GeneratedAt.Format("January 02, 2006"), "", 1, "L", false, 0, "")
	doc.Ln(6)

	heading(doc, "User Profile & BMI")
	profileRows := make([][]string, 0, len(model.Profile))
	for _, f := range model.Profile {
		profileRows = append(profileRows, []string{f.Label, f.Value})
	}
	table(doc, tr, []string{"Field", "Value"}, []float64{50, 80}, profileRows, [3]int{211, 211, 211})

	heading(doc, "Fitness Goals")
	if len(model.Goals) == 0 {
		paragraph(doc, tr, "No goals have been set yet.")
	} else {
		goalRows := make([][]string, 0, len(model.Goals))
		for _, g := range model.Goals {
			goalRows = append(goalRows, []string{g.Title, g.Target, g.Current, g.Progress, g.Status, g.Period})
		}
		table(doc, tr,
			[]string{"Goal Type", "Target", "Current", "Progress", "Status", "Period"},
			[]float64{38, 20, 20, 25, 25, 60},
			goalRows, [3]int{173, 216, 230},
		)
	}

	heading(doc, "Recent Workouts")
	if len(model.Workouts) == 0 {
		paragraph(doc, tr, "No workouts logged yet.")
	} else {
		workoutRows := make([][]string, 0, len(model.Workouts))
		for _, wo := range model.Workouts {
			workoutRows = append(workoutRows, []string{wo.Date, wo.Exercise, fmt.Sprintf("%d", wo.DurationMin), wo.Calories})
		}
		table(doc, tr,
			[]string{"Date", "Exercise", "Duration (min)", "Calories"},
			[]float64{30, 80, 30, 30},
			workoutRows, [3]int{144, 238, 144},
		)
	}

	heading(doc, fmt.Sprintf("Chat Summary (Last %d Interactions)", RecentChatsLimit))
	if len(model.Chats) == 0 {
		paragraph(doc, tr, "No chat history found.")
	}
	for _, c := range model.Chats {
		paragraph(doc, tr, "You: "+c.UserMessage)
		paragraph(doc, tr, "Nova AI: "+c.BotReply)
		doc.Ln(2)
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("layout pdf: %w", err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func heading(doc *fpdf.Fpdf, text string) {
	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
}

func paragraph(doc *fpdf.Fpdf, tr func(string) string, text string) {
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, tr(text), "", "L", false)
}

func table(doc *fpdf.Fpdf, tr func(string) string, header []string, widths []float64, rows [][]string, headerRGB [3]int) {
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(headerRGB[0], headerRGB[1], headerRGB[2])
	for i, h := range header {
		doc.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, cell := range row {
			doc.CellFormat(widths[i], 6, tr(cell), "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
}
