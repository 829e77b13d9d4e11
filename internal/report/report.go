// Package report renders quiz results as PDF documents.
package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/victornm/quli/internal/domain"
	"github.com/victornm/quli/internal/grading"
	"github.com/victornm/quli/internal/score"
)

// WritePDF writes a one-document report of r to w: the score summary followed
// by every question with the given answer and the correct one.
func WritePDF(w io.Writer, r *domain.QuizResult) error {
	if r == nil || r.Quiz == nil {
		return fmt.Errorf("report: result without quiz")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Quiz results: "+r.Quiz.Topic), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Quiz results: "+r.Quiz.Topic))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Score: %s%% (%s)", score.Round(r.Score).StringFixed(1), score.Band(r.Score)))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Correct answers: %d/%d", r.CorrectAnswers, r.TotalQuestions))
	pdf.Ln(8)
	if r.TimeTaken != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Time taken: %.1f seconds", *r.TimeTaken))
		pdf.Ln(8)
	}
	pdf.Ln(6)

	answers := make(map[int]domain.UserAnswer, len(r.Answers))
	for _, a := range r.Answers {
		answers[a.QuestionIndex] = a
	}

	for i, q := range r.Quiz.Questions {
		pdf.SetFont("Arial", "B", 12)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, q.Text)), "", "L", false)

		pdf.SetFont("Arial", "", 11)
		if q.Type == domain.QuestionTypeMultipleChoice {
			for j, o := range q.Options {
				pdf.MultiCell(0, 6, tr(fmt.Sprintf("   %s) %s", grading.Letter(j), o)), "", "L", false)
			}
		}

		verdict, given := "Not answered", "-"
		if a, ok := answers[i]; ok {
			given = a.Answer
			verdict = "Incorrect"
			if a.IsCorrect {
				verdict = "Correct"
			}
		}
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("Your answer: %s (%s)", given, verdict)), "", "L", false)
		pdf.MultiCell(0, 6, tr("Correct answer: "+q.CorrectAnswer), "", "L", false)
		if q.Explanation != "" {
			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(0, 6, tr(q.Explanation), "", "L", false)
		}
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: write pdf: %w", err)
	}
	return nil
}
