// Package export renders pipeline text artifacts as Word documents.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reQuestion = regexp.MustCompile(`^Q:\s+(.+)$`)
	reAnswer   = regexp.MustCompile(`^Answer:\s+(.+)$`)
)

// Docx writes text to outputPath as a styled document. Markdown headings,
// bullets and **bold** spans are honoured; quiz "Q:" and "Answer:" lines
// are emphasised. Blank lines separate paragraphs.
func Docx(title, text, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		switch {
		case reHeading.MatchString(trimmed):
			m := reHeading.FindStringSubmatch(trimmed)
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
		case reQuestion.MatchString(trimmed):
			addStyledRun(doc.AddParagraph(""), trimmed, true, fontSize)
		case reAnswer.MatchString(trimmed):
			p := doc.AddParagraph("")
			p.AddText("Answer: ").Font(fontName).Size(fontSize).Color("000000")
			p.AddText(reAnswer.FindStringSubmatch(trimmed)[1]).Font(fontName).Size(fontSize).Color("1F7A1F").Bold(true)
		case reBullet.MatchString(trimmed):
			addRichText(doc.AddParagraph(""), "• "+reBullet.FindStringSubmatch(trimmed)[1])
		default:
			addRichText(doc.AddParagraph(""), trimmed)
		}
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save %s: %w", outputPath, err)
	}
	return nil
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
