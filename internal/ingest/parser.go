package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

// ErrUnsupportedFormat rejects file types the pipeline cannot ingest.
type ErrUnsupportedFormat struct {
	Ext string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.Ext)
}

// Segment is one extracted unit of source text before chunking: a PDF page, a
// subtitle cue run, or a whole plain-text body.
type Segment struct {
	Text       string
	PageNumber int    // 0 when the source has no pages
	Timestamp  string // set for time-coded sources
}

// ExtractSegments pulls text out of a source file by extension.
func ExtractSegments(filePath string) ([]Segment, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".pdf":
		return extractPDF(filePath)
	case ".docx":
		return extractDOCX(filePath)
	case ".srt":
		return extractSRT(filePath)
	case ".md":
		return extractMarkdown(filePath)
	case ".txt":
		return extractText(filePath)
	default:
		return nil, &ErrUnsupportedFormat{Ext: ext}
	}
}

func extractPDF(filePath string) ([]Segment, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	var segments []Segment
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		segments = append(segments, Segment{Text: pageText, PageNumber: i})
	}
	return segments, nil
}

func extractDOCX(filePath string) ([]Segment, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer r.Close()

	text := extractTextRuns(r.Editable().GetContent(), "<w:t")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []Segment{{Text: text}}, nil
}

func extractText(filePath string) ([]Segment, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []Segment{{Text: string(data)}}, nil
}

func extractMarkdown(filePath string) ([]Segment, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	text, err := flattenMarkdown(data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []Segment{{Text: text}}, nil
}

// srtCueRe captures the start timestamp and text of one SRT cue.
var srtCueRe = regexp.MustCompile(`(?s)(\d+:\d+:\d+[,.]\d+)\s*-->\s*\d+:\d+:\d+[,.]\d+\s*\n(.*?)(?:\n\n|\z)`)

// cuesPerSegment groups subtitle cues so each segment carries its first cue's
// timestamp without producing one segment per line of speech.
const cuesPerSegment = 20

func extractSRT(filePath string) ([]Segment, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cues := srtCueRe.FindAllStringSubmatch(string(data), -1)
	if len(cues) == 0 {
		return nil, nil
	}

	var segments []Segment
	for start := 0; start < len(cues); start += cuesPerSegment {
		end := start + cuesPerSegment
		if end > len(cues) {
			end = len(cues)
		}

		var texts []string
		for _, cue := range cues[start:end] {
			text := strings.TrimSpace(cue[2])
			if text != "" {
				texts = append(texts, text)
			}
		}
		if len(texts) == 0 {
			continue
		}
		segments = append(segments, Segment{
			Text:      strings.Join(texts, " "),
			Timestamp: cues[start][1],
		})
	}
	return segments, nil
}

// flattenMarkdown parses markdown with goldmark and re-emits it as plain text
// with heading and list markers intact, so structural signals survive
// chunking without HTML noise.
func flattenMarkdown(source []byte) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gmtext.NewReader(source))

	var sb strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				sb.WriteString("\n" + strings.Repeat("#", node.Level) + " ")
			} else {
				sb.WriteString("\n")
			}
		case *ast.Paragraph:
			if !entering {
				sb.WriteString("\n")
			}
		case *ast.ListItem:
			if entering {
				sb.WriteString("\n- ")
			}
		case *ast.Text:
			if entering {
				sb.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteString(" ")
				}
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to flatten markdown: %w", err)
	}
	return strings.Trim(sb.String(), " \t\n\r"), nil
}

// extractTextRuns collects the text inside repeated XML elements opened by
// openTag, e.g. "<w:t" for DOCX runs.
func extractTextRuns(xmlContent, openTag string) string {
	var text strings.Builder
	rest := xmlContent
	for {
		idx := strings.Index(rest, openTag)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(openTag):]
		close := strings.Index(rest, ">")
		if close < 0 {
			break
		}
		rest = rest[close+1:]
		end := strings.Index(rest, "</")
		if end < 0 {
			break
		}
		text.WriteString(rest[:end] + " ")
		rest = rest[end+2:]
	}
	return text.String()
}
