// Package materials turns web pages into study material chunks ready
// for upload. Lecture notes and course wikis are usually plain HTML;
// the importer extracts their text so the backend can index it.
package materials

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/arnavkapoor/campuschat/internal/api"
)

// maxChunkRunes bounds a single chunk so retrieval stays precise.
const maxChunkRunes = 1500

// Page is the extracted content of one HTML document.
type Page struct {
	Title    string
	Sections []Section
}

// Section is a heading with the paragraphs under it. Text before the
// first heading lands in a section with an empty Heading.
type Section struct {
	Heading    string
	Paragraphs []string
}

// Importer fetches and parses HTML study material.
type Importer struct {
	client *resty.Client
	logger *zap.Logger
}

func NewImporter(timeout time.Duration, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; campuschat/1.0)")

	return &Importer{client: client, logger: logger}
}

// FetchPage downloads and extracts one page.
func (im *Importer) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	if strings.TrimSpace(pageURL) == "" {
		return nil, fmt.Errorf("page URL cannot be empty")
	}

	resp, err := im.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP error %d fetching %s", resp.StatusCode(), pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse HTML from %s: %w", pageURL, err)
	}

	page := extractPage(doc)
	if len(page.Sections) == 0 {
		return nil, fmt.Errorf("no readable content found at %s", pageURL)
	}

	im.logger.Debug("extracted page",
		zap.String("url", pageURL),
		zap.String("title", page.Title),
		zap.Int("sections", len(page.Sections)))
	return page, nil
}

// extractPage pulls title and sectioned text out of the document.
func extractPage(doc *goquery.Document) *Page {
	page := &Page{Title: extractTitle(doc)}

	root := contentRoot(doc)

	current := Section{}
	flush := func() {
		if len(current.Paragraphs) > 0 {
			page.Sections = append(page.Sections, current)
		}
	}

	root.Find("h1, h2, h3, p, li").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3":
			flush()
			current = Section{Heading: text}
		default:
			// Nested li nodes repeat their parents' text; keep leaves.
			if goquery.NodeName(s) == "li" && s.Find("li").Length() > 0 {
				return
			}
			current.Paragraphs = append(current.Paragraphs, text)
		}
	})
	flush()

	return page
}

func extractTitle(doc *goquery.Document) string {
	selectors := []string{"h1", "title", ".page-title", ".entry-title"}
	for _, selector := range selectors {
		if t := strings.TrimSpace(doc.Find(selector).First().Text()); t != "" {
			return strings.Join(strings.Fields(t), " ")
		}
	}
	return "Untitled"
}

// contentRoot narrows extraction to the main content area when the page
// marks one, skipping navigation and footers.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	selectors := []string{"main", "article", ".content", ".entry-content", "#content"}
	for _, selector := range selectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection
}

// Chunks converts a page into upload payloads for the given document.
// Paragraphs are packed until a chunk would exceed maxChunkRunes, and
// sections never share a chunk so headings stay accurate.
func Chunks(page *Page, documentID int) []api.MaterialChunkInput {
	var out []api.MaterialChunkInput

	for _, section := range page.Sections {
		var buf []string
		size := 0

		emit := func() {
			if len(buf) == 0 {
				return
			}
			chunk := api.MaterialChunkInput{
				DocumentID: documentID,
				Text:       strings.Join(buf, "\n\n"),
			}
			if section.Heading != "" {
				heading := section.Heading
				chunk.Heading = &heading
			}
			out = append(out, chunk)
			buf = nil
			size = 0
		}

		for _, para := range section.Paragraphs {
			runes := len([]rune(para))
			if size > 0 && size+runes > maxChunkRunes {
				emit()
			}
			buf = append(buf, para)
			size += runes
		}
		emit()
	}

	return out
}
