package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

func extractPlain(_ context.Context, data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// htmlInline elements continue the surrounding text run; every other element
// breaks it.
var htmlInline = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "data": true, "dfn": true, "em": true, "i": true, "kbd": true,
	"mark": true, "q": true, "s": true, "samp": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true, "var": true,
}

func extractHTML(ctx context.Context, data []byte) (string, error) {
	s, _ := extractPlain(ctx, data)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	var b strings.Builder
	htmlText(doc.Selection, &b)
	return collapseWhitespace(b.String()), nil
}

// htmlText appends the text nodes under sel in document order. Comments are
// dropped and entities arrive already decoded.
func htmlText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); name {
		case "#text":
			b.WriteString(c.Text())
		case "#comment":
		default:
			if htmlInline[name] {
				htmlText(c, b)
				return
			}
			b.WriteByte(' ')
			htmlText(c, b)
			b.WriteByte(' ')
		}
	})
}

// extractDOCX gathers the <w:t> runs of word/document.xml, one line per paragraph.
func extractDOCX(_ context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx zip: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx: word/document.xml not found")
	}
	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	var out, para strings.Builder
	flush := func() {
		if line := collapseWhitespace(para.String()); line != "" {
			out.WriteString(line)
			out.WriteString("\n")
		}
		para.Reset()
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "t" {
				var v string
				_ = dec.DecodeElement(&v, &se)
				para.WriteString(v)
			}
		case xml.EndElement:
			if se.Name.Local == "p" {
				flush()
			}
		}
	}
	flush()
	return strings.TrimRight(out.String(), "\n"), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
