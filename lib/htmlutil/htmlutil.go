package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nmcassa/letterboxdpy-sub000/lib/textutil"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses the raw text of a selection into a single trimmed,
// printable line.
func CleanText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, node := range sel.Nodes {
		buffer.WriteString(GetText(node))
	}
	text := removeNonPrintable(buffer.String())
	return textutil.NormalizeWhitespace(text)
}

// ClassWithPrefix returns the first class of the selection starting with
// prefix, with the prefix removed. The second return is false when no class
// matches.
func ClassWithPrefix(sel *goquery.Selection, prefix string) (string, bool) {
	classes, exists := sel.Attr("class")
	if !exists {
		return "", false
	}
	for _, class := range strings.Fields(classes) {
		if strings.HasPrefix(class, prefix) {
			return strings.TrimPrefix(class, prefix), true
		}
	}
	return "", false
}

// Paragraphs returns the cleaned text of every <p> under the selection,
// skipping empty ones.
func Paragraphs(sel *goquery.Selection) []string {
	var out []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := CleanText(p)
		if text == "" {
			return
		}
		out = append(out, text)
	})
	return out
}
