package app

import (
	"strings"
	"testing"
)

func TestParseDocumentPlainText(t *testing.T) {
	text, err := parseDocument("sermons/s1/notes.txt", strings.NewReader("walk by faith"))
	if err != nil {
		t.Fatalf("parseDocument: %v", err)
	}
	if text != "walk by faith" {
		t.Fatalf("text = %q", text)
	}
}

func TestParseDocumentHTML(t *testing.T) {
	page := `<html><head><title>ignored</title><style>p{color:red}</style>
<script>var x = "never";</script></head>
<body><h1>The Prodigal Son</h1><p>A man had <b>two</b> sons.</p></body></html>`
	text, err := parseDocument("sermons/s1/page.html", strings.NewReader(page))
	if err != nil {
		t.Fatalf("parseDocument: %v", err)
	}
	if !strings.Contains(text, "The Prodigal Son") || !strings.Contains(text, "two") {
		t.Fatalf("body text missing: %q", text)
	}
	if strings.Contains(text, "color:red") || strings.Contains(text, "never") {
		t.Fatalf("script or style leaked into text: %q", text)
	}
}

func TestParseDocumentBadPDF(t *testing.T) {
	if _, err := parseDocument("sermons/s1/broken.pdf", strings.NewReader("not a pdf")); err == nil {
		t.Fatal("malformed PDF accepted")
	}
}
