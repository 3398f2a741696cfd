package report

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Style Analysis Report</title>
</head>
<body>
`

// RenderHTML converts a markdown summary into a standalone HTML page.
func RenderHTML(summary string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(htmlHead)
	if err := markdown.Convert([]byte(summary), &buf); err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}
