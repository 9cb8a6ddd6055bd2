package content

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Zip local-file header; .docx files are zip containers.
var containerMagic = []byte{0x50, 0x4B, 0x03, 0x04}

func isContainer(raw []byte) bool {
	return bytes.HasPrefix(raw, containerMagic)
}

// decodeContainer renders the main document part of a .docx container as
// HTML paragraphs.
func decodeContainer(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open container: %w", err)
	}

	var document *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("container has no word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open document part: %w", err)
	}
	defer rc.Close()

	return renderDocumentXML(rc)
}

// renderDocumentXML walks the WordprocessingML token stream and emits one
// <p> element per non-empty w:p paragraph. Only text runs contribute
// characters; formatting properties are dropped.
func renderDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var out strings.Builder
	var para strings.Builder
	inPara := false
	inText := false
	textLen := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document part: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				para.Reset()
				textLen = 0
			case "t":
				inText = inPara
			case "br", "cr":
				if inPara {
					para.WriteString("<br>")
				}
			case "tab":
				if inPara {
					para.WriteString(" ")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara && textLen > 0 {
					out.WriteString("<p>" + para.String() + "</p>\n")
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				text := string(t)
				para.WriteString(escapeHTML(text))
				textLen += len(strings.TrimSpace(text))
			}
		}
	}

	return strings.TrimRight(out.String(), "\n"), nil
}
