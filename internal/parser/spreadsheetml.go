package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// ReadSpreadsheetML flattens an XML spreadsheet export into rows of cell
// strings. Each <Row> becomes one row; each <Cell> contributes the text of
// its dataTag child ("Data" for the vendor export) or "" when the cell has
// none. ss:Index gaps are padded with empty cells. Cell comments are
// ignored. Rows without cells are skipped.
func ReadSpreadsheetML(r io.Reader, dataTag string) ([][]string, error) {
	if dataTag == "" {
		dataTag = "Data"
	}
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		rows    [][]string
		row     []string
		inRow   bool
		inCell  bool
		hasData bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "Row":
				inRow = true
				row = nil
			case "Cell":
				if !inRow {
					continue
				}
				inCell, hasData = true, false
				if idx := cellIndex(se); idx > 0 {
					for len(row) < idx-1 {
						row = append(row, "")
					}
				}
			case "Comment":
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("skip comment: %w", err)
				}
			case dataTag:
				if !inRow {
					continue
				}
				text, err := elementText(dec, dataTag)
				if err != nil {
					return nil, err
				}
				row = append(row, strings.TrimSpace(text))
				if inCell {
					hasData = true
				}
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "Cell":
				if inCell && !hasData {
					row = append(row, "")
				}
				inCell = false
			case "Row":
				if len(row) > 0 {
					rows = append(rows, row)
				}
				inRow = false
			}
		}
	}
	return rows, nil
}

// cellIndex reads the 1-based ss:Index attribute of a cell, 0 if absent.
func cellIndex(se xml.StartElement) int {
	for _, a := range se.Attr {
		if a.Name.Local == "Index" {
			n, err := strconv.Atoi(strings.TrimSpace(a.Value))
			if err == nil {
				return n
			}
		}
	}
	return 0
}

// elementText collects all character data up to the matching end tag,
// including text nested in formatting children.
func elementText(dec *xml.Decoder, tag string) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("read <%s>: %w", tag, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	return sb.String(), nil
}
