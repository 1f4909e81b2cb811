package borelog

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"

	"github.com/boreledger/boreledger/pkg/apperr"
)

// XLSX is a zipped archive of XML parts; a full spreadsheet library is
// overkill for reading one worksheet's cell values, so this reads only the
// two parts the borelog documents actually use.

var colRefPattern = regexp.MustCompile(`^([A-Z]+)`)

type sheetXML struct {
	XMLName xml.Name   `xml:"worksheet"`
	Rows    []sheetRow `xml:"sheetData>row"`
}

type sheetRow struct {
	Cells []sheetCell `xml:"c"`
}

type sheetCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline struct {
		Text string `xml:"t"`
	} `xml:"is"`
}

type sharedStringsXML struct {
	XMLName xml.Name     `xml:"sst"`
	Items   []sharedItem `xml:"si"`
}

type sharedItem struct {
	Text  string `xml:"t"`
	Runs  []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

func (s sharedItem) resolve() string {
	if s.Text != "" {
		return s.Text
	}
	var b strings.Builder
	for _, r := range s.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// ParseXLSXRows reads the first worksheet of an XLSX file into a row-major
// slice of string cells, preserving sparse column alignment: a row whose
// populated cells are "A1" and "D1" yields [value-of-A, "", "", value-of-D]
// so downstream column indices still line up with the header.
func ParseXLSXRows(body []byte) ([][]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, apperr.MalformedInput("borelog: not a valid xlsx archive: %v", err)
	}

	sharedStrings, err := readSharedStrings(archive)
	if err != nil {
		return nil, err
	}

	var sheetFile *zip.File
	for _, f := range archive.File {
		if f.Name == "xl/worksheets/sheet1.xml" {
			sheetFile = f
			break
		}
	}
	if sheetFile == nil {
		return nil, apperr.MalformedInput("borelog: xlsx missing xl/worksheets/sheet1.xml")
	}

	rc, err := sheetFile.Open()
	if err != nil {
		return nil, apperr.MalformedInput("borelog: opening sheet1.xml: %v", err)
	}
	defer rc.Close()

	var sheet sheetXML
	if err := xml.NewDecoder(rc).Decode(&sheet); err != nil {
		return nil, apperr.MalformedInput("borelog: decoding sheet1.xml: %v", err)
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		var values []string
		expectedCol := 0
		for _, cell := range row.Cells {
			colIdx := columnRefToIndex(cell.Ref)
			for expectedCol < colIdx {
				values = append(values, "")
				expectedCol++
			}
			values = append(values, strings.TrimSpace(resolveCellValue(cell, sharedStrings)))
			expectedCol++
		}
		rows = append(rows, values)
	}
	return rows, nil
}

func readSharedStrings(archive *zip.Reader) ([]string, error) {
	for _, f := range archive.File {
		if f.Name != "xl/sharedStrings.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, apperr.MalformedInput("borelog: opening sharedStrings.xml: %v", err)
		}
		defer rc.Close()

		var sst sharedStringsXML
		if err := xml.NewDecoder(rc).Decode(&sst); err != nil {
			return nil, apperr.MalformedInput("borelog: decoding sharedStrings.xml: %v", err)
		}
		out := make([]string, len(sst.Items))
		for i, item := range sst.Items {
			out[i] = item.resolve()
		}
		return out, nil
	}
	return nil, nil
}

func resolveCellValue(cell sheetCell, sharedStrings []string) string {
	switch cell.Type {
	case "s":
		idx, err := strconv.Atoi(cell.Value)
		if err != nil || idx < 0 || idx >= len(sharedStrings) {
			return ""
		}
		return sharedStrings[idx]
	case "inlineStr":
		return cell.Inline.Text
	default:
		return cell.Value
	}
}

// columnRefToIndex converts an Excel cell reference like "B2" to a
// zero-based column index.
func columnRefToIndex(ref string) int {
	match := colRefPattern.FindString(ref)
	if match == "" {
		return 0
	}
	result := 0
	for _, ch := range match {
		result = result*26 + int(ch-'A'+1)
	}
	if result == 0 {
		return 0
	}
	return result - 1
}
