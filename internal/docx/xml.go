package docx

import (
	"cmp"
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

// Namespaces of the WordprocessingML parts written by this package.
const (
	nsW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsCP      = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsDCTerms = "http://purl.org/dc/terms/"
	nsXSI     = "http://www.w3.org/2001/XMLSchema-instance"
)

// Element names carry a literal "w:" prefix; the namespace is declared once
// on the root element.

type xmlDocument struct {
	XMLName xml.Name `xml:"w:document"`
	W       string   `xml:"xmlns:w,attr"`
	R       string   `xml:"xmlns:r,attr"`
	Body    xmlBody  `xml:"w:body"`
}

type xmlBody struct {
	Content []any      `xml:",any"`
	SectPr  *xmlSectPr `xml:"w:sectPr,omitempty"`
}

type xmlParagraph struct {
	XMLName xml.Name `xml:"w:p"`
	PPr     *xmlPPr  `xml:"w:pPr,omitempty"`
	Runs    []xmlRun `xml:"w:r"`
}

type xmlPPr struct {
	Style    *xmlVal     `xml:"w:pStyle,omitempty"`
	KeepNext *xmlOn      `xml:"w:keepNext,omitempty"`
	Tabs     *xmlTabs    `xml:"w:tabs,omitempty"`
	Spacing  *xmlSpacing `xml:"w:spacing,omitempty"`
	Ind      *xmlInd     `xml:"w:ind,omitempty"`
	Jc       *xmlVal     `xml:"w:jc,omitempty"`
	Outline  *xmlVal     `xml:"w:outlineLvl,omitempty"`
}

type xmlRun struct {
	RPr     *xmlRPr `xml:"w:rPr,omitempty"`
	Content []any   `xml:",any"`
}

type xmlRPr struct {
	Fonts *xmlFonts `xml:"w:rFonts,omitempty"`
	Bold  *xmlOn    `xml:"w:b,omitempty"`
	Ital  *xmlOn    `xml:"w:i,omitempty"`
	Size  *xmlVal   `xml:"w:sz,omitempty"`
	SizeC *xmlVal   `xml:"w:szCs,omitempty"`
}

type xmlText struct {
	XMLName xml.Name `xml:"w:t"`
	Space   string   `xml:"xml:space,attr,omitempty"`
	Value   string   `xml:",chardata"`
}

type xmlBreak struct {
	XMLName xml.Name `xml:"w:br"`
	Type    string   `xml:"w:type,attr,omitempty"`
}

type xmlTab struct {
	XMLName xml.Name `xml:"w:tab"`
}

type xmlOn struct{}

type xmlVal struct {
	Val string `xml:"w:val,attr"`
}

type xmlFonts struct {
	ASCII    string `xml:"w:ascii,attr"`
	HAnsi    string `xml:"w:hAnsi,attr"`
	CS       string `xml:"w:cs,attr"`
	EastAsia string `xml:"w:eastAsia,attr"`
}

type xmlTabs struct {
	Tabs []xmlTabStop `xml:"w:tab"`
}

type xmlTabStop struct {
	Val    string `xml:"w:val,attr"`
	Leader string `xml:"w:leader,attr,omitempty"`
	Pos    int    `xml:"w:pos,attr"`
}

type xmlSpacing struct {
	Before   *int   `xml:"w:before,attr,omitempty"`
	After    *int   `xml:"w:after,attr,omitempty"`
	Line     int    `xml:"w:line,attr,omitempty"`
	LineRule string `xml:"w:lineRule,attr,omitempty"`
}

type xmlInd struct {
	Left      int `xml:"w:left,attr,omitempty"`
	FirstLine int `xml:"w:firstLine,attr,omitempty"`
}

type xmlSectPr struct {
	PgSz  xmlPgSz  `xml:"w:pgSz"`
	PgMar xmlPgMar `xml:"w:pgMar"`
}

type xmlPgSz struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type xmlPgMar struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
	Gutter int `xml:"w:gutter,attr"`
}

type xmlTable struct {
	XMLName xml.Name    `xml:"w:tbl"`
	TblPr   xmlTblPr    `xml:"w:tblPr"`
	Grid    xmlTblGrid  `xml:"w:tblGrid"`
	Rows    []xmlTblRow `xml:"w:tr"`
}

type xmlTblPr struct {
	Width   xmlTblWidth   `xml:"w:tblW"`
	Borders xmlTblBorders `xml:"w:tblBorders"`
}

type xmlTblWidth struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type xmlTblBorders struct {
	Top     xmlBorder `xml:"w:top"`
	Left    xmlBorder `xml:"w:left"`
	Bottom  xmlBorder `xml:"w:bottom"`
	Right   xmlBorder `xml:"w:right"`
	InsideH xmlBorder `xml:"w:insideH"`
	InsideV xmlBorder `xml:"w:insideV"`
}

type xmlBorder struct {
	Val   string `xml:"w:val,attr"`
	Size  int    `xml:"w:sz,attr"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type xmlTblGrid struct {
	Cols []xmlGridCol `xml:"w:gridCol"`
}

type xmlGridCol struct {
	W int `xml:"w:w,attr"`
}

type xmlTblRow struct {
	Cells []xmlTblCell `xml:"w:tc"`
}

type xmlTblCell struct {
	TcPr       xmlTcPr        `xml:"w:tcPr"`
	Paragraphs []xmlParagraph `xml:"w:p"`
}

type xmlTcPr struct {
	Width xmlTblWidth `xml:"w:tcW"`
}

// styles.xml

type xmlStyles struct {
	XMLName  xml.Name       `xml:"w:styles"`
	W        string         `xml:"xmlns:w,attr"`
	Defaults xmlDocDefaults `xml:"w:docDefaults"`
	Styles   []xmlStyle     `xml:"w:style"`
}

type xmlDocDefaults struct {
	RPr xmlRPrDefault `xml:"w:rPrDefault"`
}

type xmlRPrDefault struct {
	RPr xmlRPr `xml:"w:rPr"`
}

type xmlStyle struct {
	XMLName xml.Name `xml:"w:style"`
	Type    string   `xml:"w:type,attr"`
	ID      string   `xml:"w:styleId,attr"`
	Default string   `xml:"w:default,attr,omitempty"`
	Name    xmlVal   `xml:"w:name"`
	BasedOn *xmlVal  `xml:"w:basedOn,omitempty"`
	QFormat *xmlOn   `xml:"w:qFormat,omitempty"`
	PPr     *xmlPPr  `xml:"w:pPr,omitempty"`
	RPr     *xmlRPr  `xml:"w:rPr,omitempty"`
}

// docProps/core.xml

type xmlCoreProperties struct {
	XMLName xml.Name    `xml:"cp:coreProperties"`
	CP      string      `xml:"xmlns:cp,attr"`
	DC      string      `xml:"xmlns:dc,attr"`
	DCTerms string      `xml:"xmlns:dcterms,attr"`
	XSI     string      `xml:"xmlns:xsi,attr"`
	Title   string      `xml:"dc:title,omitempty"`
	Creator string      `xml:"dc:creator,omitempty"`
	Created *xmlW3CDate `xml:"dcterms:created,omitempty"`
}

type xmlW3CDate struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

// ---------------------------------------------------------------------------
// Conversion from the block model
// ---------------------------------------------------------------------------

func buildDocumentXML(d *Document) xmlDocument {
	return xmlDocument{
		W: nsW,
		R: nsR,
		Body: xmlBody{
			Content: buildBlocks(d.blocks, d.usableWidth()),
			SectPr:  buildSectPr(d.section),
		},
	}
}

func buildBlocks(blocks []Block, usableWidth float64) []any {
	out := make([]any, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case BlockPageBreak:
			out = append(out, xmlParagraph{
				Runs: []xmlRun{{Content: []any{xmlBreak{Type: "page"}}}},
			})
		case BlockTable:
			out = append(out, buildTable(b.Rows, usableWidth))
		default:
			out = append(out, buildParagraph(b.Role, b.Runs))
		}
	}
	return out
}

func buildParagraph(role Role, runs []Run) xmlParagraph {
	p := xmlParagraph{PPr: &xmlPPr{Style: &xmlVal{Val: string(role)}}}
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		p.Runs = append(p.Runs, buildRun(r))
	}
	return p
}

// buildRun splits text on newlines and tabs into w:br and w:tab siblings.
func buildRun(r Run) xmlRun {
	run := xmlRun{RPr: runProps(r)}
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		run.Content = append(run.Content, xmlText{Space: "preserve", Value: buf.String()})
		buf.Reset()
	}
	for _, c := range r.Text {
		switch c {
		case '\n':
			flush()
			run.Content = append(run.Content, xmlBreak{})
		case '\t':
			flush()
			run.Content = append(run.Content, xmlTab{})
		case '\r':
		default:
			buf.WriteRune(c)
		}
	}
	flush()
	return run
}

func runProps(r Run) *xmlRPr {
	if !r.Bold && !r.Italic && !r.Mono {
		return nil
	}
	rpr := &xmlRPr{}
	if r.Mono {
		rpr.Fonts = fonts(MonoFont)
	}
	if r.Bold {
		rpr.Bold = &xmlOn{}
	}
	if r.Italic {
		rpr.Ital = &xmlOn{}
	}
	return rpr
}

func buildTable(rows [][]Cell, usableWidth float64) xmlTable {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	colWidth := inchesToTwips(usableWidth) / max(cols, 1)
	border := xmlBorder{Val: "single", Size: 4, Color: "auto"}

	t := xmlTable{
		TblPr: xmlTblPr{
			Width: xmlTblWidth{W: 0, Type: "auto"},
			Borders: xmlTblBorders{
				Top: border, Left: border, Bottom: border, Right: border,
				InsideH: border, InsideV: border,
			},
		},
	}
	for range cols {
		t.Grid.Cols = append(t.Grid.Cols, xmlGridCol{W: colWidth})
	}
	for _, row := range rows {
		tr := xmlTblRow{}
		for i := range cols {
			var cell Cell
			if i < len(row) {
				cell = row[i]
			}
			runs := cell.Runs
			if cell.Header {
				runs = make([]Run, len(cell.Runs))
				for j, r := range cell.Runs {
					r.Bold = true
					runs[j] = r
				}
			}
			tr.Cells = append(tr.Cells, xmlTblCell{
				TcPr:       xmlTcPr{Width: xmlTblWidth{W: colWidth, Type: "dxa"}},
				Paragraphs: []xmlParagraph{buildParagraph(RoleTableText, runs)},
			})
		}
		t.Rows = append(t.Rows, tr)
	}
	return t
}

func buildSectPr(s Section) *xmlSectPr {
	return &xmlSectPr{
		PgSz: xmlPgSz{W: inchesToTwips(s.PageWidth), H: inchesToTwips(s.PageHeight)},
		PgMar: xmlPgMar{
			Top:    inchesToTwips(s.MarginTop),
			Right:  inchesToTwips(s.MarginRight),
			Bottom: inchesToTwips(s.MarginBottom),
			Left:   inchesToTwips(s.MarginLeft),
			Header: inchesToTwips(0.5),
			Footer: inchesToTwips(0.5),
		},
	}
}

func buildStylesXML(d *Document) xmlStyles {
	_, hasNormal := d.styleIndex[RoleNormal]
	s := xmlStyles{
		W: nsW,
		Defaults: xmlDocDefaults{RPr: xmlRPrDefault{RPr: xmlRPr{
			Fonts: fonts(d.defaults.Font),
			Size:  halfPoints(d.defaults.Size),
			SizeC: halfPoints(d.defaults.Size),
		}}},
	}
	for _, def := range d.styles {
		s.Styles = append(s.Styles, buildStyle(def, hasNormal))
	}
	return s
}

func buildStyle(def StyleDefinition, basedOnNormal bool) xmlStyle {
	st := xmlStyle{
		Type:    "paragraph",
		ID:      string(def.Role),
		Name:    xmlVal{Val: cmp.Or(def.Name, string(def.Role))},
		QFormat: &xmlOn{},
	}
	if def.Role == RoleNormal {
		st.Default = "1"
	} else if basedOnNormal {
		st.BasedOn = &xmlVal{Val: string(RoleNormal)}
	}

	ppr := &xmlPPr{}
	if def.KeepNext {
		ppr.KeepNext = &xmlOn{}
	}
	if def.RightTab > 0 {
		ppr.Tabs = &xmlTabs{Tabs: []xmlTabStop{{
			Val: "right", Leader: "dot", Pos: inchesToTwips(def.RightTab),
		}}}
	}
	before, after := pointsToTwips(def.SpaceBefore), pointsToTwips(def.SpaceAfter)
	ppr.Spacing = &xmlSpacing{Before: &before, After: &after}
	if def.LineSpacing > 0 {
		ppr.Spacing.Line = int(def.LineSpacing*lineUnit + 0.5)
		ppr.Spacing.LineRule = "auto"
	}
	if def.LeftIndent > 0 || def.FirstLineIndent > 0 {
		ppr.Ind = &xmlInd{
			Left:      inchesToTwips(def.LeftIndent),
			FirstLine: inchesToTwips(def.FirstLineIndent),
		}
	}
	if def.Alignment == AlignCenter {
		ppr.Jc = &xmlVal{Val: "center"}
	}
	if def.OutlineLevel > 0 {
		// w:outlineLvl is zero-based.
		ppr.Outline = &xmlVal{Val: strconv.Itoa(def.OutlineLevel - 1)}
	}
	st.PPr = ppr

	rpr := &xmlRPr{}
	if def.Font != "" {
		rpr.Fonts = fonts(def.Font)
	}
	if def.Bold {
		rpr.Bold = &xmlOn{}
	}
	if def.Italic {
		rpr.Ital = &xmlOn{}
	}
	if def.Size > 0 {
		rpr.Size = halfPoints(def.Size)
		rpr.SizeC = halfPoints(def.Size)
	}
	st.RPr = rpr
	return st
}

func buildCoreXML(p Properties) xmlCoreProperties {
	c := xmlCoreProperties{
		CP: nsCP, DC: nsDC, DCTerms: nsDCTerms, XSI: nsXSI,
		Title:   p.Title,
		Creator: p.Author,
	}
	if !p.Created.IsZero() {
		c.Created = &xmlW3CDate{
			Type:  "dcterms:W3CDTF",
			Value: p.Created.UTC().Format(time.RFC3339),
		}
	}
	return c
}

func fonts(name string) *xmlFonts {
	if name == "" {
		return nil
	}
	return &xmlFonts{ASCII: name, HAnsi: name, CS: name, EastAsia: name}
}

func halfPoints(pt float64) *xmlVal {
	if pt <= 0 {
		return nil
	}
	return &xmlVal{Val: strconv.Itoa(pointsToHalf(pt))}
}

func (d *Document) usableWidth() float64 {
	return d.section.PageWidth - d.section.MarginLeft - d.section.MarginRight
}
