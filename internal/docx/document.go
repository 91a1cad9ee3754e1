package docx

import (
	"fmt"
	"strings"
	"time"
)

// Letter page with one-inch margins, matching a blank Word document.
const (
	defaultPageWidth  = 8.5
	defaultPageHeight = 11.0
	defaultMargin     = 1.0
	defaultFont       = "Calibri"
	defaultFontSize   = 11.0
)

// BlockKind discriminates the Block variants.
type BlockKind int

// Block kinds.
const (
	BlockParagraph BlockKind = iota
	BlockPageBreak
	BlockTable
)

// Run is a span of literal text sharing character formatting.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Mono   bool
}

// Cell is one table cell.
type Cell struct {
	Runs   []Run
	Header bool
}

// Block is one top-level element of the document body.
// Role and Runs are set for paragraphs, Rows for tables.
type Block struct {
	Kind BlockKind
	Role Role
	Runs []Run
	Rows [][]Cell
}

// Text returns the concatenated run text of a paragraph block.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Properties are the package metadata written to docProps/core.xml.
type Properties struct {
	Title   string
	Author  string
	Created time.Time // zero = omitted
}

// Document is an append-only sequence of styled blocks plus the style,
// section and default tables needed to serialize it.
// A Document is not safe for concurrent use.
type Document struct {
	Properties Properties

	section    Section
	defaults   RunDefaults
	styles     []StyleDefinition
	styleIndex map[Role]int
	blocks     []Block
}

// New creates an empty document on a letter page with Word's default frame.
// No styles are registered.
func New() *Document {
	return &Document{
		section: Section{
			PageWidth:    defaultPageWidth,
			PageHeight:   defaultPageHeight,
			MarginTop:    defaultMargin,
			MarginRight:  defaultMargin,
			MarginBottom: defaultMargin,
			MarginLeft:   defaultMargin,
		},
		defaults:   RunDefaults{Font: defaultFont, Size: defaultFontSize},
		styleIndex: make(map[Role]int),
	}
}

// RegisterStyle adds def unless a style with the same role already exists.
// Returns true if the style was added.
func (d *Document) RegisterStyle(def StyleDefinition) bool {
	if _, ok := d.styleIndex[def.Role]; ok {
		return false
	}
	d.styleIndex[def.Role] = len(d.styles)
	d.styles = append(d.styles, def)
	return true
}

// Style returns the definition registered for role.
func (d *Document) Style(role Role) (StyleDefinition, bool) {
	i, ok := d.styleIndex[role]
	if !ok {
		return StyleDefinition{}, false
	}
	return d.styles[i], true
}

// Styles returns the registered styles in registration order.
func (d *Document) Styles() []StyleDefinition {
	out := make([]StyleDefinition, len(d.styles))
	copy(out, d.styles)
	return out
}

// Section returns the page geometry.
func (d *Document) Section() Section { return d.section }

// Defaults returns the document default run properties.
func (d *Document) Defaults() RunDefaults { return d.defaults }

// Blocks returns a copy of the block sequence.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// Len returns the number of blocks.
func (d *Document) Len() int { return len(d.blocks) }

// AppendParagraph appends a paragraph holding text verbatim in a single run.
func (d *Document) AppendParagraph(role Role, text string) error {
	return d.AppendRuns(role, Run{Text: text})
}

// AppendRuns appends a paragraph made of runs.
func (d *Document) AppendRuns(role Role, runs ...Run) error {
	if err := d.checkRole(role); err != nil {
		return err
	}
	d.blocks = append(d.blocks, Block{Kind: BlockParagraph, Role: role, Runs: runs})
	return nil
}

// AppendBlank appends an empty Normal paragraph.
func (d *Document) AppendBlank() {
	d.blocks = append(d.blocks, Block{Kind: BlockParagraph, Role: RoleNormal})
}

// AppendPageBreak appends a hard page break.
func (d *Document) AppendPageBreak() {
	d.blocks = append(d.blocks, Block{Kind: BlockPageBreak})
}

// AppendTable appends a table. Cell text uses the TableText role.
func (d *Document) AppendTable(rows [][]Cell) error {
	if err := d.checkRole(RoleTableText); err != nil {
		return err
	}
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return ErrEmptyTable
	}
	d.blocks = append(d.blocks, Block{Kind: BlockTable, Rows: rows})
	return nil
}

func (d *Document) checkRole(role Role) error {
	if _, ok := d.styleIndex[role]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyleRole, role)
	}
	return nil
}
