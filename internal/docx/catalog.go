package docx

// Base page frame and default typography applied by ApplyBaseMargins.
const (
	BaseMargin   = 0.75 // inches, all four sides (5x8 book trim approximation)
	BaseFont     = "Georgia"
	BaseFontSize = 11.0
	MonoFont     = "Courier New"
)

// tocTabStop places TOC page numbers against the right margin of a letter
// page framed by BaseMargin.
const tocTabStop = 8.5 - 2*BaseMargin

// Catalog returns a fresh set of style definitions, one per role.
// Callers may modify the returned slice freely.
func Catalog() []StyleDefinition {
	return []StyleDefinition{
		{
			Role: RoleNormal, Name: "Normal",
			Font: BaseFont, Size: BaseFontSize,
		},
		{
			Role: RoleTitle, Name: "Title",
			Font: BaseFont, Size: 28, Bold: true, Alignment: AlignCenter,
			SpaceBefore: 72, SpaceAfter: 24, KeepNext: true,
		},
		{
			Role: RoleSubtitle, Name: "Subtitle",
			Font: BaseFont, Size: 16, Italic: true, Alignment: AlignCenter,
			SpaceAfter: 24,
		},
		{
			Role: RoleAuthor, Name: "Author",
			Font: BaseFont, Size: 14, Alignment: AlignCenter,
			SpaceBefore: 48,
		},
		{
			Role: RoleChapterTitle, Name: "Chapter Title",
			Font: BaseFont, Size: 20, Bold: true, Alignment: AlignCenter,
			SpaceBefore: 72, SpaceAfter: 36, OutlineLevel: 1, KeepNext: true,
		},
		{
			Role: RoleHeading2, Name: "heading 2",
			Font: BaseFont, Size: 14, Bold: true,
			SpaceBefore: 18, SpaceAfter: 6, OutlineLevel: 2, KeepNext: true,
		},
		{
			Role: RoleHeading3, Name: "heading 3",
			Font: BaseFont, Size: 12, Bold: true, Italic: true,
			SpaceBefore: 12, SpaceAfter: 4, OutlineLevel: 3, KeepNext: true,
		},
		{
			Role: RoleBodyParagraph, Name: "Body Text",
			Font: BaseFont, Size: BaseFontSize,
			SpaceAfter: 6, FirstLineIndent: 0.3, LineSpacing: 1.15,
		},
		{
			Role: RoleCopyright, Name: "Copyright",
			Font: BaseFont, Size: 9,
			SpaceAfter: 0, LineSpacing: 1.0,
		},
		{
			Role: RoleTOCEntry, Name: "toc 1",
			Font: BaseFont, Size: BaseFontSize,
			SpaceAfter: 4, RightTab: tocTabStop,
		},
		{
			Role: RoleHeading1, Name: "heading 1",
			Font: BaseFont, Size: 20, Bold: true,
			SpaceBefore: 24, SpaceAfter: 12, OutlineLevel: 1, KeepNext: true,
		},
		{
			Role: RoleHeading4, Name: "heading 4",
			Font: BaseFont, Size: BaseFontSize, Bold: true, Italic: true,
			SpaceBefore: 10, SpaceAfter: 4, OutlineLevel: 4, KeepNext: true,
		},
		{
			Role: RoleListItem, Name: "List Paragraph",
			Font: BaseFont, Size: BaseFontSize,
			SpaceAfter: 2, LeftIndent: 0.25,
		},
		{
			Role: RoleBlockQuote, Name: "Quote",
			Font: BaseFont, Size: BaseFontSize, Italic: true,
			SpaceBefore: 6, SpaceAfter: 6, LeftIndent: 0.5,
		},
		{
			Role: RoleCodeBlock, Name: "Source Code",
			Font: MonoFont, Size: 9.5,
			SpaceBefore: 4, SpaceAfter: 4, LeftIndent: 0.2, LineSpacing: 1.0,
		},
		{
			Role: RoleTableText, Name: "Table Text",
			Font: BaseFont, Size: 10,
		},
	}
}

// EnsureRegistered registers every catalog style on doc.
// Roles already present are left untouched, so repeated calls are no-ops.
func EnsureRegistered(doc *Document) {
	for _, def := range Catalog() {
		doc.RegisterStyle(def)
	}
}

// ApplyBaseMargins frames the page with BaseMargin on every side and sets
// the document default run font to BaseFont at BaseFontSize.
func ApplyBaseMargins(doc *Document) {
	doc.section.MarginTop = BaseMargin
	doc.section.MarginRight = BaseMargin
	doc.section.MarginBottom = BaseMargin
	doc.section.MarginLeft = BaseMargin
	doc.defaults = RunDefaults{Font: BaseFont, Size: BaseFontSize}
}
