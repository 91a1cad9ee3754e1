package docx

// Role names a paragraph style. The value doubles as the style ID written to
// styles.xml, so roles that exist in Word's built-in set (Title, Heading2,
// TOC1, ...) pick up a template's definitions when one is used.
type Role string

// Book roles.
const (
	RoleTitle         Role = "Title"
	RoleSubtitle      Role = "Subtitle"
	RoleAuthor        Role = "Author"
	RoleChapterTitle  Role = "ChapterTitle"
	RoleHeading2      Role = "Heading2"
	RoleHeading3      Role = "Heading3"
	RoleBodyParagraph Role = "BodyText"
	RoleCopyright     Role = "Copyright"
	RoleTOCEntry      Role = "TOC1"
	RoleNormal        Role = "Normal"
)

// Roles used when converting rendered HTML.
const (
	RoleHeading1   Role = "Heading1"
	RoleHeading4   Role = "Heading4"
	RoleListItem   Role = "ListParagraph"
	RoleBlockQuote Role = "Quote"
	RoleCodeBlock  Role = "SourceCode"
	RoleTableText  Role = "TableText"
)

// Alignment is the horizontal paragraph alignment.
type Alignment int

// Alignment values.
const (
	AlignLeft Alignment = iota
	AlignCenter
)

// StyleDefinition describes a paragraph style.
// Sizes and spacing are in points, indents and tab stops in inches.
type StyleDefinition struct {
	Role            Role
	Name            string // display name in Word's style gallery
	Font            string // empty = inherit document default
	Size            float64
	Bold            bool
	Italic          bool
	Alignment       Alignment
	SpaceBefore     float64
	SpaceAfter      float64
	FirstLineIndent float64
	LeftIndent      float64
	LineSpacing     float64 // multiplier; 0 = single
	OutlineLevel    int     // 1-based heading level; 0 = body text
	KeepNext        bool
	RightTab        float64 // right-aligned dot-leader tab stop; 0 = none
}

// RunDefaults holds the document-wide default run properties.
type RunDefaults struct {
	Font string
	Size float64 // points
}

// Section holds page geometry in inches.
type Section struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
}

// Unit conversions used by the serializer.
const (
	twipsPerInch = 1440
	twipsPerPt   = 20
	lineUnit     = 240 // w:line value for single spacing with lineRule="auto"
)

func inchesToTwips(in float64) int { return int(in*twipsPerInch + 0.5) }
func pointsToTwips(pt float64) int { return int(pt*twipsPerPt + 0.5) }
func pointsToHalf(pt float64) int  { return int(pt*2 + 0.5) }
