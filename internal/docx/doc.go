// Package docx builds WordprocessingML (.docx) packages from an ordered
// sequence of styled blocks.
//
// A Document is append-only: paragraphs, page breaks and tables are added in
// reading order and serialized as-is. Paragraph styles are identified by a
// Role, and every role used by a block must first be registered on the
// document, usually via EnsureRegistered with the built-in Catalog.
//
//	doc := docx.New()
//	docx.ApplyBaseMargins(doc)
//	docx.EnsureRegistered(doc)
//	_ = doc.AppendParagraph(docx.RoleTitle, "My Book")
//	doc.AppendPageBreak()
//	data, err := doc.Bytes()
//
// Existing .docx files can be used as templates: OpenTemplate validates the
// archive and Template.Merge appends a document's blocks to the template's
// body, keeping its styles and adding only the missing ones.
package docx
