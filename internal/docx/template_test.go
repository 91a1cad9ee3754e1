package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// templateBytes builds a small package with one paragraph and only the
// Normal and Title styles.
func templateBytes(t *testing.T) []byte {
	t.Helper()

	doc := New()
	for _, def := range Catalog() {
		if def.Role == RoleNormal || def.Role == RoleTitle {
			doc.RegisterStyle(def)
		}
	}
	_ = doc.AppendParagraph(RoleTitle, "Letterhead")
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() unexpected error: %v", err)
	}
	return data
}

func zipOf(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// TestOpenTemplate - Template validation
// ---------------------------------------------------------------------------

func TestOpenTemplate_Malformed(t *testing.T) {
	t.Parallel()

	const goodDoc = `<w:document xmlns:w="` + nsW + `"><w:body></w:body></w:document>`
	const goodStyles = `<w:styles xmlns:w="` + nsW + `"></w:styles>`

	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("plain text")},
		{"empty", nil},
		{"missing document part", zipOf(t, map[string]string{partStyles: goodStyles})},
		{"missing styles part", zipOf(t, map[string]string{partDocument: goodDoc})},
		{"truncated document xml", zipOf(t, map[string]string{
			partDocument: `<w:document xmlns:w="` + nsW + `"><w:body>`,
			partStyles:   goodStyles,
		})},
		{"wrong root element", zipOf(t, map[string]string{
			partDocument: `<html><body></body></html>`,
			partStyles:   goodStyles,
		})},
		{"no body", zipOf(t, map[string]string{
			partDocument: `<w:document xmlns:w="` + nsW + `"></w:document>`,
			partStyles:   goodStyles,
		})},
		{"styles bound to another prefix", zipOf(t, map[string]string{
			partDocument: goodDoc,
			partStyles:   `<s:styles xmlns:s="` + nsW + `"><s:style s:styleId="Normal"/></s:styles>`,
		})},
		{"styles default namespace", zipOf(t, map[string]string{
			partDocument: goodDoc,
			partStyles:   `<styles xmlns="` + nsW + `"></styles>`,
		})},
		{"truncated styles xml", zipOf(t, map[string]string{
			partDocument: goodDoc,
			partStyles:   `<w:styles xmlns:w="` + nsW + `"><w:style>`,
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tpl, err := OpenTemplate(tt.data)
			if !errors.Is(err, ErrMalformedTemplate) {
				t.Errorf("OpenTemplate() error = %v, want ErrMalformedTemplate", err)
			}
			if tpl != nil {
				t.Error("OpenTemplate() returned a template on error")
			}
		})
	}
}

func TestOpenTemplate_TooLarge(t *testing.T) {
	t.Parallel()

	_, err := OpenTemplate(make([]byte, MaxTemplateSize+1))
	if !errors.Is(err, ErrTemplateTooLarge) {
		t.Errorf("OpenTemplate() error = %v, want ErrTemplateTooLarge", err)
	}
}

func TestOpenTemplate_Valid(t *testing.T) {
	t.Parallel()

	tpl, err := OpenTemplate(templateBytes(t))
	if err != nil {
		t.Fatalf("OpenTemplate() unexpected error: %v", err)
	}
	if !tpl.HasStyle(RoleTitle) {
		t.Error("HasStyle(Title) = false, want true")
	}
	if tpl.HasStyle(RoleChapterTitle) {
		t.Error("HasStyle(ChapterTitle) = true, want false")
	}
}

// ---------------------------------------------------------------------------
// TestMerge - Appending blocks into a template
// ---------------------------------------------------------------------------

func TestMerge(t *testing.T) {
	t.Parallel()

	tpl, err := OpenTemplate(templateBytes(t))
	if err != nil {
		t.Fatalf("OpenTemplate() unexpected error: %v", err)
	}

	doc := New()
	EnsureRegistered(doc)
	_ = doc.AppendParagraph(RoleHeading1, "Appended")

	out, err := tpl.Merge(doc)
	if err != nil {
		t.Fatalf("Merge() unexpected error: %v", err)
	}

	documentXML := readPartString(t, out, partDocument)
	assertWellFormed(t, partDocument, documentXML)

	head := strings.Index(documentXML, "Letterhead")
	added := strings.Index(documentXML, "Appended")
	sect := strings.LastIndex(documentXML, "<w:sectPr")
	if head < 0 || added < 0 {
		t.Fatalf("merged document lost content: head=%d added=%d", head, added)
	}
	if !(head < added && added < sect) {
		t.Errorf("appended content not between template body and sectPr: head=%d added=%d sect=%d", head, added, sect)
	}

	stylesXML := readPartString(t, out, partStyles)
	assertWellFormed(t, partStyles, stylesXML)
	if n := strings.Count(stylesXML, `w:styleId="Title"`); n != 1 {
		t.Errorf("Title style count = %d, want 1 (template definition kept)", n)
	}
	if !strings.Contains(stylesXML, `w:styleId="Heading1"`) {
		t.Error("missing catalog style Heading1 not injected")
	}

	// Untouched parts survive the rewrite.
	assertWellFormed(t, partCore, readPartString(t, out, partCore))

	if _, err := OpenTemplate(out); err != nil {
		t.Errorf("merged package does not reopen: %v", err)
	}
}

func TestInsertBody_NoSectPr(t *testing.T) {
	t.Parallel()

	in := []byte(`<w:document><w:body><w:p></w:p></w:body></w:document>`)
	got, err := insertBody(in, []byte("<X/>"))
	if err != nil {
		t.Fatalf("insertBody() unexpected error: %v", err)
	}
	want := `<w:document><w:body><w:p></w:p><X/></w:body></w:document>`
	if string(got) != want {
		t.Errorf("insertBody() = %s, want %s", got, want)
	}
}
