package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxTemplateSize bounds the size of a template package.
const MaxTemplateSize = 32 << 20

// maxPartSize bounds a single decompressed part read from a template.
const maxPartSize = 64 << 20

// Template is a validated .docx package whose content and styles are kept
// when a Document is merged into it.
type Template struct {
	files     []*zip.File
	document  []byte
	styles    []byte
	styleIDs  map[string]bool
	sizeBytes int
}

// OpenTemplate validates data as a .docx package.
// It returns ErrMalformedTemplate when the archive cannot be read, lacks a
// main document or style part, or either part is not well-formed markup
// using the w prefix.
func OpenTemplate(data []byte) (*Template, error) {
	if len(data) > MaxTemplateSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTemplateTooLarge, len(data), MaxTemplateSize)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	t := &Template{files: zr.File, sizeBytes: len(data)}
	for _, f := range zr.File {
		switch f.Name {
		case partDocument:
			if t.document, err = readPart(f); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTemplate, f.Name, err)
			}
		case partStyles:
			if t.styles, err = readPart(f); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTemplate, f.Name, err)
			}
		}
	}
	if t.document == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedTemplate, partDocument)
	}
	if t.styles == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedTemplate, partStyles)
	}
	if err := checkMainDocument(t.document); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTemplate, partDocument, err)
	}
	if t.styleIDs, err = collectStyleIDs(t.styles); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTemplate, partStyles, err)
	}
	if err := checkPrefixed(t.styles, "styles"); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedTemplate, partStyles, err)
	}
	return t, nil
}

// HasStyle reports whether the template defines a style with the given ID.
func (t *Template) HasStyle(role Role) bool {
	return t.styleIDs[string(role)]
}

// Merge appends the blocks of doc to the end of the template body and adds
// every style registered on doc that the template does not define.
// The template's own content, styles and other parts are kept as is.
func (t *Template) Merge(doc *Document) ([]byte, error) {
	body, err := marshalFragments(buildBlocks(doc.blocks, doc.usableWidth()))
	if err != nil {
		return nil, fmt.Errorf("marshaling blocks: %w", err)
	}
	documentXML, err := insertBody(t.document, body)
	if err != nil {
		return nil, err
	}

	var missing []any
	for _, def := range doc.styles {
		if !t.styleIDs[string(def.Role)] {
			missing = append(missing, buildStyle(def, true))
		}
	}
	stylesXML := t.styles
	if len(missing) > 0 {
		frag, err := marshalFragments(missing)
		if err != nil {
			return nil, fmt.Errorf("marshaling styles: %w", err)
		}
		if stylesXML, err = insertBefore(t.styles, "</w:styles>", frag); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	buf.Grow(t.sizeBytes + len(body))
	zw := zip.NewWriter(&buf)
	for _, f := range t.files {
		var data []byte
		switch f.Name {
		case partDocument:
			data = documentXML
		case partStyles:
			data = stylesXML
		default:
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPartSize {
		return nil, errors.New("part too large")
	}
	return data, nil
}

// checkMainDocument walks every token so truncated or mismatched markup is
// rejected, and requires a w:document root with a w:body.
func checkMainDocument(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	sawBody := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 && (el.Name.Local != "document" || el.Name.Space != nsW) {
				return fmt.Errorf("unexpected root element %q", el.Name.Local)
			}
			if depth == 2 && el.Name.Local == "body" {
				sawBody = true
			}
		case xml.EndElement:
			depth--
		}
	}
	if !sawBody {
		return errors.New("no body element")
	}
	return checkPrefixed(data, "body")
}

// checkPrefixed requires the main namespace bound to w and a closing
// </w:name> tag. Merge splices fragments in before that tag.
func checkPrefixed(data []byte, name string) error {
	if !bytes.Contains(data, []byte(`xmlns:w="`+nsW+`"`)) {
		return errors.New("main namespace not bound to the w prefix")
	}
	if !bytes.Contains(data, []byte("</w:"+name+">")) {
		return fmt.Errorf("no closing w:%s tag", name)
	}
	return nil
}

func collectStyleIDs(data []byte) (map[string]bool, error) {
	ids := make(map[string]bool)
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, err
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "style" {
			continue
		}
		for _, a := range el.Attr {
			if a.Name.Local == "styleId" {
				ids[a.Value] = true
			}
		}
	}
}

// insertBody places body before the trailing body-level section properties,
// or before the closing body tag when the body has none.
func insertBody(document, body []byte) ([]byte, error) {
	end := bytes.LastIndex(document, []byte("</w:body>"))
	if end < 0 {
		return nil, fmt.Errorf("%w: no closing body tag", ErrMalformedTemplate)
	}
	at := end
	if sect := bytes.LastIndex(document[:end], []byte("<w:sectPr")); sect >= 0 {
		lastP := bytes.LastIndex(document[:end], []byte("</w:p>"))
		lastTbl := bytes.LastIndex(document[:end], []byte("</w:tbl>"))
		if sect > lastP && sect > lastTbl {
			at = sect
		}
	}
	return splice(document, at, body), nil
}

func insertBefore(data []byte, marker string, frag []byte) ([]byte, error) {
	at := bytes.LastIndex(data, []byte(marker))
	if at < 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedTemplate, strings.Trim(marker, "</>"))
	}
	return splice(data, at, frag), nil
}

func splice(data []byte, at int, frag []byte) []byte {
	out := make([]byte, 0, len(data)+len(frag))
	out = append(out, data[:at]...)
	out = append(out, frag...)
	return append(out, data[at:]...)
}

func marshalFragments(elems []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	for _, e := range elems {
		if err := enc.Encode(e); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
