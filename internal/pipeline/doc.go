// Package pipeline implements the HTML-mediated conversion stages:
//   - Markdown preprocessing (line endings, NFC, admonitions, [TOC] markers)
//   - Markdown to HTML conversion via Goldmark
//   - HTML to document blocks via a sanitized golang.org/x/net/html walk
//
// The root md2docx package chains these stages and serializes the
// resulting docx.Document, optionally merged into a template.
package pipeline
