// Package markdown provides analysis of markdown documents produced by
// parsing engines, limited to the embedded image references the normalizer
// cares about.
package markdown

import (
	"regexp"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Syntax identifies which embedding form carried an image reference.
type Syntax string

const (
	SyntaxInline Syntax = "inline" // ![alt](path)
	SyntaxHTML   Syntax = "html"   // <img src="path" ...>
)

// ImageRef is an embedded image reference found in a document.
type ImageRef struct {
	Syntax      Syntax
	Destination string
}

// htmlImgSrc matches the src attribute of an img tag. Goldmark surfaces
// inline HTML as raw segments, so attribute extraction is pattern-based.
var htmlImgSrc = regexp.MustCompile(`<img\s+(?:[^>]*\s+)?src="([^"]+)"[^>]*>`)

// ExtractImageRefs parses a markdown body and returns every embedded image
// reference in both supported syntaxes.
//
// This is an analysis API; it does not attempt to re-render markdown.
func ExtractImageRefs(body []byte) ([]ImageRef, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	refs := make([]ImageRef, 0)
	err := gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Image:
			refs = append(refs, ImageRef{Syntax: SyntaxInline, Destination: string(node.Destination)})
		case *gmast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				segment := node.Segments.At(i)
				for _, m := range htmlImgSrc.FindAllSubmatch(segment.Value(body), -1) {
					refs = append(refs, ImageRef{Syntax: SyntaxHTML, Destination: string(m[1])})
				}
			}
		case *gmast.HTMLBlock:
			for i := 0; i < node.Lines().Len(); i++ {
				line := node.Lines().At(i)
				for _, m := range htmlImgSrc.FindAllSubmatch(line.Value(body), -1) {
					refs = append(refs, ImageRef{Syntax: SyntaxHTML, Destination: string(m[1])})
				}
			}
		}
		return gmast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}
