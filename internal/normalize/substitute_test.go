package normalize

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dinobot22/mineru-tianshu/internal/jsontree"
)

const testBaseURL = "http://192.168.1.100:9000/ts-img"

func TestSubstituteMarkdownInlineBecomesImgTag(t *testing.T) {
	mapping := map[string]string{"fig1.png": testBaseURL + "/20250101/abc_def.png"}
	out, replaced := SubstituteMarkdownURLs("Before\n\n![Figure 1](images/fig1.png)\n\nAfter\n", mapping)

	assert.Equal(t, 1, replaced)
	assert.NotContains(t, out, "![")
	assert.Contains(t, out, `<img src="`+testBaseURL+`/20250101/abc_def.png" alt="Figure 1">`)
}

func TestSubstituteMarkdownEmptyAltFallsBackToFilename(t *testing.T) {
	mapping := map[string]string{"fig1.png": testBaseURL + "/x.png"}
	out, _ := SubstituteMarkdownURLs("![](images/fig1.png)", mapping)
	assert.Contains(t, out, `alt="fig1.png"`)
}

func TestSubstituteMarkdownHTMLKeepsSurroundingAttributes(t *testing.T) {
	mapping := map[string]string{"fig.jpg": testBaseURL + "/y.jpg"}
	out, replaced := SubstituteMarkdownURLs(`<img class="wide" src="images/fig.jpg" width="80">`, mapping)

	assert.Equal(t, 1, replaced)
	assert.Equal(t, `<img class="wide" src="`+testBaseURL+`/y.jpg" width="80">`, out)
}

func TestSubstituteMarkdownLeavesUnmappedRefs(t *testing.T) {
	mapping := map[string]string{"uploaded.png": testBaseURL + "/u.png"}
	in := "![a](images/uploaded.png)\n![b](images/local_only.png)\n"
	out, _ := SubstituteMarkdownURLs(in, mapping)

	assert.Contains(t, out, testBaseURL+"/u.png")
	assert.Contains(t, out, "![b](images/local_only.png)")
}

// Emitted img tags must be well-formed HTML, including when alt text
// carries characters the inline syntax allows freely.
func TestSubstituteMarkdownEmitsParsableImgTags(t *testing.T) {
	mapping := map[string]string{
		"a.png": testBaseURL + "/a.png",
		"b.jpg": testBaseURL + "/b.jpg",
	}
	out, _ := SubstituteMarkdownURLs("![first figure](images/a.png)\n\n![second](images/b.jpg)\n", mapping)

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	var srcs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, attr := range n.Attr {
				if attr.Key == "src" {
					srcs = append(srcs, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	assert.ElementsMatch(t, []string{testBaseURL + "/a.png", testBaseURL + "/b.jpg"}, srcs)
}

func TestSubstituteRecordReplacesCanonicalPaths(t *testing.T) {
	root, err := jsontree.Parse([]byte(`{
	  "pages": [
	    {"parsing_res_list": [
	      {"block_label": "image", "img_path": "images/image_001.jpg"},
	      {"block_label": "text", "block_content": "mentions image_001.jpg in prose"}
	    ]}
	  ]
	}`))
	require.NoError(t, err)

	mapping := map[string]string{"image_001.jpg": testBaseURL + "/z.jpg"}
	replaced := SubstituteRecordURLs(root, mapping)
	assert.Equal(t, 1, replaced)

	encoded, err := jsontree.Encode(root)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), testBaseURL+"/z.jpg")
	// prose without the asset-dir token stays untouched
	assert.Contains(t, string(encoded), "mentions image_001.jpg in prose")
}

func TestSubstituteRecordFilePreservesKeyOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CanonicalRecordName)
	writeFile(t, path, `{"zebra": "images/a.png", "alpha": 1}`)

	mapping := map[string]string{"a.png": testBaseURL + "/a.png"}
	require.NoError(t, SubstituteRecordFile(context.Background(), path, mapping))

	content := readFile(t, path)
	assert.Less(t, strings.Index(content, "zebra"), strings.Index(content, "alpha"))
	assert.Contains(t, content, testBaseURL+"/a.png")
}

func TestSubstituteRecordFileNoChangeNoRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CanonicalRecordName)
	original := `{"note":"no assets here"}`
	writeFile(t, path, original)

	require.NoError(t, SubstituteRecordFile(context.Background(), path, map[string]string{"a.png": "http://x/a.png"}))
	// untouched byte-for-byte, including the compact formatting
	assert.Equal(t, original, readFile(t, path))
}
