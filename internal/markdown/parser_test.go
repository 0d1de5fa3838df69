package markdown

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-press/pkg/interfaces"
)

func TestParseRendersHeadingsAndLists(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	out, err := parser.Parse([]byte("## Services\n\n- inject\n- mock\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	html := string(out)
	if !strings.Contains(html, "<h2 id=\"services\">Services</h2>") {
		t.Errorf("missing heading in output: %s", html)
	}
	if !strings.Contains(html, "<li>inject</li>") {
		t.Errorf("missing list item in output: %s", html)
	}
}

func TestParseCodeBlockVerbatimWithLanguageClass(t *testing.T) {
	source := "```js\nvar x = $http.get('/api');\n```\n"

	parser := NewGoldmarkParser(interfaces.ParseOptions{})
	out, err := parser.Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	html := string(out)
	if !strings.Contains(html, `<code class="language-js">`) {
		t.Errorf("missing language class: %s", html)
	}
	// Code content must survive untouched apart from HTML escaping.
	if !strings.Contains(html, "var x = $http.get(&#39;/api&#39;);") {
		t.Errorf("code content transformed: %s", html)
	}
}

func TestParseDeterministic(t *testing.T) {
	source := []byte("# Title\n\nSome *emphasis* and `inline code`.\n\n```go\nfmt.Println(\"hi\")\n```\n")
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	first, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("expected byte-identical output for repeated renders")
	}
}

func TestParseSafeModeStripsRawHTML(t *testing.T) {
	source := []byte("before\n\n<script>alert(1)</script>\n\nafter\n")
	parser := NewGoldmarkParser(interfaces.ParseOptions{SafeMode: true})

	out, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Errorf("raw HTML leaked in safe mode: %s", out)
	}
}

func TestParseWithOptionsExtensionToggles(t *testing.T) {
	source := []byte("~~gone~~\n")

	plain := NewGoldmarkParser(interfaces.ParseOptions{Extensions: []string{"table"}})
	out, err := plain.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(out), "<del>") {
		t.Errorf("strikethrough enabled without extension: %s", out)
	}

	gfm := NewGoldmarkParser(interfaces.ParseOptions{Extensions: []string{"strikethrough"}})
	out, err = gfm.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(out), "<del>gone</del>") {
		t.Errorf("strikethrough missing: %s", out)
	}
}
