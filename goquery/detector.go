package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/knowcore"
)

var _ knowcore.FrameworkDetector = (*Detector)(nil)

// frameworkMarkers lists structural markers per framework in check order.
// VitePress is checked before VuePress since it reuses some VuePress names.
var frameworkMarkers = []struct {
	framework knowcore.Framework
	selectors []string
}{
	{knowcore.FrameworkDocusaurus, []string{"#__docusaurus_skipToContent_fallback", ".theme-doc-sidebar-container", "[data-rh][data-theme]", ".theme-doc-markdown"}},
	{knowcore.FrameworkMkDocs, []string{"[data-md-color-scheme]", "[data-md-component]", ".md-nav--primary"}},
	{knowcore.FrameworkSphinx, []string{".toctree-wrapper", ".wy-nav-side", ".wy-menu-vertical", ".sphinxsidebar"}},
	{knowcore.FrameworkVitePress, []string{"#VPContent", ".VPDoc", ".VPDocAsideOutline"}},
	{knowcore.FrameworkVuePress, []string{".theme-default-content", ".sidebar-links", ".vuepress-navbar"}},
	{knowcore.FrameworkGitBook, []string{"[data-testid='space.sidebar']", "[data-testid='page.desktopTableOfContents']"}},
	{knowcore.FrameworkNextra, []string{".nextra-navbar", ".nextra-sidebar", ".nextra-toc"}},
}

// generatorNames maps substrings of <meta name="generator"> to frameworks.
var generatorNames = []struct {
	name      string
	framework knowcore.Framework
}{
	{"sphinx", knowcore.FrameworkSphinx},
	{"gitbook", knowcore.FrameworkGitBook},
	{"docusaurus", knowcore.FrameworkDocusaurus},
	{"mkdocs", knowcore.FrameworkMkDocs},
	{"vitepress", knowcore.FrameworkVitePress},
	{"vuepress", knowcore.FrameworkVuePress},
	{"nextra", knowcore.FrameworkNextra},
}

// Detector identifies documentation frameworks from HTML content using
// meta generator tags, framework-specific classes and data attributes.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
// Returns FrameworkUnknown if the framework cannot be determined.
func (d *Detector) Detect(html string) knowcore.Framework {
	if strings.TrimSpace(html) == "" {
		return knowcore.FrameworkUnknown
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return knowcore.FrameworkUnknown
	}

	// Meta generator tags are the most reliable signal when present.
	if f := d.detectFromMetaGenerator(doc.Selection); f != knowcore.FrameworkUnknown {
		return f
	}
	for _, m := range frameworkMarkers {
		for _, css := range m.selectors {
			if EvaluateOne(doc.Selection, css) != nil {
				return m.framework
			}
		}
	}
	if d.hasGitBookClasses(doc.Selection) {
		return knowcore.FrameworkGitBook
	}
	return knowcore.FrameworkUnknown
}

func (d *Detector) detectFromMetaGenerator(doc *goquery.Selection) knowcore.Framework {
	var generator string
	for _, n := range Evaluate(doc, "meta[name='generator']") {
		if v := attr(n, "content"); v != "" {
			generator = strings.ToLower(v)
		}
	}
	if generator == "" {
		return knowcore.FrameworkUnknown
	}
	for _, g := range generatorNames {
		if strings.Contains(generator, g.name) {
			return g.framework
		}
	}
	return knowcore.FrameworkUnknown
}

// hasGitBookClasses requires at least two of GitBook's html element classes:
// circular-corners, theme-clean and tint.
func (d *Detector) hasGitBookClasses(doc *goquery.Selection) bool {
	n := EvaluateOne(doc, "html[class]")
	if n == nil {
		return false
	}
	count := 0
	for _, class := range strings.Fields(attr(n, "class")) {
		switch class {
		case "circular-corners", "theme-clean", "tint":
			count++
		}
	}
	return count >= 2
}
