package goquery

import "github.com/fwojciec/knowcore"

// GenericAdapterName names the adapter used when no framework is detected.
const GenericAdapterName = "generic"

// commonMeta covers OpenGraph, article and plain HTML metadata.
var commonMeta = map[string]knowcore.SelectorSpec{
	knowcore.MetaTitle:       {"css:meta[property='og:title']@content", "css:h1", "css:title"},
	knowcore.MetaURL:         {"css:link[rel='canonical']@href", "css:meta[property='og:url']@content"},
	knowcore.MetaAuthors:     {"css:meta[name='author']@content", "css:[rel='author']"},
	knowcore.MetaPublishedAt: {"css:meta[property='article:published_time']@content", "css:time[datetime]@datetime"},
	knowcore.MetaUpdatedAt:   {"css:meta[property='article:modified_time']@content", "css:meta[property='og:updated_time']@content"},
	knowcore.MetaLanguage:    {"css:html@lang", "css:meta[property='og:locale']@content"},
	knowcore.MetaDescription: {"css:meta[name='description']@content", "css:meta[property='og:description']@content"},
	knowcore.MetaTags:        {"css:meta[property='article:tag']@content", "css:meta[name='keywords']@content"},
}

// commonBlocks is the rule list shared by every built-in adapter. Figure
// containers precede bare images so a figure's images are emitted once.
var commonBlocks = []knowcore.BlockRule{
	{Selector: "h1, h2, h3, h4, h5, h6", Type: knowcore.BlockHeading},
	{Selector: "pre", Type: knowcore.BlockCode},
	{Selector: "figure", Type: knowcore.BlockFigure},
	{Selector: "img", Type: knowcore.BlockFigure},
	{Selector: "ul, ol", Type: knowcore.BlockList},
	{Selector: "table", Type: knowcore.BlockTable},
	{Selector: "blockquote", Type: knowcore.BlockParagraph},
	{Selector: "p", Type: knowcore.BlockParagraph},
}

var commonIgnore = []string{"script", "style", "noscript", "nav", "button", "[aria-hidden='true']"}

func builtin(name, root string, ignore ...string) *knowcore.Adapter {
	return &knowcore.Adapter{
		Name: name,
		Meta: commonMeta,
		Content: knowcore.ContentConfig{
			Root:   root,
			Blocks: commonBlocks,
			Ignore: append(append([]string{}, commonIgnore...), ignore...),
		},
	}
}

// GenericAdapter returns the adapter used for pages of unknown origin.
func GenericAdapter() *knowcore.Adapter {
	return builtin(GenericAdapterName, "main, article, [role='main']", "header", "footer", "aside")
}

// BuiltinAdapters returns an adapter per supported documentation framework.
// Roots target the rendered article so navigation chrome is left out.
func BuiltinAdapters() map[knowcore.Framework]*knowcore.Adapter {
	return map[knowcore.Framework]*knowcore.Adapter{
		knowcore.FrameworkDocusaurus: builtin("docusaurus", ".theme-doc-markdown, article", ".hash-link", ".theme-doc-footer", ".pagination-nav"),
		knowcore.FrameworkMkDocs:     builtin("mkdocs", ".md-content article, .md-content", ".headerlink", ".md-source-file", ".md-content__button"),
		knowcore.FrameworkSphinx:     builtin("sphinx", "div[role='main'], .document .body, .document", ".headerlink", ".rst-footer-buttons"),
		knowcore.FrameworkVuePress:   builtin("vuepress", ".theme-default-content", ".header-anchor", ".page-edit", ".page-nav"),
		knowcore.FrameworkVitePress:  builtin("vitepress", ".VPDoc .vp-doc, .VPDoc, #VPContent", ".header-anchor", ".copy", ".lang", ".VPDocFooter"),
		knowcore.FrameworkGitBook:    builtin("gitbook", "[data-testid='page.contentEditor'], main", "header", "footer", "aside"),
		knowcore.FrameworkNextra:     builtin("nextra", "article, main", ".subheading-anchor", ".nextra-breadcrumb", "footer"),
	}
}
