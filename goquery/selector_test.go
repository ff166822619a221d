package goquery_test

import (
	"strings"
	"testing"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/knowcore/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *gq.Document {
	t.Helper()
	doc, err := gq.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<body><p id="a">one</p><div><p id="b">two</p></div><p id="c">three</p></body>`)

	t.Run("returns matches in document order", func(t *testing.T) {
		t.Parallel()

		nodes := goquery.Evaluate(doc.Selection, "p")

		require.Len(t, nodes, 3)
		var ids []string
		for _, n := range nodes {
			ids = append(ids, n.Attr[0].Val)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})

	t.Run("malformed selector yields empty result", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, goquery.Evaluate(doc.Selection, "p[["))
		assert.Nil(t, goquery.EvaluateOne(doc.Selection, ">>>"))
		assert.Empty(t, goquery.MatchSet(doc.Selection, ""))
	})

	t.Run("evaluate one returns first match", func(t *testing.T) {
		t.Parallel()

		n := goquery.EvaluateOne(doc.Selection, "div p")

		require.NotNil(t, n)
		assert.Equal(t, "b", n.Attr[0].Val)
	})

	t.Run("match set is keyed by node identity", func(t *testing.T) {
		t.Parallel()

		set := goquery.MatchSet(doc.Selection, "p")
		nodes := goquery.Evaluate(doc.Selection, "p")

		assert.Len(t, set, 3)
		for _, n := range nodes {
			assert.Contains(t, set, n)
		}
	})
}
