package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractDate(t *testing.T) {
	t.Parallel()

	text := "Last date 30.04.2025 and published 01 Apr 2025, corrigendum on Feb 5th, 2026"
	require.Equal(t, "30.04.2025", ExtractDate(text, 0))
	require.Equal(t, "01 Apr 2025", ExtractDate(text, 1))
	require.Equal(t, "Feb 5th, 2026", ExtractDate(text, 2))
	require.Empty(t, ExtractDate(text, 3))
	require.Empty(t, ExtractDate("Advt No 5/2025", 0))
	require.Equal(t, "21 Feb - 2026", ExtractDate("closing 21 Feb - 2026", 0))
}

func TestExtractDateFromAncestorStaysInsideRow(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<ul>
<li><a href="/a.pdf">Recruitment of Group C posts</a></li>
<li><a href="/b.pdf">Recruitment of Group D posts</a> closing date: 31-12-2025</li>
</ul>`)
	anchors := doc.Find("a")
	require.Empty(t, ExtractDateFromAncestor(anchors.Eq(0), 0))
	require.Equal(t, "31-12-2025", ExtractDateFromAncestor(anchors.Eq(1), 0))
}

func TestExtractDateFromAncestorTableRow(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table><tr>
<td><a href="/a.pdf">Advt No 5/2025 Junior Assistant</a></td>
<td>15/03/2025</td><td>30-04-2025</td>
</tr></table>`)
	a := doc.Find("a")
	require.Equal(t, "15/03/2025", ExtractDateFromAncestor(a, 0))
	require.Equal(t, "30-04-2025", ExtractDateFromAncestor(a, 1))
	require.Empty(t, ExtractDateFromAncestor(a, 2))
}

func TestExtractDateFromAncestorOwnTextAndPageBoundary(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div>Posted 01.02.2025 <div><a href="/x">Walk-in interview for Lab Technician</a></div></div>`)
	require.Equal(t, "01.02.2025", ExtractDateFromAncestor(doc.Find("a"), 0))

	doc = mustDoc(t, `<article>Published 01-01-2025 <a href="/x">Walk-in interview for Lab Technician</a></article>`)
	require.Empty(t, ExtractDateFromAncestor(doc.Find("a"), 0))
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"15-03-2025":        "2025-03-15",
		"15/03/2025":        "2025-03-15",
		"15.03.2025":        "2025-03-15",
		"5 Mar 2025":        "2025-03-05",
		"05 March 2025":     "2025-03-05",
		"15 MARCH 2025":     "2025-03-15",
		"March 05, 2025":    "2025-03-05",
		"March 5, 2025":     "2025-03-05",
		"2025-03-15":        "2025-03-15",
		"5-03-2025":         "2025-03-05",
		"05 Mar, 2025":      "2025-03-05",
		"5/3/2025":          "2025-03-05",
		"05-Mar-2025":       "2025-03-05",
		"5-Mar-2025":        "2025-03-05",
		"Mar 05, 2025":      "2025-03-05",
		"1st January 2025":  "2025-01-01",
		" 21st  Feb - 2026": "2026-02-21",
		"5 Jan. 2025":       "2025-01-05",
		"Feb 5th, 2026":     "2026-02-05",
	}
	for input, want := range cases {
		got := ParseDate(input)
		require.NotNil(t, got, "input %q", input)
		require.Equal(t, want, got.String(), "input %q", input)
	}

	for _, bad := range []string{"", "not a date", "31-02-2025", "45/13/2025"} {
		require.Nil(t, ParseDate(bad), "input %q", bad)
	}
}

func TestDateNear(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<ul><li><a href="/a.pdf">Recruitment of Group C posts</a> 2nd March 2025</li></ul>`)
	d := DateNear(doc.Find("a"), 0)
	require.NotNil(t, d)
	require.Equal(t, "2025-03-02", d.String())
	require.Nil(t, DateNear(doc.Find("a"), 1))
}
