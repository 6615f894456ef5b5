package render

import (
	"slices"
	"strings"
	"testing"
)

func TestTableDiffEqual(t *testing.T) {
	t.Parallel()

	got := strings.Join(slices.Collect(TableDiff{Context: DefaultContext}.Render("a\nb\n", "a\nb\n")), "")
	if !strings.Contains(got, "No Differences Found") {
		t.Fatalf("expected no-differences row, got %s", got)
	}
}

func TestTableDiffRows(t *testing.T) {
	t.Parallel()

	oldText := "keep\nold line\ngone\n"
	newText := "keep\nnew line\n"
	got := strings.Join(slices.Collect(TableDiff{FromDesc: "before", ToDesc: "<after>", Context: DefaultContext}.Render(oldText, newText)), "\n")

	for _, want := range []string{
		`<th style="font-family:monospace">before</th>`,
		`&lt;after&gt;`,
		`<td style="font-family:monospace">keep</td>`,
		`<span style="color:orange;background-color:lightyellow">`,
		`<span style="color:red;background-color:lightred">gone</span>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in\n%s", want, got)
		}
	}
}

func TestTableDiffInsertOnly(t *testing.T) {
	t.Parallel()

	got := strings.Join(slices.Collect(TableDiff{Context: DefaultContext}.Render("a\n", "a\nb\n")), "")
	if !strings.Contains(got, `<td style="font-family:monospace">2</td><td style="font-family:monospace"><span style="color:green;background-color:lightgreen">b</span></td>`) {
		t.Fatalf("inserted line not rendered on the new side:\n%s", got)
	}
}

func TestTableDiffContext(t *testing.T) {
	t.Parallel()

	var oldLines, newLines []string
	for i := 0; i < 20; i++ {
		l := strings.Repeat("x", i+1)
		oldLines = append(oldLines, l)
		newLines = append(newLines, l)
	}
	newLines[10] = "changed"
	got := strings.Join(slices.Collect(TableDiff{Context: 2}.Render(strings.Join(oldLines, "\n"), strings.Join(newLines, "\n"))), "\n")

	if n := strings.Count(got, `colspan="4">...</td>`); n != 2 {
		t.Fatalf("want 2 skipped-region markers, got %d:\n%s", n, got)
	}
	if strings.Contains(got, ">"+oldLines[0]+"<") {
		t.Fatalf("line far from the change should be skipped")
	}
	if !strings.Contains(got, ">"+oldLines[8]+"<") || !strings.Contains(got, ">"+oldLines[12]+"<") {
		t.Fatalf("context lines around the change should be kept:\n%s", got)
	}
}
