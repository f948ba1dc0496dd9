package search

import (
	"testing"

	"github.com/dshills/quickbar/internal/plugin/feature"
	"github.com/dshills/quickbar/internal/plugin/manifest"
)

func literal(s string) feature.Cmd { return feature.Cmd{Kind: feature.MatchLiteral, Text: s} }

func plugins() []*manifest.Descriptor {
	return []*manifest.Descriptor{
		{
			Name: "rubick-screenshot",
			Features: []feature.Feature{{
				Code:  feature.Plain("shot"),
				Label: "Screenshot",
				Cmds:  []feature.Cmd{literal("screenshot"), literal("capture")},
			}},
		},
		{
			Name: "rubick-translate",
			Features: []feature.Feature{
				{
					Code: feature.Plain("tr"),
					Cmds: []feature.Cmd{
						literal("translate"),
						{Kind: feature.MatchOver, Label: "Translate text"},
					},
				},
				{
					Code: feature.Plain("url"),
					Cmds: []feature.Cmd{{Kind: feature.MatchRegex, Label: "Open url", Text: "^https?://"}},
				},
			},
		},
		{
			Name: "rubick-system",
			Features: []feature.Feature{{
				Code: feature.Plain("shutdown"),
				Cmds: []feature.Cmd{literal("shutdown")},
			}},
		},
	}
}

func TestRankLiteralOrder(t *testing.T) {
	got := NewRanker().Rank(plugins(), "sh", 0)
	if len(got) < 2 {
		t.Fatalf("got %d options, want at least 2", len(got))
	}
	if got[0].Label() != "shutdown" {
		t.Errorf("best = %q, want shutdown", got[0].Label())
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("options not sorted at %d", i)
		}
	}
}

func TestRankOneOptionPerFeature(t *testing.T) {
	got := NewRanker().Rank(plugins(), "translate", 0)
	count := 0
	for _, o := range got {
		if o.Plugin.Name == "rubick-translate" && o.Feature.Code.Equal(feature.Plain("tr")) {
			count++
			if o.Cmd.Kind != feature.MatchLiteral {
				t.Errorf("kept %v trigger, want the literal", o.Cmd.Kind)
			}
		}
	}
	if count != 1 {
		t.Errorf("feature listed %d times, want 1", count)
	}
}

func TestRankNonLiteralAfterLiteral(t *testing.T) {
	got := NewRanker().Rank(plugins(), "https://example.com", 0)
	if len(got) != 2 {
		t.Fatalf("got %d options, want 2: %+v", len(got), got)
	}
	if got[0].Label() != "Open url" || got[1].Label() != "Translate text" {
		t.Errorf("order = %q, %q", got[0].Label(), got[1].Label())
	}

	got = NewRanker().Rank(plugins(), "trans", 0)
	if got[0].Cmd.Kind != feature.MatchLiteral {
		t.Errorf("first option is %v, want literal", got[0].Cmd.Kind)
	}
}

func TestRankEmptyAndLimit(t *testing.T) {
	r := NewRanker()
	if got := r.Rank(plugins(), "  ", 0); got != nil {
		t.Errorf("empty query = %v, want nil", got)
	}
	if got := r.Rank(plugins(), "s", 1); len(got) != 1 {
		t.Errorf("limit 1 returned %d", len(got))
	}
	if got := r.Rank(nil, "s", 0); len(got) != 0 {
		t.Errorf("no plugins returned %d", len(got))
	}
}

func TestRankMatchesPositions(t *testing.T) {
	got := NewRanker().Rank(plugins(), "CAP", 0)
	if len(got) == 0 || got[0].Label() != "capture" {
		t.Fatalf("got %+v, want capture first", got)
	}
	want := []int{0, 1, 2}
	for i, m := range got[0].Matches {
		if m != want[i] {
			t.Errorf("Matches = %v, want %v", got[0].Matches, want)
			break
		}
	}
}

func TestRankApps(t *testing.T) {
	apps := []App{
		{Name: "Visual Studio Code", Action: "code", Keywords: []string{"Visual Studio Code", "vsc"}},
		{Name: "Terminal", Action: "gnome-terminal", Keywords: []string{"Terminal"}},
	}
	r := NewRanker()
	r.SetApps(apps)
	apps[1].Name = "changed"

	got := r.Rank(plugins(), "VSC", 0)
	if len(got) != 1 || got[0].App == nil || got[0].Plugin != nil {
		t.Fatalf("got %+v, want the app", got)
	}
	if got[0].Label() != "vsc" || got[0].Source() != "Visual Studio Code" {
		t.Errorf("label %q source %q", got[0].Label(), got[0].Source())
	}

	got = r.Rank(plugins(), "term", 0)
	if len(got) != 1 || got[0].Source() != "Terminal" {
		t.Errorf("term = %+v", got)
	}

	// Plugin and app options share one ordering.
	got = r.Rank(plugins(), "s", 0)
	sawApp, sawPlugin := false, false
	for i, o := range got {
		if i > 0 && o.Score > got[i-1].Score {
			t.Fatalf("options not sorted at %d", i)
		}
		sawApp = sawApp || o.App != nil
		sawPlugin = sawPlugin || o.Plugin != nil
	}
	if !sawApp || !sawPlugin {
		t.Errorf("mixed query missed a source: apps %v plugins %v", sawApp, sawPlugin)
	}
}

type constScorer int

func (c constScorer) Score(_, _, _ []rune, _ []int) int { return int(c) }

func TestSetScorer(t *testing.T) {
	r := NewRanker()
	r.SetScorer(constScorer(7))
	got := r.Rank(plugins(), "shutdown", 0)
	if len(got) == 0 || got[0].Score != RegexScore+1+7 {
		t.Errorf("score = %v", got)
	}
}

func TestDefaultScorerPrefersPrefix(t *testing.T) {
	s := DefaultScorer{}
	score := func(q, text string) int {
		qr, tr := []rune(q), []rune(text)
		return s.Score(qr, tr, tr, subsequence(qr, tr))
	}
	if score("sh", "shutdown") <= score("sh", "screenshot") {
		t.Error("prefix hit scored below infix hit")
	}
	if score("shutdown", "shutdown") <= score("shut", "shutdown") {
		t.Error("exact hit scored below partial hit")
	}
	if subsequence([]rune("xz"), []rune("abc")) != nil {
		t.Error("missing rune matched")
	}
}
