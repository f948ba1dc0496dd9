package search

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/quickbar/internal/plugin/feature"
	"github.com/dshills/quickbar/internal/plugin/manifest"
)

// Scores given to non-literal triggers. Literal hits always score above
// RegexScore.
const (
	RegexScore = 0
	OverScore  = -1
)

// App is an installed application offered next to plugin features.
type App struct {
	Name string `json:"name"`
	// Path is the bundle, desktop entry or shortcut the app was found at.
	Path string `json:"path"`
	// Action is the shell command that launches the app.
	Action   string   `json:"action"`
	Icon     string   `json:"icon,omitempty"`
	Keywords []string `json:"keyWords"`
}

// Option is one invocable result: a feature of a plugin, reached through
// one of its triggers, or an installed app reached through a keyword.
type Option struct {
	Plugin  *manifest.Descriptor
	App     *App
	Feature feature.Feature
	Cmd     feature.Cmd

	// Score orders options, higher first.
	Score int

	// Matches are rune indices into Cmd.Text for literal hits.
	Matches []int
}

// Label is the text shown for the option.
func (o Option) Label() string {
	switch {
	case o.Cmd.Kind == feature.MatchLiteral:
		return o.Cmd.Text
	case o.Cmd.Label != "":
		return o.Cmd.Label
	case o.Feature.Label != "":
		return o.Feature.Label
	default:
		return o.Feature.Explain
	}
}

// Source names the plugin or app the option belongs to.
func (o Option) Source() string {
	if o.App != nil {
		return o.App.Name
	}
	return o.Plugin.Name
}

// Ranker scores plugin features and installed apps against queries.
type Ranker struct {
	mu     sync.RWMutex
	scorer Scorer
	apps   []App
}

// NewRanker creates a ranker using DefaultScorer.
func NewRanker() *Ranker {
	return &Ranker{scorer: DefaultScorer{}}
}

// SetScorer replaces the literal trigger scorer.
func (r *Ranker) SetScorer(s Scorer) {
	r.mu.Lock()
	r.scorer = s
	r.mu.Unlock()
}

// SetApps replaces the installed apps offered by Rank.
func (r *Ranker) SetApps(apps []App) {
	r.mu.Lock()
	r.apps = slices.Clone(apps)
	r.mu.Unlock()
}

// Rank returns the options of plugins and apps triggered by query, best
// first. Apps match through their keywords like literal triggers.
// A limit of zero or less returns every option. An empty query matches
// nothing.
func (r *Ranker) Rank(plugins []*manifest.Descriptor, query string, limit int) []Option {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	q := []rune(strings.ToLower(query))

	r.mu.RLock()
	scorer, apps := r.scorer, r.apps
	r.mu.RUnlock()

	var out []Option
	for _, p := range plugins {
		if p == nil {
			continue
		}
		for _, f := range p.Features {
			if opt, ok := bestCmd(scorer, p, f, query, q); ok {
				out = append(out, opt)
			}
		}
	}
	for i := range apps {
		if opt, ok := bestKeyword(scorer, &apps[i], query, q); ok {
			out = append(out, opt)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if a, b := out[i].Source(), out[j].Source(); a != b {
			return a < b
		}
		return out[i].Label() < out[j].Label()
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// bestCmd keeps the highest scoring trigger of f, so a feature is listed
// once.
func bestCmd(scorer Scorer, p *manifest.Descriptor, f feature.Feature, query string, q []rune) (Option, bool) {
	var best Option
	found := false
	for _, c := range f.Cmds {
		if !c.Matches(query) {
			continue
		}
		opt := Option{Plugin: p, Feature: f, Cmd: c}
		switch c.Kind {
		case feature.MatchLiteral:
			opt.Matches, opt.Score = scoreLiteral(scorer, c.Text, q)
		case feature.MatchRegex:
			opt.Score = RegexScore
		default:
			opt.Score = OverScore
		}
		if !found || opt.Score > best.Score {
			best, found = opt, true
		}
	}
	return best, found
}

// bestKeyword keeps the highest scoring keyword of app.
func bestKeyword(scorer Scorer, app *App, query string, q []rune) (Option, bool) {
	var best Option
	found := false
	for _, kw := range app.Keywords {
		c := feature.Cmd{Kind: feature.MatchLiteral, Text: kw}
		if !c.Matches(query) {
			continue
		}
		opt := Option{App: app, Cmd: c}
		opt.Matches, opt.Score = scoreLiteral(scorer, kw, q)
		if !found || opt.Score > best.Score {
			best, found = opt, true
		}
	}
	return best, found
}

func scoreLiteral(scorer Scorer, text string, q []rune) ([]int, int) {
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	matches := subsequence(q, lower)
	return matches, RegexScore + 1 + scorer.Score(q, runes, lower, matches)
}
