package axis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    string
		ok     bool
		id     string
		title  string
		widget string
	}{
		{name: "plain", raw: "3::MyNode::seed", ok: true, id: "3", title: "MyNode", widget: "seed"},
		{name: "hash prefix stripped", raw: "#12::KSampler::cfg", ok: true, id: "12", title: "KSampler", widget: "cfg"},
		{name: "surrounding whitespace", raw: "  7::Loader::ckpt_name \n", ok: true, id: "7", title: "Loader", widget: "ckpt_name"},
		{name: "title may be empty", raw: "4::::steps", ok: true, id: "4", title: "", widget: "steps"},
		{name: "widget keeps extra splitter", raw: "5::Title::a::b", ok: true, id: "5", title: "Title", widget: "a::b"},
		{name: "none sentinel", raw: "none", ok: false},
		{name: "empty", raw: "", ok: false},
		{name: "whitespace only", raw: "   ", ok: false},
		{name: "two fields", raw: "3::seed", ok: false},
		{name: "single field", raw: "seed", ok: false},
		{name: "empty node id", raw: "::Title::seed", ok: false},
		{name: "bare hash node id", raw: "#::Title::seed", ok: false},
		{name: "empty widget", raw: "3::Title::", ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ref, ok := Parse(tc.raw)
			require.Equal(t, tc.ok, ok)
			if !tc.ok {
				require.Equal(t, Reference{}, ref)
				return
			}
			require.Equal(t, tc.id, ref.NodeID())
			require.Equal(t, tc.title, ref.NodeTitle())
			require.Equal(t, tc.widget, ref.WidgetName())
		})
	}
}

func TestFromValue(t *testing.T) {
	t.Parallel()

	ref, ok := FromValue(map[string]any{"node_id": "#9", "node_title": "Sampler", "widget_name": "denoise"})
	require.True(t, ok)
	require.Equal(t, "9", ref.NodeID())
	require.Equal(t, "denoise", ref.WidgetName())

	ref, ok = FromValue(map[string]any{"node_id": 11, "widget_name": "seed"})
	require.True(t, ok)
	require.Equal(t, "11", ref.NodeID())

	_, ok = FromValue(map[string]string{"node_id": "9"})
	require.False(t, ok)

	parsed, _ := Parse("1::A::b")
	again, ok := FromValue(parsed)
	require.True(t, ok)
	require.Equal(t, parsed, again)

	again, ok = FromValue(&parsed)
	require.True(t, ok)
	require.Equal(t, parsed, again)

	_, ok = FromValue(Reference{})
	require.False(t, ok)
	_, ok = FromValue(nil)
	require.False(t, ok)
	_, ok = FromValue(42)
	require.False(t, ok)
	_, ok = FromValue("none")
	require.False(t, ok)
}

func TestReferenceStringRoundTrip(t *testing.T) {
	t.Parallel()

	ref, ok := Parse("#3::My Node::seed")
	require.True(t, ok)
	require.Equal(t, "3::My Node::seed", ref.String())

	again, ok := Parse(ref.String())
	require.True(t, ok)
	require.Equal(t, ref, again)
}

func TestSplitValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want []string
	}{
		{raw: "  a ; b ;;c ", want: []string{"a", "b", "c"}},
		{raw: "6.5; 7.0; 7.5", want: []string{"6.5", "7.0", "7.5"}},
		{raw: "20, 30 ,40", want: []string{"20", "30", "40"}},
		{raw: "a photo, of a cat; a dog", want: []string{"a photo, of a cat", "a dog"}},
		{raw: "euler", want: []string{"euler"}},
		{raw: "  single value  ", want: []string{"single value"}},
		{raw: ";;", want: []string{}},
		{raw: ",", want: []string{}},
		{raw: "", want: []string{}},
		{raw: " \t\n", want: []string{}},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, SplitValues(tc.raw), "input %q", tc.raw)
	}
}

func TestSplitValuesIgnoresPadding(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9.]{1,8}`), 1, 6).Draw(t, "values")
		pads := rapid.SliceOfN(rapid.StringMatching(`[ \t]{0,3}`), len(values), len(values)).Draw(t, "pads")

		parts := make([]string, 0, len(values)*2)
		for i, v := range values {
			parts = append(parts, pads[i]+v+pads[len(values)-1-i])
			if rapid.Bool().Draw(t, "empty") {
				parts = append(parts, " ")
			}
		}

		got := SplitValues(strings.Join(parts, ";"))
		if len(got) != len(values) {
			t.Fatalf("got %d values, want %d: %q", len(got), len(values), got)
		}
		for i := range values {
			if got[i] != values[i] {
				t.Fatalf("value %d: got %q want %q", i, got[i], values[i])
			}
		}
	})
}
