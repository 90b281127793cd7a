package naming

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/xyzplot/internal/axis"
)

func mustRef(t *testing.T, raw string) *axis.Reference {
	t.Helper()
	ref, ok := axis.Parse(raw)
	require.True(t, ok, raw)
	return &ref
}

func TestSanitizeFolderName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "grid", want: "grid"},
		{in: "  /grid/sub/  ", want: "grid/sub"},
		{in: `runs\today\grid`, want: "runs/today/grid"},
		{in: "../../etc", want: "//etc"},
		{in: "a/../b", want: "a//b"},
		{in: "", want: FallbackFolderName},
		{in: " / ", want: FallbackFolderName},
		{in: "..", want: FallbackFolderName},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, SanitizeFolderName(tc.in), "input %q", tc.in)
	}
}

func TestCleanFolderNameHasNoFallback(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", CleanFolderName("  "))
	require.Equal(t, "", CleanFolderName("/"))
	require.Equal(t, "grid", CleanFolderName("/grid/"))
}

func TestSanitizeComponent(t *testing.T) {
	t.Parallel()

	require.Equal(t, "KSampler", SanitizeComponent("KSampler"))
	require.Equal(t, "My_Node_v2", SanitizeComponent("My:Node / v2"))
	require.Equal(t, "Load_Checkpoint", SanitizeComponent("  Load   Checkpoint  "))
	require.Equal(t, "a_b", SanitizeComponent(`a<>"|?*b`))
	require.Equal(t, "", SanitizeComponent("   "))
	require.Equal(t, "", SanitizeComponent("___"))
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 4, 5, 6, 7, 0, time.UTC)

	require.Equal(t, "250304", FormatDate("yyMMdd", now))
	require.Equal(t, "2025-03-04_05-06-07", FormatDate("yyyy-MM-dd_HH-mm-ss", now))
	require.Equal(t, "3/4 5:6:7", FormatDate("M/d H:m:s", now))
	require.Equal(t, "run_", FormatDate("run_", now))
}

func TestExpandTemplateDefault(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 2, 10, 0, 0, 0, time.UTC)
	axes := Axes{
		X: mustRef(t, "3::KSampler::cfg"),
		Y: mustRef(t, "3::KSampler::steps"),
	}

	require.Equal(t, "250102_X_KSampler_cfg_Y_KSampler_steps", ExpandTemplate("", axes, now))

	axes.Z = mustRef(t, "5::Sampler Select::sampler_name")
	require.Equal(t,
		"250102_X_KSampler_cfg_Y_KSampler_steps_Z_Sampler_Select_sampler_name",
		ExpandTemplate(DefaultTemplate, axes, now))
}

func TestExpandTemplateTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.December, 31, 23, 59, 58, 0, time.UTC)
	axes := Axes{
		X: mustRef(t, "1::Model Loader::ckpt_name"),
		Y: mustRef(t, "2::::seed"),
	}

	cases := []struct {
		name     string
		template string
		want     string
	}{
		{name: "clock tokens", template: "%year%%month%%day%-%hour%%minute%%second%", want: "20241231-235958"},
		{name: "backslashes become folders", template: `%year%/%month%\grid  %inputx_widget_name%`, want: "2024/12/grid_ckpt_name"},
		{name: "empty title collapses", template: "_Y_%inputy_node_title%_%inputy_widget_name%_", want: "Y_seed"},
		{name: "underscores around slashes", template: "a_ / _b", want: "a/b"},
		{name: "z tokens expand empty", template: "grid_%inputz_widget_name%", want: "grid"},
		{name: "empty date pattern", template: "%date: %grid", want: "grid"},
		{name: "all tokens empty falls back", template: "%inputz_node_title%", want: FallbackFolderName},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ExpandTemplate(tc.template, axes, now))
		})
	}
}

func TestExpandTemplateStripsZBlockOnlyWithoutZ(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	template := "grid_Z_%inputz_node_title%_%inputz_widget_name%"
	axes := Axes{X: mustRef(t, "1::A::a"), Y: mustRef(t, "2::B::b")}

	require.Equal(t, "grid", ExpandTemplate(template, axes, now))

	axes.Z = mustRef(t, "3::C::c")
	require.Equal(t, "grid_Z_C_c", ExpandTemplate(template, axes, now))
}
