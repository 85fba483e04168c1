package cmdline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintmux/internal/diag"
	"github.com/dkoosis/lintmux/internal/linter"
)

func invocationNames(invs []linter.Invocation) []string {
	out := make([]string, len(invs))
	for i, inv := range invs {
		out[i] = inv.Name
	}
	return out
}

func withLevel(ds []diag.Diagnostic, level diag.Level) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range ds {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}

func TestAdapt_Verbatim_SplitsAtSubLinterBoundaries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	combined := filepath.Join(dir, "all.yaml")
	tidyResult := filepath.Join(dir, "tidy.yaml")
	args := []string{
		"ignored-before-boundary",
		"--export-fixes=" + combined,
		"--sub-linter=clang-tidy", "-p=build", "a.cpp", "--export-fixes=" + tidyResult,
		"--sub-linter=clazy", "b.cpp",
	}

	res := Adapt(linter.DefaultRegistry(), args)

	require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
	assert.Equal(t, Verbatim, res.Profile.Name)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, combined, res.CombinedResultPath)
	assert.Equal(t, []linter.Invocation{
		{Name: linter.ClangTidy, Args: []string{"-p=build", "a.cpp"}, ResultPath: tidyResult},
		{Name: linter.Clazy, Args: []string{"b.cpp"}},
	}, res.Invocations)

	_, err := os.Stat(combined)
	assert.ErrorIs(t, err, os.ErrNotExist, "probe must not leave the combined file behind")
}

func TestAdapt_Verbatim_PassesIDEProfileInsideSegmentThrough(t *testing.T) {
	t.Parallel()

	combined := filepath.Join(t.TempDir(), "all.yaml")
	args := []string{"--export-fixes=" + combined, "--sub-linter=clang-tidy", "--ide-profile=foo", "a.cpp"}

	res := Adapt(linter.DefaultRegistry(), args)

	require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
	assert.Equal(t, Verbatim, res.Profile.Name)
	assert.Equal(t, []linter.Invocation{
		{Name: linter.ClangTidy, Args: []string{"--ide-profile=foo", "a.cpp"}},
	}, res.Invocations)
}

func TestAdapt_AcceptsExplicitVerbatimProfile(t *testing.T) {
	t.Parallel()

	combined := filepath.Join(t.TempDir(), "all.yaml")
	res := Adapt(linter.DefaultRegistry(), []string{
		"--ide-profile=verbatim", "--export-fixes=" + combined, "--sub-linter=clazy", "b.cpp",
	})

	require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
	assert.Equal(t, Verbatim, res.Profile.Name)
	assert.Equal(t, combined, res.CombinedResultPath)
	assert.Equal(t, []linter.Invocation{{Name: linter.Clazy, Args: []string{"b.cpp"}}}, res.Invocations)
}

func TestAdapt_Verbatim_Fails_When_NoSubLinter(t *testing.T) {
	t.Parallel()

	res := Adapt(linter.DefaultRegistry(), []string{"--export-fixes=out.yaml", "a.cpp"})

	assert.True(t, res.Failed())
	assert.True(t, diag.HasErrors(res.Diagnostics))
}

func TestAdapt_Verbatim_ReportsEveryUnknownLinterInOrder(t *testing.T) {
	t.Parallel()

	args := []string{"--sub-linter=NotExistentLinter", "a.cpp", "--sub-linter=clazy", "--sub-linter=OtherLinter"}
	res := Adapt(linter.DefaultRegistry(), args)

	assert.True(t, res.Failed())
	errs := withLevel(res.Diagnostics, diag.Error)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Text, "NotExistentLinter")
	assert.Contains(t, errs[1].Text, "OtherLinter")
	assert.Equal(t, 0, errs[0].FirstPos)
	assert.Equal(t, len("--sub-linter=NotExistentLinter"), errs[0].LastPos)
}

func TestAdapt_Verbatim_FallsBack_When_CombinedPathAbsent(t *testing.T) {
	t.Parallel()

	fallback := filepath.Join(t.TempDir(), "fallback.yaml")
	res := Adapt(linter.DefaultRegistry(), []string{"--sub-linter=clang-tidy", "a.cpp"}, WithFallbackResult(fallback))

	require.False(t, res.Failed())
	assert.Equal(t, fallback, res.CombinedResultPath)
	assert.Len(t, withLevel(res.Diagnostics, diag.Warning), 1)
	assert.Len(t, withLevel(res.Diagnostics, diag.Info), 1)
}

func TestAdapt_Verbatim_FallsBack_When_CombinedPathNotCreatable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fallback := filepath.Join(dir, "fallback.yaml")
	bad := filepath.Join(dir, "missing-dir", "all.yaml")
	res := Adapt(linter.DefaultRegistry(),
		[]string{"--result-yaml=" + bad, "--sub-linter=clazy"},
		WithFallbackResult(fallback))

	require.False(t, res.Failed())
	assert.Equal(t, fallback, res.CombinedResultPath)
	warnings := withLevel(res.Diagnostics, diag.Warning)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Text, bad)
	assert.Len(t, withLevel(res.Diagnostics, diag.Info), 1)
}

func TestAdapt_Verbatim_KeepsExistingCombinedFile(t *testing.T) {
	t.Parallel()

	combined := filepath.Join(t.TempDir(), "all.yaml")
	require.NoError(t, os.WriteFile(combined, []byte("old"), 0o644))

	res := Adapt(linter.DefaultRegistry(), []string{"--export-fixes=" + combined, "--sub-linter=clazy"})

	require.False(t, res.Failed())
	assert.Equal(t, combined, res.CombinedResultPath)
	data, err := os.ReadFile(combined)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestAdapt_CLion_RoutesAndSynthesizesArguments(t *testing.T) {
	t.Parallel()

	args := []string{
		"--ide-profile=clion",
		"-p", "build",
		"--export-fixes=out.yaml",
		"--sub-linter=clang-tidy", "--sub-linter", "clazy",
		"--clazy-checks=level1",
		"--clang-extra-args=-DX -Wall",
		"--header-filter=.*",
		"--extra-arg=-std=c++17",
		"a.cpp",
		"--quiet",
	}

	res := Adapt(linter.DefaultRegistry(), args)

	require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, CLion, res.Profile.Name)
	assert.False(t, res.Profile.MergeStreams)
	assert.Equal(t, "out.yaml", res.CombinedResultPath)
	assert.Equal(t, []linter.Invocation{
		{
			Name:       linter.ClangTidy,
			Args:       []string{"-p=build", "--extra-arg=-DX", "--extra-arg=-Wall", "--header-filter=.*", "--extra-arg=-std=c++17", "a.cpp", "--quiet"},
			ResultPath: filepath.Join("build", "diagnostics-clang-tidy.yaml"),
		},
		{
			Name:       linter.Clazy,
			Args:       []string{"-p=build", "--checks=level1", "--extra-arg=-DX", "--extra-arg=-Wall", "--extra-arg=-std=c++17", "a.cpp"},
			ResultPath: filepath.Join("build", "diagnostics-clazy.yaml"),
		},
	}, res.Invocations)
}

func TestAdapt_QtCreator_BroadcastsHeaderFilterAndMergesStreams(t *testing.T) {
	t.Parallel()

	args := []string{"--ide-profile", "qtcreator", "-p=build", "--export-fixes=out.yaml", "--header-filter=src/.*", "--checks=-*", "a.cpp"}
	res := Adapt(linter.DefaultRegistry(), args)

	require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
	assert.Equal(t, QtCreator, res.Profile.Name)
	assert.True(t, res.Profile.MergeStreams)
	require.NotNil(t, res.Profile.Reformat)

	require.Len(t, res.Invocations, 2)
	assert.Equal(t, []string{"-p=build", "--header-filter=src/.*", "--checks=-*", "a.cpp"}, res.Invocations[0].Args)
	assert.Equal(t, []string{"-p=build", "--header-filter=src/.*", "a.cpp"}, res.Invocations[1].Args)
}

func TestAdapt_MSBuild_FiltersSourcesAndAddsTarget(t *testing.T) {
	t.Parallel()

	args := []string{
		"--ide-profile=msbuild", "-p", "build", "--export-fixes=out.yaml", "--sub-linter=clang-tidy",
		"src/a.cpp", "README.md", "/nologo", "include/b.HPP",
	}
	res := Adapt(linter.DefaultRegistry(), args, WithPlatform("x64"))

	require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
	require.Len(t, res.Invocations, 1)
	assert.Equal(t,
		[]string{"-p=build", "--extra-arg-before=--target=x86_64-pc-windows-msvc", "src/a.cpp", "include/b.HPP"},
		res.Invocations[0].Args)

	warnings := withLevel(res.Diagnostics, diag.Warning)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Text, "README.md")
	infos := withLevel(res.Diagnostics, diag.Info)
	require.Len(t, infos, 1)
	assert.Contains(t, infos[0].Text, "/nologo")
}

func TestAdapt_MSBuild_OmitsTarget_When_PlatformUnknown(t *testing.T) {
	t.Parallel()

	args := []string{"--ide-profile=msbuild", "-p=build", "--export-fixes=out.yaml", "--sub-linter=clazy", "a.c"}
	res := Adapt(linter.DefaultRegistry(), args, WithPlatform("Itanium"))

	require.Len(t, res.Invocations, 1)
	assert.Equal(t, []string{"-p=build", "a.c"}, res.Invocations[0].Args)
}

func TestAdapt_UsesAllLinters_When_NoSubLinterGiven(t *testing.T) {
	t.Parallel()

	reg := linter.DefaultRegistry()
	res := Adapt(reg, []string{"--ide-profile=clion", "-p=build", "--export-fixes=out.yaml", "a.cpp"})

	require.False(t, res.Failed())
	assert.Equal(t, reg.Names(), invocationNames(res.Invocations))

	infos := withLevel(res.Diagnostics, diag.Info)
	require.Len(t, infos, 1)
	assert.Equal(t, AllLintersUsed, infos[0].Text)
}

func TestAdapt_InvocationPerRequestedLinter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		subs []string
	}{
		{"clang-tidy only", []string{linter.ClangTidy}},
		{"clazy only", []string{linter.Clazy}},
		{"both reversed", []string{linter.Clazy, linter.ClangTidy}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"--ide-profile=clion", "-p=build", "--export-fixes=out.yaml"}
			for _, s := range tt.subs {
				args = append(args, "--sub-linter="+s)
			}
			res := Adapt(linter.DefaultRegistry(), args)
			assert.Equal(t, tt.subs, invocationNames(res.Invocations))
			assert.Zero(t, diag.Count(res.Diagnostics, diag.Info))
		})
	}
}

func TestAdapt_Fails_When_WorkingDirectoryMissing(t *testing.T) {
	t.Parallel()

	for _, profile := range []string{CLion, QtCreator, MSBuild} {
		t.Run(profile, func(t *testing.T) {
			res := Adapt(linter.DefaultRegistry(), []string{
				"--ide-profile=" + profile, "--export-fixes=out.yaml", "--sub-linter=clang-tidy", "a.cpp",
			})
			assert.True(t, res.Failed())
			assert.Empty(t, res.CombinedResultPath)
			assert.Equal(t, 1, diag.Count(res.Diagnostics, diag.Error))
		})
	}
}

func TestAdapt_Fails_When_CombinedResultMissing(t *testing.T) {
	t.Parallel()

	res := Adapt(linter.DefaultRegistry(), []string{"--ide-profile=clion", "-p=build", "a.cpp"})

	assert.True(t, res.Failed())
	assert.Equal(t, 1, diag.Count(res.Diagnostics, diag.Error))
}

func TestAdapt_ReportsUnknownLintersWithSpans(t *testing.T) {
	t.Parallel()

	args := []string{"--ide-profile=clion", "-p=b", "--export-fixes=o.yaml", "--sub-linter=Foo", "--sub-linter", "Bar"}
	res := Adapt(linter.DefaultRegistry(), args)

	assert.True(t, res.Failed())
	errs := withLevel(res.Diagnostics, diag.Error)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Text, `"Foo"`)
	assert.Contains(t, errs[1].Text, `"Bar"`)

	cl := res.CommandLine
	foo := strings.Index(cl, "--sub-linter=Foo")
	assert.Equal(t, foo, errs[0].FirstPos)
	assert.Equal(t, foo+len("--sub-linter=Foo"), errs[0].LastPos)
	bar := strings.Index(cl, "--sub-linter Bar")
	assert.Equal(t, bar, errs[1].FirstPos)
	assert.Equal(t, len(cl), errs[1].LastPos)
}

func TestAdapt_DeduplicatesRepeatedLinter(t *testing.T) {
	t.Parallel()

	args := []string{"--ide-profile=clion", "-p=b", "--export-fixes=o.yaml", "--sub-linter=clazy", "--sub-linter=clazy"}
	res := Adapt(linter.DefaultRegistry(), args)

	require.False(t, res.Failed())
	assert.Equal(t, []string{linter.Clazy}, invocationNames(res.Invocations))
	assert.Equal(t, 1, diag.Count(res.Diagnostics, diag.Warning))
}

func TestAdapt_WarnsAndContinues_When_OptionValueMissing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tail     []string
		wantTidy []string
	}{
		{"at end", []string{"a.cpp", "--clazy-checks"}, []string{"-p=b", "a.cpp"}},
		{"followed by flag", []string{"--clang-extra-args", "--quiet"}, []string{"-p=b", "--quiet"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--ide-profile=clion", "-p=b", "--export-fixes=o.yaml", "--sub-linter=clang-tidy"}, tt.tail...)
			res := Adapt(linter.DefaultRegistry(), args)

			require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
			warnings := withLevel(res.Diagnostics, diag.Warning)
			require.Len(t, warnings, 1)
			assert.Contains(t, warnings[0].Text, MissingValue)
			assert.Equal(t, tt.wantTidy, res.Invocations[0].Args)
		})
	}
}

func TestAdapt_Fails_When_OptionValueEmpty(t *testing.T) {
	t.Parallel()

	args := []string{"--ide-profile=clion", "-p=b", "--export-fixes=o.yaml", "--clazy-checks="}
	res := Adapt(linter.DefaultRegistry(), args)

	assert.True(t, res.Failed())
	errs := withLevel(res.Diagnostics, diag.Error)
	require.Len(t, errs, 1)
	assert.Equal(t, strings.Index(res.CommandLine, "--clazy-checks="), errs[0].FirstPos)
}

func TestAdapt_AcceptsResultYAMLAlias(t *testing.T) {
	t.Parallel()

	res := Adapt(linter.DefaultRegistry(), []string{"--ide-profile=clion", "--build-path=b", "--result-yaml=o.yaml", "--sub-linter=clazy"})

	require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
	assert.Equal(t, "o.yaml", res.CombinedResultPath)
	assert.Equal(t, filepath.Join("b", "diagnostics-clazy.yaml"), res.Invocations[0].ResultPath)
}

func TestAdapt_Fails_When_ProfileUnknown(t *testing.T) {
	t.Parallel()

	res := Adapt(linter.DefaultRegistry(), []string{"--ide-profile=vscode", "-p=b", "--export-fixes=o.yaml"})

	assert.True(t, res.Failed())
	errs := withLevel(res.Diagnostics, diag.Error)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Text, "vscode")
	assert.True(t, errs[0].HasSpan())
}

func TestAdapt_FallsBackToVerbatim_When_ProfileValueMissing(t *testing.T) {
	t.Parallel()

	fallback := filepath.Join(t.TempDir(), "fallback.yaml")
	res := Adapt(linter.DefaultRegistry(), []string{"--ide-profile", "--sub-linter=clazy"}, WithFallbackResult(fallback))

	require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
	assert.Equal(t, Verbatim, res.Profile.Name)
	assert.Contains(t, withLevel(res.Diagnostics, diag.Warning)[0].Text, MissingValue)
}

func TestWantsHelp(t *testing.T) {
	t.Parallel()

	assert.True(t, WantsHelp([]string{"--help"}))
	assert.True(t, WantsHelp([]string{"--ide-profile=clion", "-h"}))
	assert.False(t, WantsHelp([]string{"--sub-linter=clang-tidy", "--help"}))
	assert.False(t, WantsHelp(nil))
}

func TestUsage_ListsOptionsProfilesAndLinters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Usage(&buf, linter.DefaultRegistry())
	out := buf.String()

	for _, want := range []string{"--build-path", "--export-fixes", "--sub-linter", "--clazy-checks", "--clang-extra-args", "--ide-profile", "clion, qtcreator, msbuild", "clang-tidy, clazy"} {
		assert.Contains(t, out, want)
	}
}
