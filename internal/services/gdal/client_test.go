package gdal

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestConvertReportsProgressTicks(t *testing.T) {
	restore := commandContext
	var gotArgs []string
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotArgs = append([]string{name}, args...)
		return exec.CommandContext(ctx, "sh", "-c", "printf '0...10...50...100 - done.'")
	}
	t.Cleanup(func() { commandContext = restore })

	cli := NewCLI(WithBlockSize(256), WithCompression("LZW"))
	var ticks []float64
	err := cli.Convert(context.Background(), "in.tif", "out.tif", func(u ProgressUpdate) {
		ticks = append(ticks, u.Percent)
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	want := []float64{0, 10, 50, 100}
	if len(ticks) != len(want) {
		t.Fatalf("ticks = %v, want %v", ticks, want)
	}
	for i, percent := range want {
		if ticks[i] != percent {
			t.Fatalf("ticks = %v, want %v", ticks, want)
		}
	}

	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{"gdal_translate", "-of COG", "COMPRESS=LZW", "BLOCKSIZE=256", "OVERVIEWS=AUTO", "in.tif out.tif"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("command %q missing %q", joined, fragment)
		}
	}
}

func TestConvertSurfacesStderrOnFailure(t *testing.T) {
	restore := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'ERROR 4: unsupported input' >&2; exit 1")
	}
	t.Cleanup(func() { commandContext = restore })

	cli := NewCLI()
	err := cli.Convert(context.Background(), "in.tif", "out.tif", nil)
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(err.Error(), "unsupported input") {
		t.Fatalf("error does not carry stderr detail: %v", err)
	}
}

func TestConvertRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if err := cli.Convert(context.Background(), "", "out.tif", nil); err == nil {
		t.Fatalf("expected error for empty input path")
	}
	if err := cli.Convert(context.Background(), "in.tif", "", nil); err == nil {
		t.Fatalf("expected error for empty output path")
	}
}
