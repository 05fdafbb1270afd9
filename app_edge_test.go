package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/vertexgen/pkg/geometry"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Regions == nil {
		t.Error("Regions should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error, 0 meshes.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()

	// Put valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(region \"test\""
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}

	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2ESyntaxErrorSingleLineMissingParen(t *testing.T) {
	app := NewApp()

	result := app.Evaluate("(+ 1 2")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for missing closing paren")
	}
	if result.Errors[0].Message == "" {
		t.Error("error message should not be empty")
	}
}

// ---------------------------------------------------------------------------
// 3. Unknown region: sampling a name no table declares.
// ---------------------------------------------------------------------------

func TestE2EUnknownRegion(t *testing.T) {
	app := NewApp()

	tables, err := app.LoadDetector("pmt-r11410")
	if err != nil {
		t.Fatalf("LoadDetector: %v", err)
	}

	_, err = app.Sample(tables, "NONEXISTENT", 10, 1, 1)
	if !errors.Is(err, geometry.ErrUnknownRegion) {
		t.Fatalf("expected unknown region error, got %v", err)
	}
	var unknown *geometry.UnknownRegionError
	if !errors.As(err, &unknown) || unknown.Region != "NONEXISTENT" {
		t.Errorf("expected the error to carry the region name, got %v", err)
	}
}

func TestE2EUnknownDetector(t *testing.T) {
	app := NewApp()
	if _, err := app.LoadDetector("no-such-part"); err == nil {
		t.Fatal("expected error for unknown detector")
	}
}

// ---------------------------------------------------------------------------
// 4. Ill-formed geometry: degenerate, negative and overcrowded layouts.
// ---------------------------------------------------------------------------

func TestE2EZeroDimensionBox(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(region "FLAT" (box :x 0 :y 10 :z 10))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for zero-dimension box")
	}
	if !strings.Contains(result.Errors[0].Message, "ill-formed geometry") {
		t.Errorf("expected ill-formed geometry, got %q", result.Errors[0].Message)
	}
}

func TestE2ENegativeRadius(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(region "BAD" (tubs :rmin -1 :rmax 10 :length 10))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for negative inner radius")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2EOvercrowdedArray(t *testing.T) {
	app := NewApp()
	_, err := app.LoadSource(`
(region "ROW"
  (linear-array :count 24 :container 488.0 :width 25 :item (box :x 6 :y 6 :z 1.5)))
`)
	if err == nil {
		t.Fatal("expected error for 24 items of width 25 in 488")
	}
	if !strings.Contains(err.Error(), "ill-formed geometry") {
		t.Errorf("expected ill-formed geometry, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// 5. Rapid evaluation (debounce simulation): no panics, no data races.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	// zygomys has internal global state that is not safe for concurrent
	// sandbox creation, so calls are sequential.
	app := NewApp()

	sources := []string{
		`(region "A" (box :x 10 :y 5 :z 1))`,
		`(region "B" (tubs :rmin 1 :rmax 2 :length 3))`,
		`(+ 1 2)`,
		``,
		`(region "C" (disc :radius 3 :thickness 1))`,
		`(region "D" (box :x 4 :y 2 :z 1.8))`,
		`(+ 100 200)`,
		``,
		`(region "E" (tubs :rmin 0 :rmax 5 :length 2.5))`,
		`(region "F" (box :x 6 :y 3 :z 1.8))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			_, _ = app.LoadSource(source)
		}()
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	app := NewApp()

	sources := []string{
		`(region "ok" (box :x 10 :y 5 :z 1))`,
		`(region "broken"`,
		``,
		`(region "empty")`,
		`(region "also-ok" (disc :radius 2 :thickness 1))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(region "fine" (tubs :rmin 1 :rmax 3 :length 3))`,
		`(undefined-func 1 2 3)`,
		`(region "last" (box :x 4 :y 2 :z 1.8))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_, _ = app.LoadSource(source)
		}()
	}

	tables, err := app.LoadSource(sources[len(sources)-1])
	if err != nil {
		t.Fatalf("engine did not recover: %v", err)
	}
	if len(tables) != 1 || tables[0].Name() != "last" {
		t.Errorf("expected only region 'last', got %d tables", len(tables))
	}
}

// ---------------------------------------------------------------------------
// 6. Comments and whitespace.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(";; a detector with nothing in it\n; yet")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for comment-only source, got %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2EWhitespaceOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("   \n\t\n   \n")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for whitespace-only source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for whitespace-only source, got %d", len(result.Meshes))
	}
}

func TestE2ERegionMissingBody(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(region "oops")`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for region with no entries")
	}
}

// ---------------------------------------------------------------------------
// 7. Nested expressions: def with arithmetic, then use in a shape.
// ---------------------------------------------------------------------------

func TestE2EComplexArithmeticExpressions(t *testing.T) {
	app := NewApp()

	tables, err := app.LoadSource(`
(def outer-rad 38.0)
(def wall 0.5)
(def inner-rad (- outer-rad wall))
(def half-length (/ 38.0 2))

(region "SHELL"
  (place (tubs :rmin inner-rad :rmax outer-rad :length (* 2 half-length))
         :at (vec3 0 0 (- 0 half-length))))
`)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	d := tables[0].Entry(0).Descriptor
	tube := d.Shape.(geometry.Tube)
	if tube.Rmin != 37.5 || tube.Length != 38 {
		t.Errorf("unexpected tube %+v", tube)
	}
	if d.Placement.Translation.Z != -19 {
		t.Errorf("expected z=-19, got %g", d.Placement.Translation.Z)
	}
}

// ---------------------------------------------------------------------------
// 8. Sampling: reproducible streams and volume listing.
// ---------------------------------------------------------------------------

func TestE2ESampleReproducible(t *testing.T) {
	app := NewApp()
	tables, err := app.LoadDetector("pmt-r11410")
	if err != nil {
		t.Fatalf("LoadDetector: %v", err)
	}

	a, err := app.Sample(tables, "PMT_BODY", 1000, 42, 4)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	b, err := app.Sample(tables, "PMT_BODY", 1000, 42, 4)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}

	c, err := app.Sample(tables, "PMT_BODY", 1000, 43, 4)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if a[0] == c[0] {
		t.Error("different seeds should give different vertices")
	}
}

func TestE2ESampleMoreWorkersThanVertices(t *testing.T) {
	app := NewApp()
	tables, err := app.LoadDetector("pmt-r11410")
	if err != nil {
		t.Fatalf("LoadDetector: %v", err)
	}

	points, err := app.Sample(tables, "PMT_WINDOW", 3, 1, 16)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for _, p := range points {
		if p.Z < 17 || p.Z > 19 {
			t.Errorf("window vertex %v outside z in [17, 19]", p)
		}
	}
}

func TestE2EVolumes(t *testing.T) {
	app := NewApp()
	tables, err := app.LoadDetector("pmt-r11410")
	if err != nil {
		t.Fatalf("LoadDetector: %v", err)
	}

	rows := app.Volumes(tables)
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	last := map[string]float64{}
	for _, r := range rows {
		if r.Weight <= 0 {
			t.Errorf("%s/%s: weight %g must be positive", r.Region, r.Entry, r.Weight)
		}
		if r.Breakpoint < last[r.Region] {
			t.Errorf("%s/%s: breakpoints must not decrease", r.Region, r.Entry)
		}
		last[r.Region] = r.Breakpoint
	}
	for region, bp := range last {
		if bp != 1 {
			t.Errorf("%s: last breakpoint %g, want 1", region, bp)
		}
	}
}

// ---------------------------------------------------------------------------
// 9. Command line.
// ---------------------------------------------------------------------------

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLISample(t *testing.T) {
	out, err := runCLI(t, "sample", "--detector", "pmt-r11410", "--region", "PHOTOCATHODE",
		"-n", "25", "--seed", "3", "--workers", "2")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 25 {
		t.Fatalf("expected 25 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if strings.Count(l, ",") != 2 {
			t.Errorf("expected x,y,z, got %q", l)
		}
	}
}

func TestCLISampleFromFile(t *testing.T) {
	out, err := runCLI(t, "sample", "-f", "examples/sipm_board.zy", "-r", "SIPMS", "-n", "5")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if n := len(strings.Split(strings.TrimSpace(out), "\n")); n != 5 {
		t.Errorf("expected 5 lines, got %d", n)
	}
}

func TestCLIUnknownRegion(t *testing.T) {
	_, err := runCLI(t, "sample", "--detector", "pmt-r11410", "--region", "NONEXISTENT")
	if !errors.Is(err, geometry.ErrUnknownRegion) {
		t.Errorf("expected unknown region, got %v", err)
	}
}

func TestCLIRequiresOneSource(t *testing.T) {
	if _, err := runCLI(t, "volumes"); err == nil {
		t.Error("expected error without --detector or --file")
	}
	if _, err := runCLI(t, "volumes", "--detector", "pmt-r11410", "-f", "examples/pmt_r11410.zy"); err == nil {
		t.Error("expected error with both --detector and --file")
	}
}

func TestCLIInvalidLogLevel(t *testing.T) {
	if _, err := runCLI(t, "volumes", "--detector", "pmt-r11410", "--log-level", "loud"); err == nil {
		t.Error("expected error for an unknown logging level")
	}
}

func TestCLIVolumes(t *testing.T) {
	out, err := runCLI(t, "volumes", "--detector", "sipm-board")
	if err != nil {
		t.Fatalf("volumes: %v", err)
	}
	// One encasing, one board and 24 sensors.
	if n := len(strings.Split(strings.TrimSpace(out), "\n")); n != 26 {
		t.Errorf("expected 26 lines, got %d", n)
	}
}

func TestCLIMesh(t *testing.T) {
	out, err := runCLI(t, "mesh", "--detector", "pmt-r11410", "--region", "PMT_WINDOW")
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	var result EvalResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("mesh output is not JSON: %v", err)
	}
	if len(result.Regions) != 3 {
		t.Errorf("expected 3 regions listed, got %v", result.Regions)
	}
	if len(result.Meshes) != 1 || result.Meshes[0].Region != "PMT_WINDOW" {
		t.Fatalf("expected one PMT_WINDOW mesh, got %d", len(result.Meshes))
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("mesh should have vertices")
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
}

func TestCLIMeshFromFile(t *testing.T) {
	out, err := runCLI(t, "mesh", "-f", "examples/sipm_board.zy", "-r", "BOARD")
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	var result EvalResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("mesh output is not JSON: %v", err)
	}
	if len(result.Meshes) == 0 {
		t.Fatal("expected BOARD meshes")
	}
	for _, m := range result.Meshes {
		if m.Region != "BOARD" {
			t.Errorf("mesh of region %q in BOARD output", m.Region)
		}
	}
}

func TestCLIMeshFileReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zy")
	src := "(region \"A\"\n  (tubs :rmin 0 :rmax 5 :length 10)\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "mesh", "-f", path)
	if err == nil {
		t.Fatal("expected an error for an unterminated region")
	}
	var result EvalResult
	if jerr := json.Unmarshal([]byte(out), &result); jerr != nil {
		t.Fatalf("mesh output is not JSON: %v", jerr)
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors in the output")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	want := fmt.Sprintf("%s:%d:%d: %s", path, e.Line, e.Col, e.Message)
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(result.Meshes))
	}
}

func TestCLIMeshUnknownRegion(t *testing.T) {
	_, err := runCLI(t, "mesh", "-f", "examples/pmt_r11410.zy", "-r", "NONEXISTENT")
	if !errors.Is(err, geometry.ErrUnknownRegion) {
		t.Errorf("expected unknown region, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// 10. Color palette wraps for many entries.
// ---------------------------------------------------------------------------

func TestE2EColorPaletteWrapping(t *testing.T) {
	app := NewApp()

	// More entries than the palette has colors.
	source := `
(region "ROW"
  (linear-array :count 9 :container 90.0 :item (box :x 5 :y 5 :z 5) :name "CELL"))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 9 {
		t.Fatalf("expected 9 meshes, got %d", len(result.Meshes))
	}
	for _, m := range result.Meshes {
		if m.Color == "" {
			t.Errorf("mesh %q should have a color assigned (palette wrapping)", m.Entry)
		}
	}
	if result.Meshes[0].Color != result.Meshes[8].Color {
		t.Errorf("expected the palette to wrap: %q vs %q", result.Meshes[0].Color, result.Meshes[8].Color)
	}
}
