package voice_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-pvoc/internal/testutil"
	"github.com/cwbudde/algo-pvoc/pvoc/frame"
	"github.com/cwbudde/algo-pvoc/pvoc/voice"
)

const (
	testRate  = 44100.0
	testBlock = 64
	testFrame = 1024
	testBin   = 20
)

type recorder struct {
	rendered int
	failed   []error
	clamped  int
	warnings []string
}

func (r *recorder) BlockRendered(string)          { r.rendered++ }
func (r *recorder) BlockFailed(_ string, e error) { r.failed = append(r.failed, e) }
func (r *recorder) TimeClamped(string)            { r.clamped++ }
func (r *recorder) Warning(_, reason string)      { r.warnings = append(r.warnings, reason) }

func mapLoader(files map[string]*frame.File) voice.Loader {
	return voice.LoaderFunc(func(name string) (*frame.File, error) {
		f, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("no such file %q", name)
		}

		return f, nil
	})
}

func newTestEngine(t *testing.T, files map[string]*frame.File, opts ...voice.Option) *voice.Engine {
	t.Helper()

	opts = append([]voice.Option{
		voice.WithSampleRate(testRate),
		voice.WithBlockSize(testBlock),
		voice.WithLoader(mapLoader(files)),
	}, opts...)

	e, err := voice.NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	return e
}

func sineFiles(t *testing.T) map[string]*frame.File {
	t.Helper()

	return map[string]*frame.File{
		"ref":   testutil.SineFile(t, testFrame, 100, testRate, testBin, 0.8),
		"drive": testutil.SineFile(t, testFrame, 100, testRate, testBin, 0.4),
	}
}

func blockTime(i int) float64 {
	return float64(i*testBlock) / testRate
}

func TestInterpRendersContinuousStream(t *testing.T) {
	binHz := testRate / testFrame
	files := map[string]*frame.File{
		"ref":   testutil.SineFile(t, testFrame, 100, testRate, testBin, 0.8),
		"sweep": testutil.SweepFile(t, testFrame, 100, testRate, 10*binHz, 40*binHz, 0.4),
	}
	e := newTestEngine(t, files)

	h, rd, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	v, err := e.AddInterp("interp", "sweep", h)
	if err != nil {
		t.Fatalf("AddInterp() error = %v", err)
	}

	const blocks = 50

	dur := files["sweep"].Duration()
	out := make([]float64, testBlock)
	var stream []float64

	for i := range blocks {
		tm := dur * float64(i) / (blocks - 1)

		if err := rd.Process(voice.ReadControls{Time: tm}); err != nil {
			t.Fatalf("block %d: reader error = %v", i, err)
		}

		ctrl := voice.DefaultInterpControls()
		ctrl.Time = tm

		if err := v.Process(out, ctrl); err != nil {
			t.Fatalf("block %d: Process() error = %v", i, err)
		}

		stream = append(stream, out...)
	}

	if len(stream) != blocks*testBlock {
		t.Fatalf("rendered %d samples, want %d", len(stream), blocks*testBlock)
	}

	testutil.RequireFinite(t, stream)

	// Half way mix: 0.4 at the reference bin plus 0.2 at the sweep bin.
	const peak = 0.6

	if got := testutil.MaxAbs(stream); got > peak*1.001 {
		t.Fatalf("MaxAbs() = %v, want <= %v", got, peak)
	}

	if got := testutil.MaxAbs(stream[2*testBlock:]); got < 0.3 {
		t.Fatalf("steady-state MaxAbs() = %v, want audible output", got)
	}

	// A smooth signal of this peak at the highest sweep frequency moves at most
	// peak*2π*f/sr per sample.
	limit := 1.2 * peak * 2 * math.Pi * 40 * binHz / testRate
	if step := testutil.MaxStep(stream); step > limit {
		t.Fatalf("MaxStep() = %v, want <= %v (discontinuity in output)", step, limit)
	}

	st := v.State()
	if st.Blocks != blocks || st.LastPitch != 1 || st.PastEnd != frame.Armed {
		t.Fatalf("State() = %+v", st)
	}

	if math.Abs(st.Index-99) > 1e-6 {
		t.Fatalf("State().Index = %v, want the last frame", st.Index)
	}
}

func TestInterpDoesNotModifyReferenceFrame(t *testing.T) {
	files := sineFiles(t)
	e := newTestEngine(t, files)

	h, rd, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	if _, err := e.AddInterp("interp", "drive", h); err != nil {
		t.Fatalf("AddInterp() error = %v", err)
	}

	if err := e.Process([][]float64{make([]float64, testBlock)}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := files["ref"].Frame(0)
	for i, got := range rd.Frame() {
		if got != float64(want[i]) {
			t.Fatalf("reference frame[%d] = %v, want %v", i, got, want[i])
		}
	}
}

func TestCrossWarpNegativeFive(t *testing.T) {
	e := newTestEngine(t, sineFiles(t))

	h, rd, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	v, err := e.AddCross("cross", "drive", h, -5)
	if err != nil {
		t.Fatalf("AddCross() error = %v", err)
	}

	out := make([]float64, testBlock)
	outs := [][]float64{out}

	var passed, audible []int

	for i := range 10 {
		rd.SetControls(voice.ReadControls{Time: blockTime(i)})
		v.SetControls(voice.CrossControls{Time: blockTime(i), Pitch: 1, AmpScaleA: 1, AmpScaleB: 0.5})

		if err := e.Process(outs); err != nil {
			t.Fatalf("block %d: Process() error = %v", i, err)
		}

		if seg := v.LastSegment(); testutil.MaxAbs(seg) > 0 {
			passed = append(passed, i)

			// Unwarped frames still get the half window.
			if seg[0] != 0 || testutil.MaxAbs(seg) < 0.1 {
				t.Fatalf("block %d: segment edge %v, peak %v, want windowed content",
					i, seg[0], testutil.MaxAbs(seg))
			}
		}

		if testutil.MaxAbs(out) > 0.01 {
			audible = append(audible, i)
		}
	}

	if fmt.Sprint(passed) != "[4 9]" {
		t.Fatalf("passed blocks = %v, want [4 9]", passed)
	}

	// Each passed segment spills its second half into the following block.
	if fmt.Sprint(audible) != "[4 5 9]" {
		t.Fatalf("audible blocks = %v, want [4 5 9]", audible)
	}

	if v.WarpMode() != -5 {
		t.Fatalf("WarpMode() = %d, want -5", v.WarpMode())
	}
}

func TestCrossUsesOwnFrequenciesAndSummedAmplitudes(t *testing.T) {
	e := newTestEngine(t, sineFiles(t))

	h, rd, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	v, err := e.AddCross("cross", "drive", h, 0)
	if err != nil {
		t.Fatalf("AddCross() error = %v", err)
	}

	out := make([]float64, testBlock)
	var stream []float64

	for i := range 20 {
		if err := rd.Process(voice.ReadControls{Time: blockTime(i)}); err != nil {
			t.Fatalf("reader error = %v", err)
		}

		if err := v.Process(out, voice.CrossControls{Time: blockTime(i), Pitch: 1, AmpScaleA: 0.5, AmpScaleB: 0.5}); err != nil {
			t.Fatalf("Process() error = %v", err)
		}

		stream = append(stream, out...)
	}

	// 0.4*0.5 + 0.8*0.5
	if got := testutil.MaxAbs(stream[2*testBlock:]); got < 0.6*0.97 || got > 0.6*1.001 {
		t.Fatalf("MaxAbs() = %v, want about 0.6", got)
	}
}

func TestBlockErrorLeavesStateUntouched(t *testing.T) {
	e := newTestEngine(t, sineFiles(t))

	h, rd, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	v, err := e.AddInterp("interp", "drive", h)
	if err != nil {
		t.Fatalf("AddInterp() error = %v", err)
	}

	out := make([]float64, testBlock)
	ctrl := voice.DefaultInterpControls()

	for i := range 3 {
		ctrl.Time = blockTime(i)
		if err := rd.Process(voice.ReadControls{Time: ctrl.Time}); err != nil {
			t.Fatalf("reader error = %v", err)
		}
		if err := v.Process(out, ctrl); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}

	before := v.State()

	tests := []struct {
		name  string
		time  float64
		pitch float64
		want  error
	}{
		{"transpose too high", 0.01, 16, voice.ErrTransposeTooHigh},
		{"transpose too low", 0.01, 1.0 / 32, voice.ErrTransposeTooLow},
		{"zero pitch", 0.01, 0, voice.ErrInvalidPitch},
		{"negative time", -0.5, 1, voice.ErrInvalidTime},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for j := range out {
				out[j] = 1
			}

			ctrl.Time = tt.time
			ctrl.Pitch = tt.pitch

			err := v.Process(out, ctrl)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Process() error = %v, want %v", err, tt.want)
			}

			var be *voice.BlockError
			if !errors.As(err, &be) || be.Voice != "interp" || be.Block != before.Blocks+int64(i) {
				t.Fatalf("Process() error = %#v, want BlockError for block %d", err, before.Blocks+int64(i))
			}

			testutil.RequireAllZero(t, out)

			got := v.State()
			got.Blocks = before.Blocks
			if got != before {
				t.Fatalf("State() = %+v, want %+v", got, before)
			}
		})
	}

	ctrl.Time = blockTime(3)
	ctrl.Pitch = 1
	if err := v.Process(out, ctrl); err != nil {
		t.Fatalf("Process() after failures error = %v", err)
	}

	if testutil.MaxAbs(out) == 0 {
		t.Fatal("Process() after failures produced silence")
	}
}

func TestSetupErrors(t *testing.T) {
	files := sineFiles(t)
	files["small"] = testutil.SineFile(t, 512, 10, testRate, 4, 1)

	tests := []struct {
		name string
		run  func(e *voice.Engine, h voice.Handle) error
		want error
	}{
		{"missing file", func(e *voice.Engine, h voice.Handle) error {
			_, err := e.AddInterp("v", "nope", h)
			return err
		}, voice.ErrLoad},
		{"unknown reader", func(e *voice.Engine, _ voice.Handle) error {
			_, err := e.AddInterp("v", "drive", voice.Handle(7))
			return err
		}, voice.ErrUnknownReader},
		{"frame size mismatch", func(e *voice.Engine, h voice.Handle) error {
			_, err := e.AddCross("v", "small", h, 0)
			return err
		}, voice.ErrFrameSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, files)

			h, _, err := e.AddReader("ref", "ref")
			if err != nil {
				t.Fatalf("AddReader() error = %v", err)
			}

			err = tt.run(e, h)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			var se *voice.SetupError
			if !errors.As(err, &se) || se.Voice != "v" {
				t.Fatalf("error = %#v, want SetupError for voice v", err)
			}

			if e.Voices() != 0 {
				t.Fatalf("Voices() = %d, want 0", e.Voices())
			}
		})
	}
}

func TestEngineConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		opts []voice.Option
		want error
	}{
		{"zero block", []voice.Option{voice.WithBlockSize(0)}, voice.ErrBlockSize},
		{"block too large", []voice.Option{voice.WithBlockSize(voice.MaxBlockSize + 1)}, voice.ErrBlockSize},
		{"max frame not power of two", []voice.Option{voice.WithMaxFrameSize(1000)}, voice.ErrFrameSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := voice.NewEngine(tt.opts...); !errors.Is(err, tt.want) {
				t.Fatalf("NewEngine() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameLargerThanMaxRejected(t *testing.T) {
	e := newTestEngine(t, sineFiles(t), voice.WithMaxFrameSize(512))

	if _, _, err := e.AddReader("ref", "ref"); !errors.Is(err, voice.ErrFrameSize) {
		t.Fatalf("AddReader() error = %v, want %v", err, voice.ErrFrameSize)
	}
}

func TestUninitializedVoices(t *testing.T) {
	out := []float64{1, 2, 3}

	var v voice.Interp
	if err := v.Process(out, voice.DefaultInterpControls()); !errors.Is(err, voice.ErrNotInitialized) {
		t.Fatalf("Process() error = %v, want %v", err, voice.ErrNotInitialized)
	}

	testutil.RequireAllZero(t, out)

	var c voice.Cross
	if err := c.Process(out, voice.DefaultCrossControls()); !errors.Is(err, voice.ErrNotInitialized) {
		t.Fatalf("Process() error = %v, want %v", err, voice.ErrNotInitialized)
	}
}

func TestDependentBeforeReaderFails(t *testing.T) {
	e := newTestEngine(t, sineFiles(t))

	h, _, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	v, err := e.AddInterp("interp", "drive", h)
	if err != nil {
		t.Fatalf("AddInterp() error = %v", err)
	}

	if err := v.Process(make([]float64, testBlock), voice.DefaultInterpControls()); !errors.Is(err, voice.ErrNotInitialized) {
		t.Fatalf("Process() error = %v, want %v", err, voice.ErrNotInitialized)
	}
}

func TestSampleRateMismatchWarns(t *testing.T) {
	files := sineFiles(t)
	files["slow"] = testutil.SineFile(t, testFrame, 10, 22050, testBin, 1)

	var logs bytes.Buffer
	rec := &recorder{}

	e := newTestEngine(t, files,
		voice.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		voice.WithObserver(rec))

	h, _, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	if _, err := e.AddInterp("v", "slow", h); err != nil {
		t.Fatalf("AddInterp() error = %v", err)
	}

	if !strings.Contains(logs.String(), "sample rate mismatch") || !strings.Contains(logs.String(), "file_rate=22050") {
		t.Fatalf("log = %q, want sample rate mismatch warning", logs.String())
	}

	if len(rec.warnings) != 1 || rec.warnings[0] != voice.ReasonSampleRateMismatch {
		t.Fatalf("warnings = %v", rec.warnings)
	}
}

func TestTimeTruncationReportedOnce(t *testing.T) {
	var logs bytes.Buffer
	rec := &recorder{}

	e := newTestEngine(t, sineFiles(t),
		voice.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		voice.WithObserver(rec))

	h, rd, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	v, err := e.AddInterp("interp", "drive", h)
	if err != nil {
		t.Fatalf("AddInterp() error = %v", err)
	}

	outs := [][]float64{make([]float64, testBlock)}
	for i := range 4 {
		rd.SetControls(voice.ReadControls{Time: 100 + float64(i)})
		ctrl := voice.DefaultInterpControls()
		ctrl.Time = 100 + float64(i)
		v.SetControls(ctrl)

		if err := e.Process(outs); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}

	// One notice per fetcher: the reader's and the voice's own.
	if rec.clamped != 2 {
		t.Fatalf("clamped = %d, want 2", rec.clamped)
	}

	if n := strings.Count(logs.String(), "time pointer truncated"); n != 2 {
		t.Fatalf("truncation warnings = %d, want 2", n)
	}

	if rec.rendered != 4 {
		t.Fatalf("rendered = %d, want 4", rec.rendered)
	}

	if st := v.State(); st.PastEnd != frame.Fired || st.Index != 99 {
		t.Fatalf("State() = %+v", st)
	}
}

func TestEngineProcessOutputCount(t *testing.T) {
	e := newTestEngine(t, sineFiles(t))

	if err := e.Process([][]float64{make([]float64, testBlock)}); err == nil {
		t.Fatal("Process() with extra buffers expected error")
	}
}

func TestEngineReportsFirstBlockError(t *testing.T) {
	rec := &recorder{}
	e := newTestEngine(t, sineFiles(t), voice.WithObserver(rec))

	h, rd, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	if _, err := e.AddInterp("a", "drive", h); err != nil {
		t.Fatalf("AddInterp() error = %v", err)
	}

	if _, err := e.AddCross("b", "drive", h, 0); err != nil {
		t.Fatalf("AddCross() error = %v", err)
	}

	rd.SetControls(voice.ReadControls{Time: -1})

	outs := [][]float64{make([]float64, testBlock), make([]float64, testBlock)}

	err = e.Process(outs)
	if !errors.Is(err, voice.ErrInvalidTime) || !voice.IsBlockError(err) {
		t.Fatalf("Process() error = %v, want reader ErrInvalidTime", err)
	}

	// The reader failure leaves both dependents without a frame.
	if len(rec.failed) != 3 {
		t.Fatalf("failed = %d, want 3", len(rec.failed))
	}

	if !errors.Is(rec.failed[1], voice.ErrNotInitialized) {
		t.Fatalf("dependent failure = %v, want %v", rec.failed[1], voice.ErrNotInitialized)
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t, sineFiles(t))

	h, rd, err := e.AddReader("ref", "ref")
	if err != nil {
		t.Fatalf("AddReader() error = %v", err)
	}

	v, err := e.AddInterp("interp", "drive", h)
	if err != nil {
		t.Fatalf("AddInterp() error = %v", err)
	}

	c, err := e.AddCross("cross", "drive", h, 3)
	if err != nil {
		t.Fatalf("AddCross() error = %v", err)
	}

	ctrl := voice.DefaultInterpControls()
	ctrl.Time = 0.05
	ctrl.Pitch = 1.25
	v.SetControls(ctrl)
	c.SetControls(voice.CrossControls{Time: 0.05, Pitch: 0.8, AmpScaleA: 1, AmpScaleB: 1})
	rd.SetControls(voice.ReadControls{Time: 0.05})

	outs := [][]float64{make([]float64, testBlock), make([]float64, testBlock)}

	for range 6 {
		if err := e.Process(outs); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}

	allocs := testing.AllocsPerRun(30, func() {
		if err := e.Process(outs); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	})
	if allocs != 0 {
		t.Fatalf("Process() allocs = %v, want 0", allocs)
	}
}
