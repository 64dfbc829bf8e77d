// Command pvinfo prints the analysis parameters of PVOC-EX files.
//
// Usage:
//
//	pvinfo [flags] file.pvx ...
//
// Examples:
//
//	pvinfo voice.pvx
//	pvinfo -peaks 5 bank/*.pvx
//	pvinfo -dir bank
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/cwbudde/algo-pvoc/dsp/window"
	"github.com/cwbudde/algo-pvoc/pvoc/frame"
	"github.com/cwbudde/algo-pvoc/pvoc/pvocex"
)

type entry struct {
	path string
	file *frame.File
	meta pvocex.Meta
}

func main() {
	peaks := flag.Int("peaks", 0, "list the N strongest bins of the mean spectrum per file")
	dir := flag.String("dir", "", "load every .pvx file in this directory")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pvinfo [flags] file.pvx ...\n\n")
		fmt.Fprintf(os.Stderr, "Prints analysis parameters of PVOC-EX files.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if *dir != "" {
		bank, err := pvocex.LoadDir(context.Background(), *dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		for _, name := range bank.Names() {
			paths = append(paths, filepath.Join(*dir, name))
		}
	}

	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var entries []entry
	for _, p := range paths {
		f, meta, err := pvocex.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		entries = append(entries, entry{p, f, meta})
	}

	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "error: no readable files\n")
		os.Exit(1)
	}

	if err := printHeaders(os.Stdout, entries); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *peaks > 0 {
		for _, e := range entries {
			if err := printPeaks(os.Stdout, e, *peaks); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
		}
	}
}

func printHeaders(out io.Writer, entries []entry) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "File\tFrame\tBins\tOverlap\tRate [Hz]\tFrames\tDuration [s]\tWindow\tWinLen\tCoherent Gain\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "----\t-----\t----\t-------\t---------\t------\t------------\t------\t------\t-------------\n"); err != nil {
		return err
	}

	for _, e := range entries {
		hdr := e.file.Header()

		gain := "-"
		if typ, ok := pvocex.WindowType(hdr.WindowType); ok && hdr.WindowLength > 0 {
			gain = fmt.Sprintf("%.4f", coherentGain(window.Generate(typ, hdr.WindowLength)))
		}

		if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.0f\t%d\t%.3f\t%s\t%d\t%s\n",
			filepath.Base(e.path),
			hdr.FrameSize,
			hdr.Bins(),
			hdr.Overlap,
			hdr.SampleRate,
			e.file.FrameCount(),
			e.file.Duration(),
			pvocex.WindowName(hdr.WindowType),
			hdr.WindowLength,
			gain,
		); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func coherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	return sum / float64(len(coeffs))
}

type peak struct {
	bin  int
	amp  float64
	freq float64
}

// meanPeaks averages amplitudes and frequencies over all frames and returns
// the n strongest bins, loudest first.
func meanPeaks(f *frame.File, n int) []peak {
	bins := f.Header().Bins()
	sums := make([]peak, bins)

	for i := range f.FrameCount() {
		fr := f.Frame(i)
		for k := range bins {
			sums[k].amp += float64(fr[2*k])
			sums[k].freq += float64(fr[2*k+1])
		}
	}

	frames := float64(f.FrameCount())
	for k := range sums {
		sums[k].bin = k
		sums[k].amp /= frames
		sums[k].freq /= frames
	}

	sort.SliceStable(sums, func(i, j int) bool { return sums[i].amp > sums[j].amp })

	return sums[:min(n, len(sums))]
}

func printPeaks(out io.Writer, e entry, n int) error {
	if _, err := fmt.Fprintf(out, "\n%s\n", filepath.Base(e.path)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Bin\tAmplitude\tFrequency [Hz]\n"); err != nil {
		return err
	}
	for _, p := range meanPeaks(e.file, n) {
		if _, err := fmt.Fprintf(tw, "%d\t%.6f\t%.2f\n", p.bin, p.amp, p.freq); err != nil {
			return err
		}
	}
	return tw.Flush()
}
