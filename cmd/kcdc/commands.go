package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kauai/kcdc"
	"github.com/kauai/kcdc/internal/refcodec"
)

func CommandEncode(c *kcdc.Codec, f kcdc.Format, in, out string) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	dst := make([]byte, kcdc.MaxEncodedLen(len(src)))
	n, err := c.Encode(f, src, dst)
	if err != nil {
		return err
	}
	log.Info().Stringer("format", f).Int("in", len(src)).Int("out", n).
		Uint32("xxh32", refcodec.Checksum(src)).Msg("encoded")
	return os.WriteFile(out, dst[:n], 0o644)
}

// CommandDecode decompresses in. The streams carry no size, so unless size
// is given the output buffer starts at 4 times the input and doubles until
// the data fits.
func CommandDecode(c *kcdc.Codec, f kcdc.Format, in, out string, size int) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = min(4*len(src), kcdc.MaxBufferSize)
	}
	for {
		dst := make([]byte, size)
		n, err := c.Decode(f, src, dst)
		if err == nil {
			log.Info().Stringer("format", f).Int("in", len(src)).Int("out", n).
				Uint32("xxh32", refcodec.Checksum(dst[:n])).Msg("decoded")
			return os.WriteFile(out, dst[:n], 0o644)
		}
		if !errors.Is(err, kcdc.ErrOutputOverrun) || size >= kcdc.MaxBufferSize {
			return err
		}
		size = min(max(2*size, 1<<10), kcdc.MaxBufferSize)
		log.Debug().Int("size", size).Msg("output buffer too small, retrying")
	}
}

func CommandTokens(in string, t kcdc.TextEncoder) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	var q kcdc.HashChain
	matches := q.FindMatches(nil, src)
	text := t.Encode(nil, src, matches)
	text = append(text, '\n')
	_, err = os.Stdout.Write(text)
	return err
}

// A result is the outcome of one codec on one file.
type result struct {
	codec      string
	size       int
	compressed int
	elapsed    time.Duration
}

func (r result) ratio() float64 {
	return float64(r.compressed) / float64(r.size)
}

// CommandCompare runs every codec over every file, checking each round
// trip against the xxHash32 of the input, and prints the totals per codec.
func CommandCompare(files []string, chartPath string) error {
	codecs, err := refcodec.All()
	if err != nil {
		return err
	}
	totals := make([]result, len(codecs))
	for i, c := range codecs {
		totals[i].codec = c.Name()
	}

	var buf, back []byte
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if len(src) == 0 || len(src) > kcdc.MaxBufferSize {
			log.Warn().Str("file", name).Int("size", len(src)).Msg("skipped")
			continue
		}
		sum := refcodec.Checksum(src)
		for i, c := range codecs {
			start := time.Now()
			buf, err = c.Compress(buf, src)
			if errors.Is(err, refcodec.ErrIncompressible) || errors.Is(err, kcdc.ErrIncompressible) {
				// Stored uncompressed.
				buf = append(buf[:0], src...)
				totals[i].size += len(src)
				totals[i].compressed += len(src)
				continue
			}
			if err != nil {
				return fmt.Errorf("%s: %s: %w", name, c.Name(), err)
			}
			back, err = c.Decompress(back, buf, len(src))
			if err != nil {
				return fmt.Errorf("%s: %s: decompress: %w", name, c.Name(), err)
			}
			if got := refcodec.Checksum(back); got != sum {
				return fmt.Errorf("%s: %s: round trip checksum %08x, want %08x", name, c.Name(), got, sum)
			}
			totals[i].elapsed += time.Since(start)
			totals[i].size += len(src)
			totals[i].compressed += len(buf)
			log.Debug().Str("file", name).Str("codec", c.Name()).Int("in", len(src)).Int("out", len(buf)).Msg("compared")
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "codec\tinput\toutput\tratio\ttime\t")
	for _, r := range totals {
		if r.size == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%v\t\n", r.codec, r.size, r.compressed, r.ratio(), r.elapsed.Round(time.Microsecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if chartPath != "" {
		return ratioChart(chartPath, totals)
	}
	return nil
}
