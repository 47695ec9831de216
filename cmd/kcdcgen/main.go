// Command kcdcgen prints the decoding program generated for a Kauai format:
// one labelled block of transitions for each bit phase.
package main

import (
	"flag"
	"os"

	"github.com/kauai/kcdc"
	"github.com/rs/zerolog"
)

func main() {
	format := flag.String("format", "kauai", "format to generate (kauai|kauai2)")
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	f, err := kcdc.ParseFormat(*format)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -format")
	}
	p, err := kcdc.Generate(f)
	if err != nil {
		log.Fatal().Err(err).Stringer("format", f).Msg("generate failed")
	}

	w := os.Stdout
	if *out != "" {
		fh, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("create output")
		}
		defer fh.Close()
		w = fh
	}
	if err := p.WriteListing(w); err != nil {
		log.Fatal().Err(err).Msg("write listing")
	}
	if *out != "" {
		log.Info().Str("path", *out).Stringer("format", f).Msg("listing written")
	}
}
