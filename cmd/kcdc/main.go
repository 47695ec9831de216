// Command kcdc compresses and decompresses files with the Kauai codecs, and
// compares them against other block compressors.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/kauai/kcdc"
	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
	Level(zerolog.InfoLevel).With().Timestamp().Logger()

type CliCommand struct {
	fn       func(args []string) error
	flagset  *flag.FlagSet
	argsdesc string // argument description
	desc     string
}

func PrintCmdUsage(name string, cmd CliCommand) {
	fmt.Printf("%s %s - %s\n", name, cmd.argsdesc, cmd.desc)
	cmd.flagset.PrintDefaults()
}

func PrintUsage(commands map[string]CliCommand) {
	fmt.Println()
	fmt.Println("Usage: kcdc <command> [arguments]")
	fmt.Println("Commands available:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("    %-10s %s\n", name, commands[name].desc)
	}
}

// errUsage is returned by a command whose arguments are wrong; main prints
// the command's usage for it.
var errUsage = errors.New("bad arguments")

func main() {
	encodeFlags := flag.NewFlagSet("encode", flag.ExitOnError)
	decodeFlags := flag.NewFlagSet("decode", flag.ExitOnError)
	tokensFlags := flag.NewFlagSet("tokens", flag.ExitOnError)
	compareFlags := flag.NewFlagSet("compare", flag.ExitOnError)
	helpFlags := flag.NewFlagSet("help", flag.ExitOnError)

	verbose := false
	for _, fs := range []*flag.FlagSet{encodeFlags, decodeFlags, tokensFlags, compareFlags} {
		fs.BoolVar(&verbose, "v", false, "log debug output")
	}
	encodeFormat := encodeFlags.String("format", "kauai2", "output format (kauai|kauai2)")
	encodeFast := encodeFlags.Bool("fast", false, "use the single-probe hash match finder")
	decodeFormat := decodeFlags.String("format", "kauai2", "input format (kauai|kauai2)")
	decodeSize := decodeFlags.Int("size", 0, "decompressed size, if known (default: grow the buffer until the data fits)")
	decodeBitLoop := decodeFlags.Bool("bitloop", false, "use the bit-loop decoder instead of the phase tables")
	tokensQuote := tokensFlags.Bool("quote", false, "quote literal runs")
	tokensClasses := tokensFlags.Bool("classes", false, "show the offset class of each match")
	compareChart := compareFlags.String("chart", "", "write an SVG bar chart of the ratios to this file")

	var commands map[string]CliCommand

	parse := func(fs *flag.FlagSet, args []string) []string {
		fs.Parse(args)
		if verbose {
			log = log.Level(zerolog.DebugLevel)
		}
		return fs.Args()
	}

	cmdEncode := func(args []string) error {
		files := parse(encodeFlags, args)
		if len(files) != 2 {
			return errUsage
		}
		f, err := kcdc.ParseFormat(*encodeFormat)
		if err != nil {
			return err
		}
		opts := kcdc.DefaultOptions()
		opts.Logger = log
		opts.Fast = *encodeFast
		return CommandEncode(kcdc.New(opts), f, files[0], files[1])
	}

	cmdDecode := func(args []string) error {
		files := parse(decodeFlags, args)
		if len(files) != 2 {
			return errUsage
		}
		f, err := kcdc.ParseFormat(*decodeFormat)
		if err != nil {
			return err
		}
		opts := kcdc.DefaultOptions()
		opts.Logger = log
		if *decodeBitLoop {
			opts.Interpreter = kcdc.BitLoop
		}
		return CommandDecode(kcdc.New(opts), f, files[0], files[1], *decodeSize)
	}

	cmdTokens := func(args []string) error {
		files := parse(tokensFlags, args)
		if len(files) != 1 {
			return errUsage
		}
		return CommandTokens(files[0], kcdc.TextEncoder{Quote: *tokensQuote, Classes: *tokensClasses})
	}

	cmdCompare := func(args []string) error {
		files := parse(compareFlags, args)
		if len(files) == 0 {
			return errUsage
		}
		return CommandCompare(files, *compareChart)
	}

	cmdHelp := func(args []string) error {
		helpFlags.Parse(args)
		names := helpFlags.Args()
		if len(names) == 0 {
			PrintUsage(commands)
			return nil
		}
		cmd, ok := commands[names[0]]
		if !ok {
			PrintUsage(commands)
			return fmt.Errorf("unknown command %q", names[0])
		}
		PrintCmdUsage(names[0], cmd)
		return nil
	}

	commands = map[string]CliCommand{
		"encode":  {cmdEncode, encodeFlags, "<input> <output>", "compress a file"},
		"decode":  {cmdDecode, decodeFlags, "<input> <output>", "decompress a file"},
		"tokens":  {cmdTokens, tokensFlags, "<input>", "print the LZ77 token stream of a file"},
		"compare": {cmdCompare, compareFlags, "<input>...", "compare compression ratios with other codecs"},
		"help":    {cmdHelp, helpFlags, "[command]", "list commands or describe a single command"},
	}

	if len(os.Args) < 2 {
		fmt.Println("error: expected a command")
		PrintUsage(commands)
		os.Exit(1)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Printf("error: unknown command %q\n", name)
		PrintUsage(commands)
		os.Exit(1)
	}
	if err := cmd.fn(os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			PrintCmdUsage(name, cmd)
			os.Exit(2)
		}
		log.Error().Err(err).Str("command", name).Msg("failed")
		os.Exit(1)
	}
}
