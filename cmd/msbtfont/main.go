// Command msbtfont builds MisbitFont images from a built-in bitmap face and
// previews them on an indexed surface.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/misbitfont/msbtfont"
	"github.com/misbitfont/msbtfont/internal/debug"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// flagValues holds the raw command line. Only flags the user actually set
// override the config file.
type flagValues struct {
	configPath  string
	inputPath   string
	imagePath   string
	outPath     string
	bpp         int
	first       string
	last        string
	name        string
	lang        string
	variable    bool
	charsPerRow int
	startOffset int
	format      string
	origin      string
	verbose     bool
	showVersion bool
	showHelp    bool
	debugMode   bool
	debugFile   string
	debugPretty bool
}

func newFlagSet(v *flagValues) *pflag.FlagSet {
	fs := pflag.NewFlagSet("msbtfont", pflag.ContinueOnError)
	fs.StringVarP(&v.configPath, "config", "c", "", "YAML font descriptor")
	fs.StringVarP(&v.inputPath, "input", "i", "", "Load an existing font image instead of building one")
	fs.StringVar(&v.imagePath, "image", "", "Write the font image to this file")
	fs.StringVarP(&v.outPath, "out", "o", "", "Write a BMP preview of the surface to this file")
	fs.IntVarP(&v.bpp, "bpp", "b", defaultBitsPerPixel, "Bits per pixel (1-8)")
	fs.StringVar(&v.first, "first", defaultFirst, "First rune of the glyph range")
	fs.StringVar(&v.last, "last", defaultLast, "Last rune of the glyph range")
	fs.StringVar(&v.name, "name", defaultName, "Font name stored in the header")
	fs.StringVar(&v.lang, "lang", defaultLanguage, "BCP 47 language tag stored in the header")
	fs.BoolVar(&v.variable, "variable", false, "Store per-glyph advance widths")
	fs.IntVarP(&v.charsPerRow, "chars-per-row", "r", defaultCharsPerRow, "Glyphs per surface row")
	fs.IntVar(&v.startOffset, "start-offset", 0, "Glyph cells to skip before the first glyph")
	fs.StringVar(&v.format, "format", defaultFormat, "Surface format: indexed8, indexed16, indexed24, indexed32")
	fs.StringVar(&v.origin, "origin", defaultOrigin, "Surface origin: upper-left, lower-left")
	fs.BoolVarP(&v.verbose, "verbose", "V", false, "Log library activity to stderr")
	fs.BoolVarP(&v.showVersion, "version", "v", false, "Show version information")
	fs.BoolVarP(&v.showHelp, "help", "h", false, "Show help message")
	fs.BoolVar(&v.debugMode, "debug", false, "Enable blit tracing (outputs to stderr)")
	fs.StringVar(&v.debugFile, "debug-file", "", "Write blit trace to file instead of stderr")
	fs.BoolVar(&v.debugPretty, "debug-pretty", false, "Use pretty format for the trace (default: JSON)")
	return fs
}

func run(args []string, stdout, stderr io.Writer) int {
	var v flagValues
	fs := newFlagSet(&v)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if v.showHelp {
		printHelp(stdout, fs)
		return 0
	}
	if v.showVersion {
		fmt.Fprintf(stdout, "msbtfont version %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments: %v\n", fs.Args())
		return 2
	}

	if v.verbose {
		msbtfont.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer msbtfont.SetLogger(nil)
	}

	cfg := defaultConfig()
	if v.configPath != "" {
		loaded, err := loadConfig(v.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	applyFlags(&cfg, fs, &v)

	surfaceOpts, err := cfg.Surface.resolve()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var font *msbtfont.Font
	if v.inputPath != "" {
		font, err = loadFontFile(v.inputPath)
	} else {
		font, err = buildFont(cfg)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if v.imagePath != "" {
		if err := writeFontImage(v.imagePath, font); err != nil {
			fmt.Fprintf(stderr, "Error writing font image: %v\n", err)
			return 1
		}
	}

	session, closeDebug, err := openDebug(&v, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeDebug()

	pv, err := renderPreview(font, surfaceOpts, session)
	if err != nil {
		fmt.Fprintf(stderr, "Error rendering surface: %v\n", err)
		return 1
	}

	if v.outPath != "" {
		if err := writeBMP(v.outPath, pv.toImage()); err != nil {
			fmt.Fprintf(stderr, "Error writing preview: %v\n", err)
			return 1
		}
	}

	printSummary(stdout, font, pv)
	return 0
}

// openDebug creates a trace session when tracing was requested on the
// command line or through the environment. The returned func closes the
// session and any trace file.
func openDebug(v *flagValues, stderr io.Writer) (*debug.Session, func(), error) {
	envOn, envPretty := debug.FromEnv()
	if !v.debugMode && v.debugFile == "" && !envOn {
		return nil, func() {}, nil
	}
	debug.SetEnabled(true)

	output := stderr
	var file *os.File
	if v.debugFile != "" {
		f, err := os.Create(v.debugFile)
		if err != nil {
			return nil, nil, fmt.Errorf("creating debug file: %w", err)
		}
		file = f
		output = f
	}

	var sink debug.Sink
	if v.debugPretty || envPretty {
		sink = debug.NewPrettySink(output)
	} else {
		sink = debug.NewJSONSink(output)
	}
	session := debug.NewSession(sink)

	return session, func() {
		session.Close()
		if file != nil {
			file.Close()
		}
	}, nil
}

func printSummary(w io.Writer, f *msbtfont.Font, p *preview) {
	m, err := f.Metrics()
	if err != nil {
		return
	}
	name := f.Header.FontName()
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "%s: %d glyphs, %dx%d cells, %d bpp, %d bytes\n",
		name, m.GlyphCount, m.GlyphWidth, m.GlyphHeight, m.BitsPerPixel, f.Data.Size())
	fmt.Fprintf(w, "surface: %dx%d %s/%s, %d bytes\n",
		p.desc.Rect.Width, p.desc.Rect.Height, p.desc.Format, p.desc.Origin, len(p.buf))
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "msbtfont - MisbitFont builder and previewer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  msbtfont [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rune formats for --first and --last:")
	fmt.Fprintln(w, "  Literal: --first 'A'")
	fmt.Fprintln(w, "  Unicode escape: --first '\\u0041'")
	fmt.Fprintln(w, "  Unicode notation: --first 'U+0041'")
	fmt.Fprintln(w, "  Decimal: --first '65'")
	fmt.Fprintln(w, "  Hexadecimal: --first '0x41'")
}
