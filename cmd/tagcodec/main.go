package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/tagcodec/codec"
	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/memory"
)

func main() {
	var (
		typesFile   = flag.String("types", "", "Path to a YAML type table")
		witFile     = flag.String("wit", "", "Path to a WIT resolve in JSON form (wasm-tools component wit --json)")
		triple      = flag.String("target", "", "Target triple (default: table target, else aarch64-unknown-linux-ohos)")
		list        = flag.Bool("list", false, "List types with their layouts and exit")
		typeName    = flag.String("type", "", "Type to operate on")
		encodeVar   = flag.String("encode", "", "Write a variant (name or index) and print its tag")
		decodeHex   = flag.String("decode", "", "Read the variant of a value given as hex bytes")
		roundTrip   = flag.Bool("roundtrip", false, "Write then read every inhabited variant")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *typesFile == "" && *witFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: tagcodec -types <table.yaml> [-target triple] -list")
		fmt.Fprintln(os.Stderr, "       tagcodec -types <table.yaml> -type Name -encode Variant")
		fmt.Fprintln(os.Stderr, "       tagcodec -types <table.yaml> -type Name -decode 0a000000")
		fmt.Fprintln(os.Stderr, "       tagcodec -types <table.yaml> [-type Name] -roundtrip")
		fmt.Fprintln(os.Stderr, "       tagcodec -wit <resolve.json> -i  (interactive mode)")
		os.Exit(1)
	}

	log := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log = l
	}
	defer func() { _ = log.Sync() }()
	layout.SetLogger(log.Named("layout"))
	memory.SetLogger(log.Named("memory"))
	codec.SetLogger(log.Named("codec"))

	tbl, source, err := loadTable(*typesFile, *witFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s, err := newSession(tbl, *triple, source, log.Named("codec"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(s, *typeName, *encodeVar, *decodeHex, *list, *roundTrip); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", describeFailure(err))
		os.Exit(1)
	}
}

func run(s *session, typeName, encodeVar, decodeHex string, listOnly, roundTrip bool) error {
	out := os.Stdout

	if listOnly {
		return s.list(out)
	}

	if roundTrip {
		var names []string
		if typeName != "" {
			names = strings.Split(typeName, ",")
		}
		results, err := s.roundTrip(names)
		if err != nil {
			return err
		}
		if failed := printRoundTrip(out, results); failed > 0 {
			return fmt.Errorf("%d of %d variants failed to round-trip", failed, len(results))
		}
		return nil
	}

	if typeName == "" {
		return fmt.Errorf("-type is required with -encode and -decode")
	}
	switch {
	case encodeVar != "":
		return s.encode(out, typeName, encodeVar)
	case decodeHex != "":
		return s.decode(out, typeName, decodeHex)
	}
	return s.list(out)
}
