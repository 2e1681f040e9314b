package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"os"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/csv"
	"github.com/reoring/goflat/flf"
	"github.com/reoring/goflat/jsonbridge"
	"github.com/reoring/goflat/schemafile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var cmd func(*env, []string) error
	switch args[0] {
	case "decode":
		cmd = decodeCmd
	case "encode":
		cmd = encodeCmd
	case "minlen":
		cmd = minlenCmd
	case "validate":
		cmd = validateCmd
	default:
		usage(stderr)
		return 2
	}
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	if err := cmd(e, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintf(stderr, "goflat %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "goflat CLI\n\nUsage:\n  goflat decode -schema doc.yaml [-format csv|flf] [-in file] [-o file] [-keep-going] [-v]\n  goflat encode -schema doc.yaml [-format csv|flf] [-in file] [-o file] [-v]\n  goflat minlen -schema doc.yaml\n  goflat validate -schema doc.yaml [-format csv|flf]\n\nNotes:\n  - decode writes one JSON object per record; encode reads JSON lines.")
}

var errUsage = errors.New("usage")

type env struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	verbose        bool
}

func (e *env) logf(format string, a ...any) {
	if e.verbose {
		fmt.Fprintf(e.stderr, format+"\n", a...)
	}
}

// common holds the flags shared by every subcommand.
type common struct {
	schema string
	format string
	in     string
	out    string
}

func (e *env) flags(name string, c *common, files bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringVar(&c.schema, "schema", "", "YAML schema document")
	fs.StringVar(&c.format, "format", "flf", "text format: csv or flf")
	if files {
		fs.StringVar(&c.in, "in", "", "input file (default stdin)")
		fs.StringVar(&c.out, "o", "", "output file (default stdout)")
	}
	fs.BoolVar(&e.verbose, "v", false, "enable verbose logs")
	return fs
}

func parseFlags(fs *flag.FlagSet, c *common, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if c.schema == "" {
		fs.Usage()
		return errUsage
	}
	return nil
}

// recordDecoder and recordEncoder are the parts of the csv and flf codecs the
// CLI drives.
type recordDecoder interface {
	Records() iter.Seq2[any, error]
}

type recordEncoder interface {
	Encode(v any) error
	Close() error
}

type codec struct {
	newDecoder func(s *goflat.Schema, r io.Reader) (recordDecoder, error)
	newEncoder func(w io.Writer, s *goflat.Schema) (recordEncoder, error)
	validate   func(s *goflat.Schema) error
}

func codecFor(doc *schemafile.Document, name string) (*codec, error) {
	switch name {
	case "csv":
		f, err := csv.New(doc.CSVConfig())
		if err != nil {
			return nil, err
		}
		return &codec{
			newDecoder: func(s *goflat.Schema, r io.Reader) (recordDecoder, error) { return f.NewDecoder(s, r) },
			newEncoder: func(w io.Writer, s *goflat.Schema) (recordEncoder, error) { return f.NewEncoder(w, s) },
			validate:   f.Validate,
		}, nil
	case "flf":
		f, err := flf.New(doc.FLFConfig())
		if err != nil {
			return nil, err
		}
		return &codec{
			newDecoder: func(s *goflat.Schema, r io.Reader) (recordDecoder, error) { return f.NewDecoder(s, r) },
			newEncoder: func(w io.Writer, s *goflat.Schema) (recordEncoder, error) { return f.NewEncoder(w, s) },
			validate:   f.Validate,
		}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want csv or flf)", name)
}

// record returns the schema of a single record: the element of a top-level
// list, else s itself.
func record(s *goflat.Schema) *goflat.Schema {
	if s.Kind == goflat.KindList {
		return s.Elem
	}
	return s
}

func (e *env) load(c *common) (*schemafile.Document, *codec, error) {
	doc, err := schemafile.LoadFile(c.schema)
	if err != nil {
		return nil, nil, err
	}
	e.logf("loaded schema %s: %s", c.schema, doc.Schema)
	cd, err := codecFor(doc, c.format)
	if err != nil {
		return nil, nil, err
	}
	return doc, cd, nil
}

func (e *env) input(c *common) (io.Reader, func() error, error) {
	if c.in == "" || c.in == "-" {
		return e.stdin, func() error { return nil }, nil
	}
	f, err := os.Open(c.in)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func (e *env) output(c *common) (io.Writer, func() error, error) {
	if c.out == "" || c.out == "-" {
		return e.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(c.out)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func decodeCmd(e *env, args []string) error {
	var c common
	var keepGoing bool
	fs := e.flags("decode", &c, true)
	fs.BoolVar(&keepGoing, "keep-going", false, "report bad records and continue")
	if err := parseFlags(fs, &c, args); err != nil {
		return err
	}
	doc, cd, err := e.load(&c)
	if err != nil {
		return err
	}
	in, closeIn, err := e.input(&c)
	if err != nil {
		return err
	}
	defer closeIn()
	out, closeOut, err := e.output(&c)
	if err != nil {
		return err
	}
	defer closeOut()

	rec := record(doc.Schema)
	dec, err := cd.newDecoder(rec, in)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)
	n, bad := 0, 0
	for v, err := range dec.Records() {
		if err != nil {
			if !keepGoing {
				return err
			}
			bad++
			fmt.Fprintf(e.stderr, "goflat decode: %v\n", err)
			continue
		}
		line, err := jsonbridge.Marshal(rec, v)
		if err != nil {
			return goflat.WithRecord(err, n+bad)
		}
		bw.Write(line)
		bw.WriteByte('\n')
		n++
	}
	e.logf("decoded %d records, %d rejected", n, bad)
	if err := bw.Flush(); err != nil {
		return err
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d records rejected", bad, n+bad)
	}
	return nil
}

func encodeCmd(e *env, args []string) error {
	var c common
	fs := e.flags("encode", &c, true)
	if err := parseFlags(fs, &c, args); err != nil {
		return err
	}
	doc, cd, err := e.load(&c)
	if err != nil {
		return err
	}
	in, closeIn, err := e.input(&c)
	if err != nil {
		return err
	}
	defer closeIn()
	out, closeOut, err := e.output(&c)
	if err != nil {
		return err
	}
	defer closeOut()

	rec := record(doc.Schema)
	enc, err := cd.newEncoder(out, rec)
	if err != nil {
		return err
	}
	r := jsonbridge.NewReader(in, rec)
	n := 0
	for {
		v, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
		n++
	}
	e.logf("encoded %d records", n)
	return enc.Close()
}

func minlenCmd(e *env, args []string) error {
	var c common
	fs := e.flags("minlen", &c, false)
	if err := parseFlags(fs, &c, args); err != nil {
		return err
	}
	doc, err := schemafile.LoadFile(c.schema)
	if err != nil {
		return err
	}
	n, err := flf.MinRecordLength(record(doc.Schema))
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, n)
	return nil
}

func validateCmd(e *env, args []string) error {
	var c common
	fs := e.flags("validate", &c, false)
	if err := parseFlags(fs, &c, args); err != nil {
		return err
	}
	doc, cd, err := e.load(&c)
	if err != nil {
		return err
	}
	if err := cd.validate(doc.Schema); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: ok for %s\n", c.schema, c.format)
	return nil
}
