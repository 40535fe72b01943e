package main

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/shopspring/decimal"
	"go-exchange-rate-graph/domain"
	"go-exchange-rate-graph/graph"
	"go-exchange-rate-graph/ingest"
	"io"
	"os"
	"strings"
)

const usage = `Commands:
  M <amount>   set a new amount, e.g. M 2500
  D <currency> set a new source currency, e.g. D USD
  A <currency> set a new destination currency, e.g. A EUR
  F <path>     load another conversion file and convert it
  C            convert with the current settings
  Q            quit`

// session interactive conversions on the graph of the last loaded file
type session struct {
	graph  *graph.Graph
	out    io.Writer
	logger log.Logger
}

// convertFile loads a conversion file and converts its request
func convertFile(path string, logger log.Logger) (int64, error) {
	g, err := ingest.LoadFile(path)
	if err != nil {
		return 0, err
	}
	level.Debug(logger).Log("msg", "loaded conversion file", "path", path, "currencies", g.Len(), "edges", len(g.Edges()))
	return convert(g)
}

// convert runs the configured conversion of g
func convert(g *graph.Graph) (int64, error) {
	if !g.FindRoute() {
		from, _ := g.Source()
		to, _ := g.Destination()
		return 0, fmt.Errorf("no conversion possible from %v to %v: %w", from, to, graph.ErrNoRoute)
	}
	return g.Convert()
}

// load replaces the session graph with the one of path and converts it.
// The previous graph is kept when the file is invalid.
func (s *session) load(path string) {
	g, err := ingest.LoadFile(path)
	if err != nil {
		fmt.Fprintf(s.out, "cannot load %v:\n%v\n", path, err)
		return
	}
	level.Debug(s.logger).Log("msg", "loaded conversion file", "path", path, "currencies", g.Len(), "edges", len(g.Edges()))
	s.graph = g
	s.convert()
}

func (s *session) convert() {
	amount, err := convert(s.graph)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	fmt.Fprintln(s.out, amount)
}

// execute runs one command line and reports whether the session is over.
func (s *session) execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	command := strings.ToUpper(line[:1])
	arg := strings.TrimSpace(line[1:])

	if s.graph == nil && command != "F" && command != "Q" {
		fmt.Fprintln(s.out, "no conversion file loaded, use F <path>")
		return false
	}

	switch command {
	case "M":
		amount, err := decimal.NewFromString(arg)
		if err != nil {
			fmt.Fprintf(s.out, "not an amount: %q\n", arg)
			return false
		}
		if err := s.graph.SetAmount(amount); err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		fmt.Fprintf(s.out, "new amount: %v\n", amount)
	case "D", "A":
		currency, err := domain.ParseCurrency(arg)
		if err != nil {
			fmt.Fprintln(s.out, "a currency is three letters, e.g. EUR")
			return false
		}
		if command == "D" {
			err = s.graph.SetSource(currency)
		} else {
			err = s.graph.SetDestination(currency)
		}
		switch {
		case errors.Is(err, graph.ErrUnknownCurrency):
			fmt.Fprintf(s.out, "%v is not in the loaded exchange rates\n", currency)
			return false
		case err != nil:
			fmt.Fprintln(s.out, err)
			return false
		}
		fmt.Fprintf(s.out, "new currency: %v\n", currency)
	case "F":
		s.load(arg)
	case "C":
		s.convert()
	case "Q":
		return true
	default:
		fmt.Fprintf(s.out, "unknown command %q\n%v\n", line, usage)
	}
	return false
}

// runInteractive asks for a file until one exists, converts it and then reads
// commands from in until Q or end of input.
func runInteractive(in io.Reader, out io.Writer, logger log.Logger, path string) error {
	scanner := bufio.NewScanner(in)
	s := &session{out: out, logger: logger}

	for path == "" || !exists(path) {
		if path != "" {
			fmt.Fprintf(out, "no such file: %v\n", path)
		}
		fmt.Fprintln(out, "conversion file path:")
		if !scanner.Scan() {
			return scanner.Err()
		}
		path = strings.TrimSpace(scanner.Text())
	}

	s.load(path)
	fmt.Fprintln(out, usage)

	for scanner.Scan() {
		if s.execute(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
