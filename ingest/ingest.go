// Package ingest reads conversion files and rate feeds and turns them into graphs.
//
// A conversion file looks like
//
//	EUR;550;JPY
//	6
//	AUD;CHF;0.9661
//	JPY;KRW;13.1151
//	...
//
// The first line is source;amount;destination, the second the number of rate
// lines that follow, and every rate line is from;to;rate with '.' as decimal
// separator.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"go-exchange-rate-graph/domain"
	"go-exchange-rate-graph/graph"
	"io"
	"os"
	"strconv"
	"strings"
)

const separator = ";"

// ErrMalformed wrapped by every validation failure
var ErrMalformed = errors.New("malformed conversion file")

// LineError a validation failure on one line, numbered from 1
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Request the conversion asked for by a file
type Request struct {
	From   domain.Currency
	To     domain.Currency
	Amount domain.Amount
}

// Record one exchange rate. Line is 0 when the record did not come from a file.
type Record struct {
	From domain.Currency
	To   domain.Currency
	Rate domain.Rate
	Line int
}

// Document a parsed conversion file
type Document struct {
	Request Request
	Records []Record
}

// ParseFile opens and parses a conversion file
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open conversion file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a conversion file. Every problem found is reported, joined in line order.
func Parse(r io.Reader) (*Document, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading conversion file: %w", err)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var errs []error
	fail := func(line int, format string, args ...interface{}) {
		errs = append(errs, &LineError{Line: line, Err: fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformed}, args...)...)})
	}

	if len(lines) < 3 {
		errs = append(errs, fmt.Errorf("%w: expected at least 3 lines, got %d", ErrMalformed, len(lines)))
	}

	doc := &Document{}
	if len(lines) > 0 {
		request, err := parseRequest(lines[0])
		if err != nil {
			fail(1, "%v", err)
		}
		doc.Request = request
	}

	if len(lines) > 1 {
		count, err := strconv.Atoi(lines[1])
		switch {
		case err != nil:
			fail(2, "expected the number of rate lines, got %q", lines[1])
		case count != len(lines)-2:
			fail(2, "announced %d rate lines, found %d", count, len(lines)-2)
		}
	}

	for i := 2; i < len(lines); i++ {
		record, err := parseRecord(lines[i])
		if err != nil {
			fail(i+1, "%v", err)
			continue
		}
		record.Line = i + 1
		doc.Records = append(doc.Records, record)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return doc, nil
}

// parseRequest source;amount;destination with a strictly positive whole amount
func parseRequest(line string) (Request, error) {
	fields := strings.Split(line, separator)
	if len(fields) != 3 {
		return Request{}, fmt.Errorf("expected source;amount;destination, got %q", line)
	}
	from, err := domain.ParseCurrency(fields[0])
	if err != nil {
		return Request{}, err
	}
	to, err := domain.ParseCurrency(fields[2])
	if err != nil {
		return Request{}, err
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil || amount <= 0 {
		return Request{}, fmt.Errorf("amount must be a positive whole number, got %q", fields[1])
	}
	return Request{From: from, To: to, Amount: decimal.NewFromInt(amount)}, nil
}

// parseRecord from;to;rate with a rate that stays positive at domain.Precision places
func parseRecord(line string) (Record, error) {
	fields := strings.Split(line, separator)
	if len(fields) != 3 {
		return Record{}, fmt.Errorf("expected from;to;rate, got %q", line)
	}
	from, err := domain.ParseCurrency(fields[0])
	if err != nil {
		return Record{}, err
	}
	to, err := domain.ParseCurrency(fields[1])
	if err != nil {
		return Record{}, err
	}
	rate, err := ParseRate(fields[2])
	if err != nil {
		return Record{}, err
	}
	return Record{From: from, To: to, Rate: rate}, nil
}

// ParseRate parses an unsigned decimal using '.' as separator. The rate must
// not round to zero at domain.Precision places.
func ParseRate(s string) (domain.Rate, error) {
	s = strings.TrimSpace(s)
	if !isPlainDecimal(s) {
		return decimal.Zero, fmt.Errorf("rate must be a decimal number, got %q", s)
	}
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate %q: %w", s, err)
	}
	if !domain.Round(rate).IsPositive() {
		return decimal.Zero, fmt.Errorf("rate must be positive, got %q", s)
	}
	return rate, nil
}

// isPlainDecimal digits with at most one '.', no sign or exponent
func isPlainDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// Build registers every record, with its reversal, in a new graph.
func Build(records []Record) (*graph.Graph, error) {
	g := graph.New()
	for _, r := range records {
		if err := g.AddExchange(r.From, r.To, r.Rate); err != nil {
			if r.Line > 0 {
				return nil, &LineError{Line: r.Line, Err: err}
			}
			return nil, fmt.Errorf("register %v -> %v: %w", r.From, r.To, err)
		}
	}
	return g, nil
}

// Load builds the graph of a document and configures its conversion. Request
// currencies missing from the rates are still registered, leaving them without
// a route.
func Load(doc *Document) (*graph.Graph, error) {
	g, err := Build(doc.Records)
	if err != nil {
		return nil, err
	}
	g.Node(doc.Request.From)
	g.Node(doc.Request.To)
	if err := g.SetSource(doc.Request.From); err != nil {
		return nil, err
	}
	if err := g.SetDestination(doc.Request.To); err != nil {
		return nil, err
	}
	if err := g.SetAmount(doc.Request.Amount); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFile parses a conversion file and loads it
func LoadFile(path string) (*graph.Graph, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Load(doc)
}
