package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-relax/relax/sample"
)

var errNoSamples = errors.New("no samples in input")

// readSamples parses temperature,time,moment[,field] rows. A first row that
// does not parse as numbers is treated as a header.
func readSamples(r io.Reader) ([]sample.Raw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var out []sample.Raw

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: want at least 3 columns, got %d", line, len(rec))
		}

		vals := make([]float64, 4)
		parsed := true
		for i := 0; i < len(rec) && i < 4; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				parsed = false
				break
			}
			vals[i] = v
		}

		if !parsed {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: non-numeric value in %q", line, strings.Join(rec, ","))
		}

		out = append(out, sample.Raw{
			Temperature: vals[0],
			Time:        vals[1],
			Moment:      vals[2],
			Field:       vals[3],
		})
	}

	if len(out) == 0 {
		return nil, errNoSamples
	}

	return out, nil
}
