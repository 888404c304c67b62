package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-relax/relax/mechanism"
)

// parseParam reads a slot setting: "off", "seed", "seed:V" or "fix:V".
func parseParam(s string) (mechanism.Param, error) {
	mode, value, hasValue := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")

	v := math.NaN()
	if hasValue {
		var err error
		v, err = strconv.ParseFloat(value, 64)
		if err != nil {
			return mechanism.Param{}, fmt.Errorf("parameter %q: %w", s, err)
		}
	}

	switch mode {
	case "off", "exclude", "excluded":
		return mechanism.Exclude(), nil
	case "seed", "free":
		return mechanism.Seed(v), nil
	case "fix", "fixed":
		if !hasValue {
			return mechanism.Param{}, fmt.Errorf("parameter %q: fixed value required", s)
		}
		return mechanism.Fix(v), nil
	default:
		return mechanism.Param{}, fmt.Errorf("parameter %q: want off, seed[:value] or fix:value", s)
	}
}

func parseParameters(specs [mechanism.NumSlots]string) (mechanism.Parameters, error) {
	var p mechanism.Parameters
	for _, s := range mechanism.Slots() {
		v, err := parseParam(specs[s])
		if err != nil {
			return mechanism.Parameters{}, fmt.Errorf("%s: %w", s, err)
		}
		p = p.With(s, v)
	}
	return p, nil
}
