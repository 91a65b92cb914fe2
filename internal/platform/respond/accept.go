package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. A missing or invalid q
// parameter counts as 1. A bare type such as "text" is read as "text/*".
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		mr := mediaRange{q: 1}
		typ, sub, ok := strings.Cut(strings.ToLower(strings.TrimSpace(params[0])), "/")
		if !ok {
			sub = "*"
		}
		mr.typ, mr.subtype = typ, sub
		for _, p := range params[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// formatRank orders acceptable ranges: q first, then specificity. The problem
// types outrank the base types, which outrank the "*+" suffix ranges.
type formatRank struct {
	q           float64
	specificity int
}

func (a formatRank) beats(b formatRank) bool {
	if a.q != b.q {
		return a.q > b.q
	}
	return a.specificity > b.specificity
}

// selectFormat reports whether a problem should be encoded as CBOR. CBOR is chosen
// only when an explicit CBOR range with q > 0 outranks every explicit JSON range.
// Full ties and wildcards fall back to JSON.
func selectFormat(accept string) bool {
	var cbor, json formatRank
	for _, mr := range parseAccept(accept) {
		if mr.typ != "application" || mr.q <= 0 {
			continue
		}
		var rank formatRank
		isCBOR := false
		switch mr.subtype {
		case "problem+cbor":
			rank, isCBOR = formatRank{mr.q, 2}, true
		case "cbor":
			rank, isCBOR = formatRank{mr.q, 1}, true
		case "*+cbor":
			rank, isCBOR = formatRank{mr.q, 0}, true
		case "problem+json":
			rank = formatRank{mr.q, 2}
		case "json":
			rank = formatRank{mr.q, 1}
		case "*+json":
			rank = formatRank{mr.q, 0}
		default:
			continue
		}
		if isCBOR {
			if rank.beats(cbor) {
				cbor = rank
			}
		} else if rank.beats(json) {
			json = rank
		}
	}
	if cbor.q == 0 {
		return false
	}
	return cbor.beats(json)
}
