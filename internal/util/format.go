package util //nolint:revive // package name util hosts shared formatting helpers used across HTTP handlers

import (
	"math"
	"strconv"
	"strings"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// PrettyBytes formats a byte count for display using base-1024 units with up
// to two decimals. PrettyBytes(0) is "0 Bytes"; PrettyBytes(1048576) is "1 MB".
func PrettyBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	exp := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if exp >= len(byteUnits) {
		exp = len(byteUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(exp))
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[exp]
}

// NidStringToArray expands a scheduler node-list expression into individual
// node names. Plain names pass through as a single entry; bracketed lists
// like "nid[002538,002544]" expand with the prefix applied and empty entries
// dropped. An empty input yields an empty slice.
func NidStringToArray(nids string) []string {
	nids = strings.TrimSpace(nids)
	if nids == "" {
		return []string{}
	}

	open := strings.Index(nids, "[")
	if open < 0 {
		return []string{nids}
	}

	prefix := nids[:open]
	inner := nids[open+1:]
	if close := strings.Index(inner, "]"); close >= 0 {
		inner = inner[:close]
	}

	nodes := []string{}
	for _, entry := range strings.Split(inner, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		nodes = append(nodes, prefix+entry)
	}
	return nodes
}
