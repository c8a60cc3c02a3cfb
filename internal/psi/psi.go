// Package psi reads and parses /proc/pressure/{cpu,memory,io}, grounded on
// ftahirops-xtop/collector/psi.go's parsePSIFile/parsePSILine.
package psi

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Samarth827/cgroup-governor/internal/model"
)

// Resources lists the PSI files the observer samples every tick.
var Resources = []string{"cpu", "memory", "io"}

// Path returns the /proc/pressure path for a resource.
func Path(resource string) string {
	return "/proc/pressure/" + resource
}

// ErrAbsent is returned by Read when the PSI file does not exist, e.g. the
// running kernel was built without CONFIG_PSI. Callers skip silently
// (spec.md §4.1).
var ErrAbsent = os.ErrNotExist

// Read parses a single PSI file into a PSIResource. It returns ErrAbsent
// (wrapping os.ErrNotExist) if the file is missing, and a parse error if the
// file exists but a non-empty line is malformed. Malformed key=value tokens
// within a line are skipped.
func Read(resource string) (model.PSIResource, error) {
	var res model.PSIResource
	data, err := os.ReadFile(Path(resource))
	if err != nil {
		if os.IsNotExist(err) {
			return res, fmt.Errorf("%s: %w", resource, ErrAbsent)
		}
		return res, fmt.Errorf("read psi %s: %w", resource, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pl, isFull, err := parseLine(line)
		if err != nil {
			return model.PSIResource{}, fmt.Errorf("parse psi %s: %w", resource, err)
		}
		if isFull {
			res.Full = pl
		} else {
			res.Some = pl
		}
	}
	return res, nil
}

// parseLine parses one "some ..." or "full ..." PSI line.
func parseLine(line string) (model.PSILine, bool, error) {
	var pl model.PSILine
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return pl, false, fmt.Errorf("unexpected psi line: %q", line)
	}
	isFull := fields[0] == "full"
	for _, f := range fields[1:] {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "avg10":
			pl.Avg10, _ = strconv.ParseFloat(kv[1], 64)
		case "avg60":
			pl.Avg60, _ = strconv.ParseFloat(kv[1], 64)
		case "avg300":
			pl.Avg300, _ = strconv.ParseFloat(kv[1], 64)
		case "total":
			v, _ := strconv.ParseUint(kv[1], 10, 64)
			pl.Total = v
		}
	}
	return pl, isFull, nil
}
