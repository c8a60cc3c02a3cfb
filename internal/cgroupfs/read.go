// Package cgroupfs reads and writes the cgroup v2 filesystem surface named
// in spec.md §6: cpu.stat, memory.current, memory.events, io.stat (read),
// cpu.max, memory.high, memory.max, io.max, cgroup.procs (write).
//
// Parsing follows the Open Question resolution in spec.md §9: a line that
// does not split into exactly key + value is skipped, never a fatal error.
package cgroupfs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseKeyValue reads a "key value" per-line stats file (cpu.stat,
// memory.events) into a map of int64 counters. Lines that do not split into
// exactly two whitespace-separated tokens are skipped rather than treated
// as an error, per spec.md §9.
func ParseKeyValue(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]int64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		out[fields[0]] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadInt reads a file containing a single integer (memory.current).
func ReadInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse int in %s: %w", path, err)
	}
	return v, nil
}

// ParseIODevice parses io.stat and returns the k=v counters for the row
// whose leading "MAJ:MIN" token matches device. Rows are space-separated
// "MAJ:MIN k1=v1 k2=v2 ...". Returns (nil, nil) if the device row is absent.
func ParseIODevice(path, device string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != device {
			continue
		}
		out := make(map[string]int64, len(fields)-1)
		for _, pair := range fields[1:] {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			v, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				continue
			}
			out[kv[0]] = v
		}
		return out, nil
	}
	return nil, sc.Err()
}

// SumIODevices parses io.stat and sums every device row's k=v counters into
// a single map, used by the observer to detect I/O-wide pressure rather
// than a single device's (spec.md §4.1).
func SumIODevices(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]int64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		for _, pair := range fields[1:] {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			v, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				continue
			}
			out[kv[0]] += v
		}
	}
	return out, sc.Err()
}

// Exists reports whether path exists, treating any stat error as absent
// (spec.md §4.1/§4.2: "missing files per tick are ignored").
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Join is a small convenience wrapper so callers don't import path/filepath
// directly for every cgroup file name.
func Join(cgroupPath, file string) string {
	return filepath.Join(cgroupPath, file)
}
