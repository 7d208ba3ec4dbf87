// Package directory resolves account codes to department names and back.
package directory

import (
	"sort"
	"strconv"
)

// NotAssigned is returned by ReverseResolve when no code maps to a name.
const NotAssigned = "N/A"

// Entry is one account code and the department it is paid into.
type Entry struct {
	Code string
	Name string
}

// Label is the selection-control text, e.g. "Choir (1001)".
func (e Entry) Label() string {
	return e.Name + " (" + e.Code + ")"
}

// Directory is an immutable account mapping. The zero value is empty.
type Directory struct {
	byCode  map[string]string
	byName  map[string]string
	entries []Entry
}

// New builds a directory from a code -> department mapping. The input map is
// copied. When two codes share a name, the lowest code wins the reverse lookup.
func New(mapping map[string]string) Directory {
	d := Directory{
		byCode:  make(map[string]string, len(mapping)),
		byName:  make(map[string]string, len(mapping)),
		entries: make([]Entry, 0, len(mapping)),
	}
	for code, name := range mapping {
		d.byCode[code] = name
		d.entries = append(d.entries, Entry{Code: code, Name: name})
	}
	sort.Slice(d.entries, func(i, j int) bool {
		return codeLess(d.entries[i].Code, d.entries[j].Code)
	})
	for _, e := range d.entries {
		if _, taken := d.byName[e.Name]; !taken {
			d.byName[e.Name] = e.Code
		}
	}
	return d
}

// Resolve returns the department for an account code.
func (d Directory) Resolve(code string) (string, bool) {
	name, ok := d.byCode[code]
	return name, ok
}

// ReverseResolve returns the account code for a department, or NotAssigned.
func (d Directory) ReverseResolve(name string) string {
	if code, ok := d.byName[name]; ok {
		return code
	}
	return NotAssigned
}

// Options returns every entry ordered by code. The slice is a copy.
func (d Directory) Options() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len reports the number of account codes.
func (d Directory) Len() int { return len(d.entries) }

// Mapping returns a copy of the code -> department mapping.
func (d Directory) Mapping() map[string]string {
	out := make(map[string]string, len(d.byCode))
	for k, v := range d.byCode {
		out[k] = v
	}
	return out
}

// codeLess orders numeric codes numerically and everything else lexically,
// numeric codes first.
func codeLess(a, b string) bool {
	ai, aerr := strconv.ParseUint(a, 10, 64)
	bi, berr := strconv.ParseUint(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
