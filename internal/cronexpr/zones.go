package cronexpr

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// ZoneSet is the list of IANA timezone names a schedule may use.
// Callers build one at startup and pass it to whatever validates input.
type ZoneSet struct {
	names []string
	index map[string]struct{}
}

// NewZoneSet builds a set from names. UTC is always included.
func NewZoneSet(names []string) *ZoneSet {
	z := &ZoneSet{index: map[string]struct{}{"UTC": {}}}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			z.index[n] = struct{}{}
		}
	}
	z.names = make([]string, 0, len(z.index))
	for n := range z.index {
		z.names = append(z.names, n)
	}
	sort.Strings(z.names)
	return z
}

func (z *ZoneSet) Contains(name string) bool {
	_, ok := z.index[name]
	return ok
}

// Names returns the zone names sorted alphabetically.
func (z *ZoneSet) Names() []string {
	out := make([]string, len(z.names))
	copy(out, z.names)
	return out
}

func (z *ZoneSet) Len() int { return len(z.names) }

var fallbackZones = []string{
	"UTC",
	"Africa/Johannesburg", "Africa/Lagos", "Africa/Nairobi",
	"America/Chicago", "America/Denver", "America/Los_Angeles", "America/Mexico_City",
	"America/New_York", "America/Sao_Paulo", "America/Toronto",
	"Asia/Dubai", "Asia/Hong_Kong", "Asia/Kolkata", "Asia/Shanghai", "Asia/Singapore", "Asia/Tokyo",
	"Australia/Sydney",
	"Europe/Amsterdam", "Europe/Berlin", "Europe/London", "Europe/Madrid", "Europe/Paris", "Europe/Stockholm",
	"Pacific/Auckland",
}

// DefaultZones returns a small built-in set used when no zoneinfo tree is
// available on the host.
func DefaultZones() *ZoneSet {
	return NewZoneSet(fallbackZones)
}

var errNoZones = errors.New("no timezone files found")

// LoadZones walks a zoneinfo tree (for example os.DirFS("/usr/share/zoneinfo"))
// and returns every file carrying a TZif header, named by its relative path.
func LoadZones(fsys fs.FS) (*ZoneSet, error) {
	var names []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == "posix" || p == "right" {
				return fs.SkipDir
			}
			return nil
		}
		base := path.Base(p)
		if strings.Contains(base, ".") || base == "localtime" || base == "posixrules" || base == "Factory" {
			return nil
		}
		if base[0] < 'A' || base[0] > 'Z' {
			return nil
		}
		ok, err := isTZif(fsys, p)
		if err != nil {
			return err
		}
		if ok {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errNoZones
	}
	return NewZoneSet(names), nil
}

func isTZif(fsys fs.FS, p string) (bool, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(magic, []byte("TZif")), nil
}
