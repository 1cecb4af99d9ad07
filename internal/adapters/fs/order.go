package fs

import (
	"cmp"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

func describe(paths []string) ([]domain.FileDescriptor, error) {
	files := make([]domain.FileDescriptor, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrResolution, "failed to stat file"), "path", p)
		}
		ctime, atime := fileTimes(info)
		files = append(files, domain.FileDescriptor{
			Path:  p,
			Size:  info.Size(),
			Mtime: info.ModTime(),
			Ctime: ctime,
			Atime: atime,
		})
	}
	return files, nil
}

// sortFiles orders files in place. System order keeps the glob enumeration
// order; random shuffles; every other order is a stable sort.
func sortFiles(files []domain.FileDescriptor, order domain.Order) {
	switch order.Type {
	case domain.OrderSystem:
		return
	case domain.OrderRandom:
		rand.Shuffle(len(files), func(i, j int) {
			files[i], files[j] = files[j], files[i]
		})
		return
	}

	compare := comparator(order)
	slices.SortStableFunc(files, func(a, b domain.FileDescriptor) int {
		c := compare(a, b)
		if order.Descending {
			return -c
		}
		return c
	})
}

func comparator(order domain.Order) func(a, b domain.FileDescriptor) int {
	switch order.Type {
	case domain.OrderSize:
		return func(a, b domain.FileDescriptor) int { return cmp.Compare(a.Size, b.Size) }
	case domain.OrderMtime:
		return func(a, b domain.FileDescriptor) int { return a.Mtime.Compare(b.Mtime) }
	case domain.OrderCtime:
		return func(a, b domain.FileDescriptor) int { return a.Ctime.Compare(b.Ctime) }
	case domain.OrderAtime:
		return func(a, b domain.FileDescriptor) int { return a.Atime.Compare(b.Atime) }
	}

	key := subjectKey(order.Subject)
	if order.Type == domain.OrderNatural {
		return func(a, b domain.FileDescriptor) int { return NaturalCompare(key(a.Path), key(b.Path)) }
	}
	return func(a, b domain.FileDescriptor) int { return strings.Compare(key(a.Path), key(b.Path)) }
}

func subjectKey(subject domain.OrderSubject) func(string) string {
	switch subject {
	case domain.SubjectName:
		return filepath.Base
	case domain.SubjectExtension:
		return filepath.Ext
	default:
		return filepath.ToSlash
	}
}

// NaturalCompare compares two strings treating maximal runs of ASCII digits
// as numbers, so "file2" sorts before "file10".
func NaturalCompare(a, b string) int {
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			da, ra := digitRun(a)
			db, rb := digitRun(b)
			if c := compareDigits(da, db); c != 0 {
				return c
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return cmp.Compare(a[0], b[0])
		}
		a, b = a[1:], b[1:]
	}
	return cmp.Compare(len(a), len(b))
}

func compareDigits(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(ta), len(tb)); c != 0 {
		return c
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	// Equal magnitude: fewer leading zeros first.
	return cmp.Compare(len(a), len(b))
}

func digitRun(s string) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
