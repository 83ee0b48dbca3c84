package output

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/git-pkgs/alpmdb/internal/core"
)

var labelColor = color.New(color.FgCyan, color.Bold)

// sizeLabels are numeric fields holding byte counts.
var sizeLabels = map[string]bool{
	"CSize":         true,
	"ISize":         true,
	"InstalledSize": true,
}

// Plain writes records as aligned "Label : value" blocks separated by blank
// lines, in the style of pacman -Si. Array values are joined by two spaces.
type Plain struct {
	w       io.Writer
	opts    Options
	written int
}

func NewPlain(w io.Writer, opts Options) *Plain {
	return &Plain{w: w, opts: opts}
}

func (p *Plain) Handle(rec *core.Record, _ int, _ bool) error {
	if rec == nil {
		return nil
	}
	fields := fieldsOf(rec, p.opts)

	width := 0
	for _, f := range fields {
		width = max(width, runewidth.StringWidth(f.label))
	}

	var b strings.Builder
	if p.written > 0 {
		b.WriteByte('\n')
	}
	for _, f := range fields {
		b.WriteString(labelColor.Sprint(runewidth.FillRight(f.label, width)))
		b.WriteString(" : ")
		b.WriteString(p.render(f))
		b.WriteByte('\n')
	}
	p.written++
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Plain) Finish(int) error { return nil }

func (p *Plain) render(f field) string {
	v := f.value
	switch v.Kind {
	case core.Array:
		if len(v.List) == 0 {
			return "None"
		}
		return strings.Join(v.List, "  ")
	case core.Numeric:
		if p.opts.HumanSizes && sizeLabels[f.label] {
			if n, err := safecast.Conv[uint64](v.Num); err == nil {
				return HumanSize(n)
			}
		}
		return fmt.Sprintf("%d", v.Num)
	default:
		return v.Str
	}
}

// HumanSize formats n bytes in binary units with two decimals, the way
// pacman prints package sizes.
func HumanSize(n uint64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	f := float64(n)
	i := 0
	for f >= 1024 && i < len(units)-1 {
		f /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", f, units[i])
}
