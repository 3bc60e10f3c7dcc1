// Command layoutcheck prints the atlas layout computed for a box and a
// template: atlas size, column and row sizes, face rectangles and hinges.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

type report struct {
	Template   string                `yaml:"template"`
	Dims       unfold.Dims           `yaml:"dims"`
	Resolution float64               `yaml:"resolution"`
	Margin     int                   `yaml:"margin"`
	Width      int                   `yaml:"width"`
	Height     int                   `yaml:"height"`
	ColWidths  []int                 `yaml:"col_widths"`
	RowHeights []int                 `yaml:"row_heights"`
	Faces      map[string]faceReport `yaml:"faces"`
	Hinges     []string              `yaml:"hinges"`
}

type faceReport struct {
	Col  int              `yaml:"col"`
	Row  int              `yaml:"row"`
	Rect geometry.RectInt `yaml:"rect,flow"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "layoutcheck:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("layoutcheck", pflag.ContinueOnError)
	sizeX := fs.Float64("size-x", 100, "box size along X")
	sizeY := fs.Float64("size-y", 60, "box size along Y")
	sizeZ := fs.Float64("size-z", 40, "box size along Z")
	resolution := fs.Float64P("resolution", "r", 4, "pixels per physical unit")
	margin := fs.IntP("margin", "m", 10, "pixels between and around cells")
	name := fs.StringP("template", "t", unfold.PresetCross, "template name")
	templateFile := fs.String("template-file", "", "YAML file of custom templates")
	format := fs.StringP("format", "f", "text", "output format: text or yaml")
	list := fs.Bool("list", false, "list known templates and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *templateFile != "" {
		if _, err := unfold.LoadTemplates(*templateFile); err != nil {
			return err
		}
	}
	if *list {
		for _, n := range unfold.ListTemplates() {
			fmt.Fprintln(out, n)
		}
		return nil
	}

	tmpl, ok := unfold.Lookup(*name)
	if !ok {
		return fmt.Errorf("unknown template %q (known: %s)", *name, strings.Join(unfold.ListTemplates(), ", "))
	}
	l, err := unfold.BuildLayout(unfold.Dims{X: *sizeX, Y: *sizeY, Z: *sizeZ}, *resolution, *margin, tmpl)
	if err != nil {
		return err
	}

	r := newReport(l)
	switch *format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		writeText(out, l, r)
		return nil
	}
	return fmt.Errorf("unknown format %q", *format)
}

func newReport(l *unfold.Layout) report {
	r := report{
		Template:   l.Template.Name,
		Dims:       l.Dims,
		Resolution: l.Resolution,
		Margin:     l.Margin,
		Width:      l.Width,
		Height:     l.Height,
		ColWidths:  l.ColWidths,
		RowHeights: l.RowHeights,
		Faces:      make(map[string]faceReport),
	}
	for _, f := range l.PresentFaces() {
		cell := l.FaceCells[f]
		r.Faces[string(f)] = faceReport{Col: cell.Col, Row: cell.Row, Rect: l.FaceRects[f]}
	}
	for _, h := range l.Hinges() {
		r.Hinges = append(r.Hinges, string(h.A)+"|"+string(h.B))
	}
	return r
}

func writeText(out io.Writer, l *unfold.Layout, r report) {
	fmt.Fprintf(out, "Template:   %s (%d cols x %d rows)\n", r.Template, l.Cols, l.Rows)
	fmt.Fprintf(out, "Box:        %g x %g x %g\n", r.Dims.X, r.Dims.Y, r.Dims.Z)
	fmt.Fprintf(out, "Resolution: %g px/unit, margin %d px\n", r.Resolution, r.Margin)
	fmt.Fprintf(out, "Atlas:      %d x %d px\n", r.Width, r.Height)
	fmt.Fprintf(out, "Columns:    %v\n", r.ColWidths)
	fmt.Fprintf(out, "Rows:       %v\n", r.RowHeights)
	fmt.Fprintln(out, "\nFaces:")
	for _, f := range l.PresentFaces() {
		fr := r.Faces[string(f)]
		fmt.Fprintf(out, "  %-3s cell (%d,%d)  x=%-5d y=%-5d %dx%d\n",
			f, fr.Col, fr.Row, fr.Rect.X, fr.Rect.Y, fr.Rect.Width, fr.Rect.Height)
	}
	fmt.Fprintln(out, "\nHinges:")
	for _, h := range r.Hinges {
		fmt.Fprintf(out, "  %s\n", h)
	}
}
