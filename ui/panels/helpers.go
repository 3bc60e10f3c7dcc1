package panels

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2/widget"
)

// parseFloatField parses an entry as a float, naming the field on error.
func parseFloatField(name string, e *widget.Entry) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(e.Text), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, e.Text)
	}
	return v, nil
}

// parseIntField parses an entry as an int, naming the field on error.
func parseIntField(name string, e *widget.Entry) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(e.Text))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a whole number", name, e.Text)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func numberEntry(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(formatFloat(v))
	return e
}
