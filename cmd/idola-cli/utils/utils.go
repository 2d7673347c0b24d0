package utils

import (
	"fmt"
	"os"
	"strconv"

	"idola-backend/internal/scrapers/idola"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func ParseKind(arg string) (idola.Kind, error) {
	kind, ok := idola.ParseKind(arg)
	if !ok {
		return 0, fmt.Errorf("unknown ranking kind %q, expected arena, suppression or creation", arg)
	}
	return kind, nil
}

func ParsePositive(arg, name string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, arg)
	}
	return n, nil
}
