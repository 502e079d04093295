package config

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/sklearn/model_selection"
)

// GridFile is the YAML layout of --grid_file: one grid per model family.
//
//	en:
//	  alpha: [0.01, 0.1, 1]
//	  l1_ratio: [0.5, 1.0]
//	rf:
//	  max_depth: [0, 4]
type GridFile map[string]map[string][]interface{}

// LoadGrids reads a grid override file. Every top-level key must be one of
// families; families absent from the file keep their defaults.
func LoadGrids(path string, families []string) (map[string]model_selection.ParamGrid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInputFormatError(path, 0, err.Error())
	}

	var file GridFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return nil, errors.NewInputFormatError(path, 0, te.Error())
		}
		return nil, errors.NewInputFormatError(path, 0, err.Error())
	}

	names := make([]string, 0, len(file))
	for family := range file {
		names = append(names, family)
	}
	sort.Strings(names)

	grids := make(map[string]model_selection.ParamGrid, len(file))
	for _, family := range names {
		if !slices.Contains(families, family) {
			return nil, errors.NewInputFormatError(path, 0,
				fmt.Sprintf("unknown model family %q (want %s)", family, strings.Join(families, " or ")))
		}
		grid := model_selection.ParamGrid(file[family])
		if err := grid.Validate(); err != nil {
			return nil, errors.Wrapf(err, "grid for %q in %s", family, path)
		}
		grids[family] = grid
	}
	return grids, nil
}
