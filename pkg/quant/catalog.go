package quant

import (
	"fmt"
	"slices"
	"sort"
)

const (
	CatalogDefault = "default"
	CatalogCUDA    = "cuda"
)

var catalogs = map[string][]Scheme{
	CatalogDefault: {Q3K, Q4K, Q5K, Q8_0, HQQ4, HQQ8},
	// FP8 artifacts are only worth generating where the engine has CUDA kernels.
	CatalogCUDA: {Q3K, Q4K, Q5K, Q8_0, HQQ4, HQQ8, F8E4M3},
}

// Catalog returns a copy of the named scheme list. The empty name selects
// the default catalog.
func Catalog(name string) ([]Scheme, error) {
	if name == "" {
		name = CatalogDefault
	}
	c, ok := catalogs[name]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q (known: %v)", name, CatalogNames())
	}
	return slices.Clone(c), nil
}

func CatalogNames() []string {
	names := make([]string, 0, len(catalogs))
	for n := range catalogs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
