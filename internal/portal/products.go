package portal

import (
	"fmt"
	"sort"
)

// Products maps the request catalog to the display labels the portal's
// product selector uses. The catalog is fixed; requesting anything else is
// a configuration error.
var Products = map[string]string{
	"dsm":         "LIDAR Tiles DSM",
	"dtm":         "LIDAR Tiles DTM",
	"point_cloud": "LIDAR Point Cloud",
	"national":    "National Lidar Programme DSM",
}

// ProductLabel resolves a catalog key to its portal display label.
func ProductLabel(key string) (string, error) {
	label, ok := Products[key]
	if !ok {
		return "", fmt.Errorf("unknown product %q (available: %v)", key, ProductKeys())
	}
	return label, nil
}

// ProductKeys returns the catalog keys in sorted order.
func ProductKeys() []string {
	keys := make([]string, 0, len(Products))
	for key := range Products {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
