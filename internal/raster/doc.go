// Package raster turns a downloaded archive or raster into an
// analysis-ready cloud-optimized GeoTIFF. Extraction happens in a scratch
// directory that is removed on every exit path; a failed conversion keeps
// the raw raster, because the expensive network transfer already succeeded.
package raster
