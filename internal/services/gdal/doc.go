// Package gdal wraps the gdal_translate command line for cloud-optimized
// GeoTIFF conversion.
package gdal
