// Package services holds the shared error taxonomy for pipeline components
// and the context annotations the logging layer reads. External tool
// integrations live in subpackages (browser, gdal).
package services
