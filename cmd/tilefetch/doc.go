// Command tilefetch acquires raster survey tiles from the national LIDAR
// download portal: it resolves tile footprints from a GeoJSON index,
// packages them as shapefile upload bundles, drives the portal through a
// headless browser, downloads the matching artifacts, and converts them to
// cloud-optimized GeoTIFFs.
package main
