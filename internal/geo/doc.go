// Package geo implements the geodetic primitives used by the hazard
// calculation: points, great-circle distances, polygons, discretized
// meshes and planar rupture surfaces.
//
// All coordinates are geographic (WGS84 lon/lat in degrees) with depth
// in kilometers, positive downwards. Distances are great-circle
// (spherical earth) in kilometers, which is accurate to well below the
// grid spacings used by hazard calculations.
package geo
