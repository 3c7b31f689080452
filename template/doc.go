// Package template defines the immutable pair template configuration: the
// canvas, its background, image slots, text fields, dynamic shapes, overlay
// images, color palette and collaboration zones.
//
// Templates are authored as YAML or JSON and decoded with Load or Decode.
// The engine never mutates a Template after loading.
package template
