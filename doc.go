// Package forge implements the build planner and executor for an asset
// build pipeline: tools are registered with a priority, then Build walks an
// input tree, lets every tool claim the files it recognizes, resolves
// output collisions, and executes the resulting dependency graph in
// topologically sorted batches, either on the calling goroutine or across a
// worker pool.
//
// Individual tool implementations (atlas packing, image decoding,
// compression framing, SVG rasterization) live in the sibling forgetools
// package; this package only specifies and drives the contract a tool must
// satisfy.
package forge
