// Package scene defines the pipe scene produced by evaluating a scene
// script: obstacle primitives arranged under transforms and groups, plus the
// pipes to route between them.
package scene
