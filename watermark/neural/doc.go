// SPDX-License-Identifier: EPL-2.0

// Package neural implements the implicit watermark backend. A Model embeds
// a fixed mark into a 16 kHz mono buffer and scores how strongly a buffer
// carries it. The id passed to Embed is accepted for interface symmetry and
// never encoded, so it cannot be recovered.
//
// The built-in model is a spread-spectrum detector whose parameters come
// from a YAML weights file. Models must be safe for concurrent use: one
// instance serves every request once loaded.
package neural
