// SPDX-License-Identifier: EPL-2.0

// Package watermark defines what every watermark backend shares: the method
// tag that selects a backend, the detection result shape, the detection
// threshold and the backend error values.
//
// Two backends exist. The neural backend (package neural) embeds a fixed
// mark and reports a continuous confidence; it never recovers an id. The
// external codec backend (package codec) embeds a caller-chosen id with an
// external tool and either extracts it exactly or finds nothing.
// FromConfidence and FromExtraction map each raw outcome to DetectionResult.
package watermark
