package engine

// Package engine defines the boundary to the native OCR/page-layout engine.
// The API and Cursor interfaces mirror the C handle API one to one: native
// booleans cross this boundary as raw integer sentinels and are converted
// exactly once, via Bool, by the layer that consumes them. Nothing in this
// package tracks state; the call-ordering discipline lives in package handle.
