package handle

// Package handle enforces the call-ordering and sharing discipline of the
// native engine. Engine wraps one native instance behind a state machine so
// operations are only issued when legal. Context tracks every cursor cloned
// from one analysis call and returns the engine to the image-set state when
// the last clone is released. Cursor and ResultCursor are the per-clone
// views; once disposed they refuse every operation.
//
// The price of a violated ordering rule in the native engine is undefined
// behavior, not an error, so every rejection here is synchronous and loud:
// misuse fails at the call site that committed it.
