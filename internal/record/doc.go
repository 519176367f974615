// Package record defines the card payload shown by the swipe deck.
//
// A Record is an immutable value. The deck and the decision log only care
// about its identity (ID); every other field is display payload that is
// passed through to the presentation layer untouched.
//
// # Identity
//
// IDs are NFC-normalised on construction and on fixture load so that two
// providers encoding the same profile id differently (composed vs decomposed
// code points) still merge as one record during deck replacement.
//
// # Fixtures
//
// Records can be loaded from YAML, JSON or CUE files (see LoadFixture).
// CUE fixtures are unified with the built-in #Record schema before decoding,
// so schema violations are reported with CUE positions.
package record
