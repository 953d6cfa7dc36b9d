// Package spell implements dictionary-driven spelling correction using the
// symmetric delete algorithm (SymSpell), including compound correction that
// can merge adjacent tokens or split run-together words.
//
// A Dictionary is built once and is read-only afterwards; Lookup,
// LookupCompound and Corrector.Correct are safe for concurrent use.
package spell
