// Package catalog holds the static table of dimensional collections:
// the Babylonian Talmud tractates and the whole-book collections that are
// downloaded chapter by chapter.
package catalog
