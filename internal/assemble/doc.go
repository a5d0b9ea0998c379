// Package assemble renders canonical text into labeled document bodies.
//
// Dimensional pages use dashed headers:
//
//	--- 2a ---
//	line
//	line
//
// Crawled books use a banner of equals signs around each page title.
package assemble
