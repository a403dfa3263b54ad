// Package core implements the PDF object model and the byte-level
// machinery around it: the value types, the cursor and tokenizer that turn
// raw bytes into values, cross-reference table parsing, and the encode
// direction back to bytes.
//
// The package deals only in values and byte offsets. Resolving references
// against a file's object graph lives in the resolver package, and whole
// files are read and written by the reader and writer packages.
package core
