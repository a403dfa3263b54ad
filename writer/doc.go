// Package writer serializes documents. A Writer collects pages and
// auxiliary objects with unassigned identities, then Bytes lays them out
// in a fixed order, numbers them, and emits the complete file: header,
// object bodies, cross-reference table, and trailer.
package writer
