// Package asset defines the documents the obfuscator clones and rewrites,
// and the Store through which it reaches the host's asset storage.
//
// Every asset is addressed by an opaque Ref. The engine never mutates a
// source asset: it asks the Store to Duplicate the source into the run
// folder, loads the duplicate, rewrites it and saves it back.
//
// Documents are encoded with canonical CBOR inside a small envelope that
// carries the asset kind, so any Store can keep them as plain bytes:
//
//	data, err := asset.Marshal(&asset.Material{Name: "Skin"})
//	a, err := asset.Unmarshal(data) // *asset.Material
package asset
