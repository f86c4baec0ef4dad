package asset

import (
	"fmt"
	"path"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("asset: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

type envelope struct {
	Kind Kind            `cbor:"kind"`
	Body cbor.RawMessage `cbor:"body"`
}

// Marshal encodes a document together with its kind.
func Marshal(a Asset) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("asset: marshal nil document")
	}
	body, err := encMode.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("asset: marshal %s: %w", a.AssetKind(), err)
	}
	return encMode.Marshal(envelope{Kind: a.AssetKind(), Body: body})
}

// Unmarshal decodes a document produced by Marshal.
func Unmarshal(data []byte) (Asset, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("asset: unmarshal envelope: %w", err)
	}
	a := New(env.Kind)
	if a == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
	if err := cbor.Unmarshal(env.Body, a); err != nil {
		return nil, fmt.Errorf("asset: unmarshal %s: %w", env.Kind, err)
	}
	return a, nil
}

// PeekKind returns the kind of an encoded document without decoding its body.
func PeekKind(data []byte) (Kind, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("asset: unmarshal envelope: %w", err)
	}
	return env.Kind, nil
}

// Rename re-encodes data with the document name set to name.
func Rename(data []byte, name string) ([]byte, error) {
	a, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	a.SetAssetName(name)
	return Marshal(a)
}

// NameFromPath returns the base name of a storage path without extension.
// Stores name a duplicate after its destination path this way.
func NameFromPath(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
