package parse

// MarshalBinary/UnmarshalBinary let internal/artifact carry build Metadata
// alongside the serialized DFA and grammar, using the same length-prefixed
// composition as internal/automaton/binary.go and internal/grammar/binary.go.

import (
	"fmt"

	"github.com/dekarrin/ictogen/internal/util"
)

// MarshalBinary encodes m as its two fields.
func (m Metadata) MarshalBinary() ([]byte, error) {
	data := util.EncBinaryBool(m.RequireExplicitDeclaration)
	data = append(data, util.EncBinaryString(m.KeywordWrite)...)
	return data, nil
}

// UnmarshalBinary decodes a value written by Metadata.MarshalBinary.
func (m *Metadata) UnmarshalBinary(data []byte) error {
	requireDecl, n, err := util.DecBinaryBool(data)
	if err != nil {
		return fmt.Errorf("parse: decoding Metadata.RequireExplicitDeclaration: %w", err)
	}
	data = data[n:]

	keyword, _, err := util.DecBinaryString(data)
	if err != nil {
		return fmt.Errorf("parse: decoding Metadata.KeywordWrite: %w", err)
	}

	m.RequireExplicitDeclaration = requireDecl
	m.KeywordWrite = keyword
	return nil
}
