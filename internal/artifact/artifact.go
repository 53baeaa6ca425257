// Package artifact persists a generated compiler (spec.md C8's
// generate_compiler output) to disk as two files: a TOML manifest recording
// the build's identity and provenance, and a binary blob holding the built
// DFA, transformed grammar, and build metadata. A later "compile" or
// "test-compiler" invocation (cmd/ictogen) loads the artifact instead of
// re-running generate_compiler, so lexer/grammar construction happens once
// per build rather than once per compile call.
//
// The manifest format is grounded on github.com/dekarrin/tunaq's
// internal/tqw package, which reads world manifests with
// github.com/BurntSushi/toml's Unmarshal; the blob format follows
// github.com/dekarrin/rezi's EncBinary/DecBinary call shape as used by
// server/dao/sqlite to persist a *game.State, with the nested
// MarshalBinary/UnmarshalBinary implementations in internal/automaton,
// internal/grammar, and internal/parse supplying the actual field encoding.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"

	"github.com/dekarrin/ictogen/internal/automaton"
	"github.com/dekarrin/ictogen/internal/grammar"
	"github.com/dekarrin/ictogen/internal/parse"
	"github.com/dekarrin/ictogen/internal/util"
	"github.com/dekarrin/ictogen/internal/version"
)

const (
	manifestFileName = "manifest.toml"
	blobFileName     = "compiler.bin"
)

// Manifest is the human-readable companion to the binary blob: enough to
// identify a build and detect whether its source rule files have changed
// without decoding the blob.
type Manifest struct {
	FormatVersion   string `toml:"format_version"`
	BuildID         string `toml:"build_id"`
	LexerRuleHash   string `toml:"lexer_rule_hash"`
	GrammarRuleHash string `toml:"grammar_rule_hash"`
	DefectCount     int    `toml:"defect_count"`
}

// Payload is the complete build-time state generate_compiler produces,
// serialized into the artifact's binary blob.
type Payload struct {
	DFA     automaton.DFA
	Grammar *grammar.Grammar
	Meta    parse.Metadata
	Defects []grammar.Defect
}

// MarshalBinary encodes p as its DFA, grammar, metadata, and defect list, in
// that order.
func (p Payload) MarshalBinary() ([]byte, error) {
	data := util.EncBinary(p.DFA)

	g := p.Grammar
	if g == nil {
		g = grammar.New()
	}
	data = append(data, util.EncBinary(g)...)
	data = append(data, util.EncBinary(p.Meta)...)

	data = append(data, util.EncBinaryInt(len(p.Defects))...)
	for _, d := range p.Defects {
		data = append(data, util.EncBinary(d)...)
	}
	return data, nil
}

// UnmarshalBinary decodes a value written by Payload.MarshalBinary.
func (p *Payload) UnmarshalBinary(data []byte) error {
	var dfa automaton.DFA
	n, err := util.DecBinary(data, &dfa)
	if err != nil {
		return fmt.Errorf("artifact: decoding Payload.DFA: %w", err)
	}
	data = data[n:]

	g := grammar.New()
	n, err = util.DecBinary(data, g)
	if err != nil {
		return fmt.Errorf("artifact: decoding Payload.Grammar: %w", err)
	}
	data = data[n:]

	var meta parse.Metadata
	n, err = util.DecBinary(data, &meta)
	if err != nil {
		return fmt.Errorf("artifact: decoding Payload.Meta: %w", err)
	}
	data = data[n:]

	defectCount, n, err := util.DecBinaryInt(data)
	if err != nil {
		return fmt.Errorf("artifact: decoding Payload defect count: %w", err)
	}
	data = data[n:]

	defects := make([]grammar.Defect, 0, defectCount)
	for i := 0; i < defectCount; i++ {
		var d grammar.Defect
		n, err = util.DecBinary(data, &d)
		if err != nil {
			return fmt.Errorf("artifact: decoding Payload defect %d: %w", i, err)
		}
		data = data[n:]
		defects = append(defects, d)
	}

	p.DFA = dfa
	p.Grammar = g
	p.Meta = meta
	p.Defects = defects
	return nil
}

// HashRuleText returns the hex-encoded sha256 digest of a rule file's text,
// the same content-hash idiom internal/automaton/dfa.go's subsetKey uses for
// DFA state interning, applied here to detect when a rule file has changed
// since an artifact was built.
func HashRuleText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Save writes payload and a manifest built from lexerRuleText/grammarRuleText
// into dir, creating it if necessary. A fresh build ID is minted for every
// Save call.
func Save(dir string, payload Payload, lexerRuleText, grammarRuleText string) (Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("artifact: creating %q: %w", dir, err)
	}

	blob := rezi.EncBinary(payload)
	if err := os.WriteFile(filepath.Join(dir, blobFileName), blob, 0o644); err != nil {
		return Manifest{}, fmt.Errorf("artifact: writing %s: %w", blobFileName, err)
	}

	m := Manifest{
		FormatVersion:   version.ArtifactFormat,
		BuildID:         uuid.NewString(),
		LexerRuleHash:   HashRuleText(lexerRuleText),
		GrammarRuleHash: HashRuleText(grammarRuleText),
		DefectCount:     len(payload.Defects),
	}

	f, err := os.Create(filepath.Join(dir, manifestFileName))
	if err != nil {
		return Manifest{}, fmt.Errorf("artifact: creating %s: %w", manifestFileName, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(m); err != nil {
		return Manifest{}, fmt.Errorf("artifact: encoding %s: %w", manifestFileName, err)
	}

	return m, nil
}

// Load reads back the manifest and payload Save wrote into dir. It returns an
// error (not a panic) if the manifest's FormatVersion does not match the
// running ictogen's version.ArtifactFormat, since an older or newer blob
// layout cannot be safely decoded.
func Load(dir string) (Payload, Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(filepath.Join(dir, manifestFileName), &m); err != nil {
		return Payload{}, Manifest{}, fmt.Errorf("artifact: reading %s: %w", manifestFileName, err)
	}

	if m.FormatVersion != version.ArtifactFormat {
		return Payload{}, Manifest{}, fmt.Errorf("artifact: manifest format version %q does not match this build's %q", m.FormatVersion, version.ArtifactFormat)
	}

	blob, err := os.ReadFile(filepath.Join(dir, blobFileName))
	if err != nil {
		return Payload{}, Manifest{}, fmt.Errorf("artifact: reading %s: %w", blobFileName, err)
	}

	var p Payload
	n, err := rezi.DecBinary(blob, &p)
	if err != nil {
		return Payload{}, Manifest{}, fmt.Errorf("artifact: decoding %s: %w", blobFileName, err)
	}
	if n != len(blob) {
		return Payload{}, Manifest{}, fmt.Errorf("artifact: decoding %s: consumed %d/%d bytes", blobFileName, n, len(blob))
	}

	return p, m, nil
}

// Stale reports whether lexerRuleText or grammarRuleText has changed since
// m was recorded, meaning the caller should regenerate rather than load.
func (m Manifest) Stale(lexerRuleText, grammarRuleText string) bool {
	return m.LexerRuleHash != HashRuleText(lexerRuleText) || m.GrammarRuleHash != HashRuleText(grammarRuleText)
}
