package grammar

// MarshalBinary/UnmarshalBinary for Rule and Grammar let internal/artifact
// persist a transformed, LL(1)-verified grammar to disk via
// github.com/dekarrin/rezi's EncBinary/DecBinary, the same composition style
// internal/automaton/binary.go uses for DFA. index is deliberately not
// serialized -- AddRule derives it from rules in declaration order, so
// rebuilding it on decode is cheaper and less error-prone than persisting a
// second copy that could drift out of sync with rules.

import (
	"fmt"

	"github.com/dekarrin/ictogen/internal/util"
)

// MarshalBinary encodes d as its two string fields.
func (d Defect) MarshalBinary() ([]byte, error) {
	data := util.EncBinaryString(d.NonTerminal)
	data = append(data, util.EncBinaryString(d.Reason)...)
	return data, nil
}

// UnmarshalBinary decodes a value written by Defect.MarshalBinary.
func (d *Defect) UnmarshalBinary(data []byte) error {
	nt, n, err := util.DecBinaryString(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Defect.NonTerminal: %w", err)
	}
	data = data[n:]

	reason, _, err := util.DecBinaryString(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Defect.Reason: %w", err)
	}

	d.NonTerminal = nt
	d.Reason = reason
	return nil
}

// MarshalBinary encodes prod as a string slice.
func (p Production) MarshalBinary() ([]byte, error) {
	return util.EncBinaryStringSlice([]string(p)), nil
}

// UnmarshalBinary decodes a value written by Production.MarshalBinary.
func (p *Production) UnmarshalBinary(data []byte) error {
	sl, _, err := util.DecBinaryStringSlice(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Production: %w", err)
	}
	*p = Production(sl)
	return nil
}

// MarshalBinary encodes r as its nonterminal name followed by its
// productions.
func (r Rule) MarshalBinary() ([]byte, error) {
	data := util.EncBinaryString(r.NonTerminal)
	data = append(data, util.EncBinaryInt(len(r.Productions))...)
	for _, p := range r.Productions {
		data = append(data, util.EncBinary(p)...)
	}
	return data, nil
}

// UnmarshalBinary decodes a value written by Rule.MarshalBinary.
func (r *Rule) UnmarshalBinary(data []byte) error {
	nt, n, err := util.DecBinaryString(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Rule.NonTerminal: %w", err)
	}
	data = data[n:]

	count, n, err := util.DecBinaryInt(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Rule production count: %w", err)
	}
	data = data[n:]

	prods := make([]Production, 0, count)
	for i := 0; i < count; i++ {
		var p Production
		n, err = util.DecBinary(data, &p)
		if err != nil {
			return fmt.Errorf("grammar: decoding Rule production %d: %w", i, err)
		}
		data = data[n:]
		prods = append(prods, p)
	}

	r.NonTerminal = nt
	r.Productions = prods
	return nil
}

// MarshalBinary encodes g as its terminal vocabulary, its rules in
// declaration order, its start symbol, and its left-factoring counter.
func (g Grammar) MarshalBinary() ([]byte, error) {
	data := util.EncBinaryStringSlice(util.OrderedKeys(g.terminals))
	data = append(data, util.EncBinaryInt(len(g.rules))...)
	for _, r := range g.rules {
		data = append(data, util.EncBinary(r)...)
	}
	data = append(data, util.EncBinaryString(g.start)...)
	data = append(data, util.EncBinaryInt(g.lfCounter)...)
	return data, nil
}

// UnmarshalBinary decodes a value written by Grammar.MarshalBinary,
// rebuilding index from the decoded rules.
func (g *Grammar) UnmarshalBinary(data []byte) error {
	terms, n, err := util.DecBinaryStringSlice(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Grammar terminals: %w", err)
	}
	data = data[n:]

	ruleCount, n, err := util.DecBinaryInt(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Grammar rule count: %w", err)
	}
	data = data[n:]

	rules := make([]Rule, 0, ruleCount)
	index := make(map[string]int, ruleCount)
	for i := 0; i < ruleCount; i++ {
		var r Rule
		n, err = util.DecBinary(data, &r)
		if err != nil {
			return fmt.Errorf("grammar: decoding Grammar rule %d: %w", i, err)
		}
		data = data[n:]
		index[r.NonTerminal] = len(rules)
		rules = append(rules, r)
	}

	start, n, err := util.DecBinaryString(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Grammar.start: %w", err)
	}
	data = data[n:]

	lfCounter, _, err := util.DecBinaryInt(data)
	if err != nil {
		return fmt.Errorf("grammar: decoding Grammar.lfCounter: %w", err)
	}

	g.terminals = map[string]bool{}
	for _, t := range terms {
		g.terminals[t] = true
	}
	g.rules = rules
	g.index = index
	g.start = start
	g.lfCounter = lfCounter
	return nil
}
