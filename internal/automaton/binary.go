package automaton

// This file implements encoding.BinaryMarshaler/BinaryUnmarshaler for DFA so
// internal/artifact can persist a generated lexer's automaton to disk via
// github.com/dekarrin/rezi's top-level EncBinary/DecBinary, the way
// github.com/dekarrin/tunaq's server/dao/sqlite package rezi-encodes a
// *game.State. The field-by-field composition here follows the
// length-prefixed style of internal/tunascript/binary.go, using the shared
// helpers in internal/util/binary.go instead of duplicating them.

import (
	"fmt"
	"sort"

	"github.com/dekarrin/ictogen/internal/util"
)

// MarshalBinary encodes tag as token type plus priority.
func (t Tag) MarshalBinary() ([]byte, error) {
	data := util.EncBinaryString(t.TokenType)
	data = append(data, util.EncBinaryInt(t.Priority)...)
	return data, nil
}

// UnmarshalBinary decodes a value written by Tag.MarshalBinary.
func (t *Tag) UnmarshalBinary(data []byte) error {
	tokenType, n, err := util.DecBinaryString(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding Tag.TokenType: %w", err)
	}
	data = data[n:]

	priority, _, err := util.DecBinaryInt(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding Tag.Priority: %w", err)
	}

	t.TokenType = tokenType
	t.Priority = priority
	return nil
}

// MarshalBinary encodes st as its name, NFASubset, transitions table,
// accepting flag, and optional Tag.
func (st DFAState) MarshalBinary() ([]byte, error) {
	data := util.EncBinaryString(st.Name)
	data = append(data, util.EncBinaryStringSlice(util.OrderedKeys(st.NFASubset))...)

	transKeys := make([]string, 0, len(st.Transitions))
	for k := range st.Transitions {
		transKeys = append(transKeys, k)
	}
	sort.Strings(transKeys)
	data = append(data, util.EncBinaryInt(len(transKeys))...)
	for _, k := range transKeys {
		data = append(data, util.EncBinaryString(k)...)
		data = append(data, util.EncBinaryString(st.Transitions[k])...)
	}

	data = append(data, util.EncBinaryBool(st.Accepting)...)
	if st.Tag == nil {
		data = append(data, util.EncBinaryBool(false)...)
	} else {
		data = append(data, util.EncBinaryBool(true)...)
		data = append(data, util.EncBinary(*st.Tag)...)
	}
	return data, nil
}

// UnmarshalBinary decodes a value written by DFAState.MarshalBinary.
func (st *DFAState) UnmarshalBinary(data []byte) error {
	name, n, err := util.DecBinaryString(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding DFAState.Name: %w", err)
	}
	data = data[n:]

	subset, n, err := util.DecBinaryStringSlice(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding DFAState.NFASubset: %w", err)
	}
	data = data[n:]

	transCount, n, err := util.DecBinaryInt(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding DFAState transition count: %w", err)
	}
	data = data[n:]

	transitions := make(map[string]string, transCount)
	for i := 0; i < transCount; i++ {
		var key, target string
		key, n, err = util.DecBinaryString(data)
		if err != nil {
			return fmt.Errorf("automaton: decoding DFAState transition %d key: %w", i, err)
		}
		data = data[n:]
		target, n, err = util.DecBinaryString(data)
		if err != nil {
			return fmt.Errorf("automaton: decoding DFAState transition %d target: %w", i, err)
		}
		data = data[n:]
		transitions[key] = target
	}

	accepting, n, err := util.DecBinaryBool(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding DFAState.Accepting: %w", err)
	}
	data = data[n:]

	hasTag, n, err := util.DecBinaryBool(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding DFAState tag presence: %w", err)
	}
	data = data[n:]

	var tag *Tag
	if hasTag {
		tag = &Tag{}
		if _, err := util.DecBinary(data, tag); err != nil {
			return fmt.Errorf("automaton: decoding DFAState.Tag: %w", err)
		}
	}

	st.Name = name
	st.NFASubset = util.StringSetOf(subset)
	st.Transitions = transitions
	st.Accepting = accepting
	st.Tag = tag
	return nil
}

// MarshalBinary encodes dfa as its start state name followed by every state,
// in sorted name order so a round trip produces a byte-identical blob for a
// given DFA.
func (dfa DFA) MarshalBinary() ([]byte, error) {
	names := make([]string, 0, len(dfa.States))
	for n := range dfa.States {
		names = append(names, n)
	}
	sort.Strings(names)

	data := util.EncBinaryString(dfa.Start)
	data = append(data, util.EncBinaryInt(len(names))...)
	for _, n := range names {
		st := dfa.States[n]
		data = append(data, util.EncBinary(st)...)
	}
	return data, nil
}

// UnmarshalBinary decodes a value written by DFA.MarshalBinary.
func (dfa *DFA) UnmarshalBinary(data []byte) error {
	start, n, err := util.DecBinaryString(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding DFA.Start: %w", err)
	}
	data = data[n:]

	stateCount, n, err := util.DecBinaryInt(data)
	if err != nil {
		return fmt.Errorf("automaton: decoding DFA state count: %w", err)
	}
	data = data[n:]

	states := make(map[string]DFAState, stateCount)
	for i := 0; i < stateCount; i++ {
		var st DFAState
		n, err = util.DecBinary(data, &st)
		if err != nil {
			return fmt.Errorf("automaton: decoding DFA state %d: %w", i, err)
		}
		data = data[n:]
		states[st.Name] = st
	}

	dfa.Start = start
	dfa.States = states
	return nil
}
