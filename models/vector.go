// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	VectorLen = 3
	MinAnswer = 1
	MaxAnswer = 5
)

// Vector is a score or preference vector: one answer per category question.
type Vector [VectorLen]int

// NewVector validates values and copies them into a Vector.
func NewVector(values []int) (Vector, error) {
	var v Vector
	if len(values) != VectorLen {
		return v, fmt.Errorf("%w: want %d values, got %d", ErrInvalidVector, VectorLen, len(values))
	}
	copy(v[:], values)
	if err := v.Validate(); err != nil {
		return Vector{}, err
	}
	return v, nil
}

// Validate reports whether every answer is within [MinAnswer, MaxAnswer].
// The zero Vector is invalid.
func (v Vector) Validate() error {
	for i, a := range v {
		if a < MinAnswer || a > MaxAnswer {
			return fmt.Errorf("%w: value %d at position %d out of range [%d,%d]",
				ErrInvalidVector, a, i, MinAnswer, MaxAnswer)
		}
	}
	return nil
}

// Agreement counts the positions where v and o hold the same answer.
func (v Vector) Agreement(o Vector) int {
	n := 0
	for i := range v {
		if v[i] == o[i] {
			n++
		}
	}
	return n
}

// Slice returns the answers as a new slice.
func (v Vector) Slice() []int {
	return append([]int(nil), v[:]...)
}

// String renders the vector the way the oracle answers: "4,3,5".
func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, a := range v {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}
