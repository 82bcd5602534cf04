// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide missing functionality to the slices package.
package xslices

import (
	"golang.org/x/exp/constraints"
)

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	if len(in) == 0 {
		return nil
	}
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Last returns the last element of a slice. It panics if the slice is empty.
func Last[T any](slice []T) T {
	return slice[len(slice)-1]
}

// Min returns the smallest element of a non-empty slice.
func Min[T constraints.Ordered](slice []T) T {
	m := slice[0]
	for _, e := range slice[1:] {
		if e < m {
			m = e
		}
	}
	return m
}

// Prepend returns a slice with element inserted at the front of slice.
// The input slice may be reused.
func Prepend[T any](slice []T, element T) []T {
	var zero T
	slice = append(slice, zero)
	copy(slice[1:], slice)
	slice[0] = element
	return slice
}

// PositionsOf returns a map from each element to its index in slice.
// If an element appears more than once, the first index is kept.
func PositionsOf[T comparable](slice []T) map[T]int {
	positions := make(map[T]int, len(slice))
	for ii, e := range slice {
		if _, found := positions[e]; !found {
			positions[e] = ii
		}
	}
	return positions
}
