// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guestname produces display names for guest sessions.
package guestname

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var (
	adjectives = [...]string{"快乐", "聪明", "勇敢", "友好", "活泼", "可爱", "神秘", "酷炫"}
	nouns      = [...]string{"熊猫", "狐狸", "兔子", "猫咪", "小鸟", "海豚", "企鹅", "考拉"}
)

// maxSuffix bounds the numeric suffix: it is drawn from [0, maxSuffix).
const maxSuffix = 1000

// Source provides random integers and can be replaced in tests.
type Source interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// CryptoSource implements Source using crypto/rand.
type CryptoSource struct{}

// Intn returns a cryptographically random int in [0, n)
func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		return 0
	}
	return int(v.Int64())
}

// Generator composes guest names of the form "<adjective>的<noun><number>".
type Generator struct {
	src Source
}

// New creates a Generator. A nil src selects CryptoSource.
func New(src Source) *Generator {
	if src == nil {
		src = CryptoSource{}
	}
	return &Generator{src: src}
}

// Generate returns a fresh guest name. It never fails and has no side effects.
func (g *Generator) Generate() string {
	adj := adjectives[clamp(g.src.Intn(len(adjectives)), len(adjectives))]
	noun := nouns[clamp(g.src.Intn(len(nouns)), len(nouns))]
	num := clamp(g.src.Intn(maxSuffix), maxSuffix)
	return fmt.Sprintf("%s的%s%d", adj, noun, num)
}

// clamp keeps a misbehaving Source from indexing out of range.
func clamp(v, n int) int {
	if v < 0 || v >= n {
		return 0
	}
	return v
}
