// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fusion implements the operator fusion clustering pass: it partitions the ops of each group
// block of an ir.Program into clusters that can be compiled as one fused kernel, and replaces each
// cluster by an ir.OpTypeFusion op carrying the metadata (ir.GroupInfo) the downstream scheduler needs.
//
// The pass only decides which ops fuse: it doesn't schedule the fused kernels.
//
// Example:
//
//	pass := fusion.New(nil)
//	if err := pass.Run(program); err != nil {
//		klog.Fatalf("fusion failed: %+v", err)
//	}
package fusion

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	// ErrUnsupportedOp is returned when an op in a block is not ElementWise, Broadcast or Reduction.
	ErrUnsupportedOp = errors.New("unsupported op for fusion")

	// ErrCycle is returned when the dependencies among clusters can't be topologically sorted.
	ErrCycle = errors.New("cycle in cluster dependencies")

	// ErrInconsistentPartition is returned when the clusters can't be materialized: an op fused twice
	// or not at all, or a value used before it is produced.
	ErrInconsistentPartition = errors.New("inconsistent fusion partition")
)

// Stages reported by ClusterError.
const (
	StageSplit   = "split"
	StageRewrite = "rewrite"
)

// ClusterError is returned by Pass.Run and Pass.RunOnBlock.
type ClusterError struct {
	// Block is the owner of the block being fused.
	Block ir.OpID

	// Stage is StageSplit or StageRewrite.
	Stage string

	Err error
}

// Error implements error.
func (e *ClusterError) Error() string {
	return fmt.Sprintf("fusion of block of op #%d failed during %s: %v", e.Block, e.Stage, e.Err)
}

// Unwrap allows errors.Is and errors.As on the underlying error.
func (e *ClusterError) Unwrap() error { return e.Err }

// Config of the Pass. The zero value runs both stages until a fixed point.
type Config struct {
	// MaxMergeRounds limits the number of stage 2 merge rounds. 0 means no limit.
	MaxMergeRounds int

	// DisableStage2 returns the clusters of stage 1 only.
	DisableStage2 bool
}

// Pass is the fusion clustering pass.
type Pass struct {
	Oracle Oracle
	Config Config
}

// New returns a Pass with the given oracle. If oracle is nil, DefaultOracle is used.
func New(oracle Oracle) *Pass {
	if oracle == nil {
		oracle = DefaultOracle{}
	}
	return &Pass{Oracle: oracle}
}

// Run fuses the body of every OpTypeGroup op of the program.
//
// Blocks fused before a failure remain fused, and the failing block is left unchanged.
func (p *Pass) Run(program *ir.Program) error {
	n, err := ApplyPatterns(program, &GroupClusterPattern{Pass: p})
	if err != nil {
		return err
	}
	klog.V(1).Infof("fusion: %d group(s) fused", n)
	return nil
}

// RunOnBlock partitions block and replaces its ops by fusion ops. It returns the fusion ops created,
// in block order.
//
// Errors are returned as a *ClusterError. The partition is checked before the block is mutated, so
// unsupported ops and inconsistent partitions leave the block unchanged.
func (p *Pass) RunOnBlock(program *ir.Program, block *ir.Block) (fusionOps []*ir.Op, err error) {
	var nodes []*GroupClusterNode
	err = exceptions.TryCatch[error](func() {
		nodes = GroupSplit(program, block, p.Oracle, p.Config)
	})
	if err != nil {
		return nil, &ClusterError{Block: block.Owner(), Stage: StageSplit, Err: err}
	}
	if klog.V(2).Enabled() {
		for ii, node := range nodes {
			klog.Infof("fusion: block of op #%d, cluster %d/%d:\n%s", block.Owner(), ii+1, len(nodes), node.DebugString())
		}
	}
	err = exceptions.TryCatch[error](func() {
		fusionOps = rewriteBlock(program, block, nodes)
	})
	if err != nil {
		return nil, &ClusterError{Block: block.Owner(), Stage: StageRewrite, Err: err}
	}
	klog.V(1).Infof("fusion: block of op #%d fused into %d op(s)", block.Owner(), len(fusionOps))
	return fusionOps, nil
}

// Pattern is a rewrite rule applied by ApplyPatterns.
type Pattern interface {
	// Match returns whether the pattern applies to op.
	Match(op *ir.Op) bool

	// Rewrite transforms the matched op. It may mutate op's body.
	Rewrite(program *ir.Program, op *ir.Op) error
}

// ApplyPatterns visits every op of the program, recursively into region bodies, and applies the first
// matching pattern to it. It returns the number of rewrites.
//
// Matches are collected before any rewrite, so ops created by a rewrite are not visited. Ops erased by
// an earlier rewrite are skipped.
func ApplyPatterns(program *ir.Program, patterns ...Pattern) (int, error) {
	type match struct {
		op      *ir.Op
		pattern Pattern
	}
	var matches []match
	var walk func(block *ir.Block)
	walk = func(block *ir.Block) {
		for _, op := range block.Ops() {
			for _, pattern := range patterns {
				if pattern.Match(op) {
					matches = append(matches, match{op, pattern})
					break
				}
			}
			if op.Body != nil {
				walk(op.Body)
			}
		}
	}
	walk(program.Body)

	count := 0
	for _, m := range matches {
		if m.op.IsErased() {
			continue
		}
		if err := m.pattern.Rewrite(program, m.op); err != nil {
			return count, errors.WithMessagef(err, "rewriting op #%d (%s)", m.op.ID, m.op.Type)
		}
		count++
	}
	return count, nil
}

// GroupClusterPattern matches OpTypeGroup ops and fuses their body in place.
type GroupClusterPattern struct {
	Pass *Pass
}

var _ Pattern = (*GroupClusterPattern)(nil)

// Match implements Pattern.
func (g *GroupClusterPattern) Match(op *ir.Op) bool {
	return op.Type == ir.OpTypeGroup
}

// Rewrite implements Pattern.
func (g *GroupClusterPattern) Rewrite(program *ir.Program, op *ir.Op) error {
	_, err := g.Pass.RunOnBlock(program, op.Body)
	return err
}
