// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// fusion_cluster loads a program description (see package irio), fuses the body of each of its groups
// and reports the resulting fusion ops.
//
// Usage:
//
//	fusion_cluster [-max_rounds=N] [-stage1_only] [-print] program.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gomlx/fusioncluster/pkg/fusion"
	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/ir/irio"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagMaxRounds = flag.Int("max_rounds", 0, "Maximum number of merge rounds of the second stage. 0 means until "+
		"no more clusters can be merged.")
	flagStage1Only = flag.Bool("stage1_only", false, "Only run the first (op by op) stage of the clustering.")
	flagPrint      = flag.Bool("print", false, "Print the program after fusion.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		klog.Errorf("Expected exactly one program description file. See 'fusion_cluster -help'")
		os.Exit(1)
	}
	program := must.M1(irio.Load(args[0]))
	groups := groupOps(program)
	printSummary(args[0], program, groups)

	pass := fusion.New(nil)
	pass.Config = fusion.Config{MaxMergeRounds: *flagMaxRounds, DisableStage2: *flagStage1Only}
	var failed bool
	var reports []groupReport
	for _, group := range groups {
		numOps := group.Body.Len() - 1
		fusionOps, err := pass.RunOnBlock(program, group.Body)
		if err != nil {
			klog.Errorf("Group %s: %v", groupName(group), err)
			failed = true
			continue
		}
		reports = append(reports, groupReport{group: group, numOps: numOps, fusionOps: fusionOps})
	}
	printFusions(program, reports)
	if *flagPrint {
		fmt.Println(titleStyle.Render("Program"))
		fmt.Println(program.String())
	}
	if failed {
		os.Exit(1)
	}
}

// groupOps returns the group ops of the program body.
func groupOps(program *ir.Program) (groups []*ir.Op) {
	for _, op := range program.Body.Ops() {
		if op.Type == ir.OpTypeGroup {
			groups = append(groups, op)
		}
	}
	return
}

func groupName(group *ir.Op) string {
	if group.Name != "" {
		return fmt.Sprintf("%q", group.Name)
	}
	return fmt.Sprintf("#%d", group.ID)
}
