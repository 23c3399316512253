// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kefir-project/kefir/internal/dialect"
	"github.com/kefir-project/kefir/internal/model"
	"github.com/kefir-project/kefir/internal/persist"
)

var (
	ruleDialect     string
	ruleAddIndex    int
	ruleDeleteIndex int
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Add, list, or delete rules in the saved filter",
}

var ruleAddCmd = &cobra.Command{
	Use:   "add [rule text]",
	Short: "Parse a rule in the given dialect and insert it into the filter",
	Long: "Parse a rule written in --dialect syntax and insert it at --index into\n" +
		"the filter stored at --filter, creating the file if it doesn't exist yet.",
	Args: cobra.MinimumNArgs(1),
	RunE: runRuleAdd,
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules in the saved filter, one per line",
	RunE:  runRuleList,
}

var ruleDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the rule at --index from the saved filter",
	RunE:  runRuleDelete,
}

func init() {
	ruleAddCmd.Flags().StringVar(&ruleDialect, "dialect", "iptables",
		"rule dialect: ethtool, pcap, tc-flower, iptables, ovs-flow")
	ruleAddCmd.Flags().IntVar(&ruleAddIndex, "index", -1, "insertion index (-1 appends)")
	ruleDeleteCmd.Flags().IntVar(&ruleDeleteIndex, "index", 0, "index of the rule to delete")

	ruleCmd.AddCommand(ruleAddCmd)
	ruleCmd.AddCommand(ruleListCmd)
	ruleCmd.AddCommand(ruleDeleteCmd)
	rootCmd.AddCommand(ruleCmd)
}

func loadOrNewFilter() (*model.Filter, error) {
	if _, err := os.Stat(filterPath); os.IsNotExist(err) {
		return model.NewFilter(), nil
	}
	return persist.Load(filterPath)
}

func runRuleAdd(cmd *cobra.Command, args []string) error {
	tag, err := dialect.ParseTag(ruleDialect)
	if err != nil {
		return fmt.Errorf("kefirctl rule add: %w", err)
	}

	f, err := loadOrNewFilter()
	if err != nil {
		return fmt.Errorf("kefirctl rule add: %w", err)
	}

	line := strings.Join(args, " ")
	parseErr := dialect.LoadRuleString(f, tag, line, ruleAddIndex)
	reg.ObserveParse(tag.String(), parseErr)
	if parseErr != nil {
		return fmt.Errorf("kefirctl rule add: %w", parseErr)
	}

	if err := persist.Save(f, filterPath); err != nil {
		return fmt.Errorf("kefirctl rule add: %w", err)
	}

	log.Info("rule added", "dialect", tag.String(), "filter", filterPath, "rules", f.Len())
	return nil
}

func runRuleList(cmd *cobra.Command, args []string) error {
	f, err := persist.Load(filterPath)
	if err != nil {
		return fmt.Errorf("kefirctl rule list: %w", err)
	}
	return f.Dump(cmd.OutOrStdout())
}

func runRuleDelete(cmd *cobra.Command, args []string) error {
	f, err := persist.Load(filterPath)
	if err != nil {
		return fmt.Errorf("kefirctl rule delete: %w", err)
	}
	if err := f.Delete(ruleDeleteIndex); err != nil {
		return fmt.Errorf("kefirctl rule delete: %w", err)
	}
	if err := persist.Save(f, filterPath); err != nil {
		return fmt.Errorf("kefirctl rule delete: %w", err)
	}
	log.Info("rule deleted", "index", strconv.Itoa(ruleDeleteIndex), "filter", filterPath, "rules", f.Len())
	return nil
}
