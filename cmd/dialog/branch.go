package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/revision"
	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Inspect and mutate branches",
}

func init() {
	branchCmd.AddCommand(branchStatusCmd)
	branchCmd.AddCommand(branchCommitCmd)
	branchCmd.AddCommand(branchResetCmd)

	branchCommitCmd.Flags().String("attr", "", "Attribute to assert or retract, e.g. profile/name (required)")
	branchCommitCmd.Flags().String("value", "", "String value to assert (ignored with --retract)")
	branchCommitCmd.Flags().String("entity", "", "Hex-encoded entity to attach the fact to (a fresh one is minted if omitted)")
	branchCommitCmd.Flags().Bool("retract", false, "Retract instead of assert")
	branchCommitCmd.MarkFlagRequired("attr")

	branchResetCmd.Flags().String("entity-root", "", "Hex-encoded entity index root (required)")
	branchResetCmd.Flags().String("attribute-root", "", "Hex-encoded attribute index root (required)")
	branchResetCmd.Flags().String("value-root", "", "Hex-encoded value index root (required)")
	branchResetCmd.MarkFlagRequired("entity-root")
	branchResetCmd.MarkFlagRequired("attribute-root")
	branchResetCmd.MarkFlagRequired("value-root")
}

var branchStatusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Print a branch's current revision and base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		r, _, _, err := openReplica(cmd)
		if err != nil {
			return err
		}
		b, err := r.Branch(ctx, args[0])
		if err != nil {
			return err
		}
		state, err := b.State(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%-12s %s\n", "branch:", args[0])
		fmt.Printf("%-12s entity=%s attribute=%s value=%s\n", "revision:",
			state.Revision.EntityIndexRoot, state.Revision.AttributeIndexRoot, state.Revision.ValueIndexRoot)
		fmt.Printf("%-12s entity=%s attribute=%s value=%s\n", "base:",
			state.Base.EntityIndexRoot, state.Base.AttributeIndexRoot, state.Base.ValueIndexRoot)
		return nil
	},
}

var branchCommitCmd = &cobra.Command{
	Use:   "commit <name>",
	Short: "Apply a single assert or retract instruction to a branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		r, _, _, err := openReplica(cmd)
		if err != nil {
			return err
		}
		b, err := r.Branch(ctx, args[0])
		if err != nil {
			return err
		}

		attrFlag, _ := cmd.Flags().GetString("attr")
		valueFlag, _ := cmd.Flags().GetString("value")
		entityFlag, _ := cmd.Flags().GetString("entity")
		retract, _ := cmd.Flags().GetBool("retract")

		attr, err := artifact.NewAttribute(attrFlag)
		if err != nil {
			return fmt.Errorf("invalid --attr: %w", err)
		}

		entity, err := resolveEntity(entityFlag)
		if err != nil {
			return err
		}

		a := artifact.Artifact{The: attr, Of: entity, Is: artifact.StringValue(valueFlag)}
		instr := artifact.AssertInstruction(a)
		if retract {
			instr = artifact.RetractInstruction(a)
		}

		rev, err := b.Commit(ctx, []artifact.Instruction{instr})
		if err != nil {
			return err
		}
		fmt.Printf("committed: entity=%s attribute=%s value=%s\n",
			rev.EntityIndexRoot, rev.AttributeIndexRoot, rev.ValueIndexRoot)
		return nil
	},
}

var branchResetCmd = &cobra.Command{
	Use:   "reset <name>",
	Short: "Roll a branch back to a known revision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		r, _, _, err := openReplica(cmd)
		if err != nil {
			return err
		}
		b, err := r.Branch(ctx, args[0])
		if err != nil {
			return err
		}

		entityRootFlag, _ := cmd.Flags().GetString("entity-root")
		attrRootFlag, _ := cmd.Flags().GetString("attribute-root")
		valueRootFlag, _ := cmd.Flags().GetString("value-root")

		entityRoot, err := parseHash(entityRootFlag)
		if err != nil {
			return fmt.Errorf("invalid --entity-root: %w", err)
		}
		attrRoot, err := parseHash(attrRootFlag)
		if err != nil {
			return fmt.Errorf("invalid --attribute-root: %w", err)
		}
		valueRoot, err := parseHash(valueRootFlag)
		if err != nil {
			return fmt.Errorf("invalid --value-root: %w", err)
		}

		rev := revision.Revision{EntityIndexRoot: entityRoot, AttributeIndexRoot: attrRoot, ValueIndexRoot: valueRoot}
		if err := b.Reset(ctx, rev); err != nil {
			return err
		}
		fmt.Println("reset ok")
		return nil
	},
}

func resolveEntity(hexStr string) (artifact.Entity, error) {
	if hexStr == "" {
		return artifact.NewEntity()
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return artifact.Entity{}, fmt.Errorf("invalid --entity: %w", err)
	}
	return artifact.EntityFromBytes(b)
}

func parseHash(hexStr string) (cas.Hash, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return cas.Hash{}, err
	}
	if len(b) != 32 {
		return cas.Hash{}, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	var h cas.Hash
	copy(h[:], b)
	return h, nil
}
